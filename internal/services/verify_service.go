// Package services – VerifyService
//
// This file implements the public warranty verification lookup: a free-text
// query is matched first against warranty codes and then against serial
// numbers, and the result is redacted before leaving the service so that the
// public surface never sees the owner's full name or any account identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardbox/warranty-backend/internal/domain"
	"github.com/cardbox/warranty-backend/internal/repo"
	"github.com/cardbox/warranty-backend/internal/warranty"
)

// VerifyResult is the redacted public view of a warranty record. No account
// ids, emails, or phone numbers appear here.
type VerifyResult struct {
	Code               string `json:"code,omitempty"`
	ProductModel       string `json:"product_model"`
	Brand              string `json:"brand,omitempty"`
	SerialNumber       string `json:"serial_number"`
	SellerName         string `json:"seller_name,omitempty"`
	OwnerName          string `json:"owner_name"` // masked, e.g. "J*** D**"
	DurationMonths     int    `json:"duration_months"`
	ExpiryDate         string `json:"expiry_date"`
	Status             string `json:"status"` // derived at lookup time
	VerificationStatus string `json:"verification_status"`
}

// VerifyService implements the public verification surface. It is read-only
// and requires no identity.
type VerifyService struct {
	// DB is the database handle used for lookups.
	DB *gorm.DB

	// Now is the clock used for status derivation; nil means time.Now.
	Now func() time.Time
}

// Lookup resolves a free-text query to at most one warranty record.
//
// The query is matched against codes first (after code normalization) and
// falls back to an exact serial-number match, mirroring how support staff
// and buyers actually quote warranties. ErrWarrantyNotFound is returned when
// neither matches.
func (s *VerifyService) Lookup(ctx context.Context, query string) (*VerifyResult, error) {
	tr := otel.Tracer("services/VerifyService")
	ctx, span := tr.Start(ctx, "Lookup",
		trace.WithAttributes(attribute.Int("query.len", len(query))),
	)
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrWarrantyNotFound
	}

	w, err := repo.GetWarrantyByCode(ctx, s.DB, warranty.NormalizeCode(query))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w, err = repo.GetWarrantyBySerial(ctx, s.DB, query)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarrantyNotFound
		}
		return nil, err
	}

	return s.redact(w), nil
}

// redact builds the public view of a record.
func (s *VerifyService) redact(w *domain.Warranty) *VerifyResult {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	code := ""
	if w.Code != nil {
		code = *w.Code
	}
	return &VerifyResult{
		Code:               code,
		ProductModel:       w.ProductModel,
		Brand:              w.Brand,
		SerialNumber:       w.SerialNumber,
		SellerName:         w.SellerName,
		OwnerName:          MaskName(w.CustomerName),
		DurationMonths:     w.DurationMonths,
		ExpiryDate:         w.ExpiryDate,
		Status:             warranty.Status(w.ExpiryDate, now()),
		VerificationStatus: w.VerificationStatus,
	}
}

// MaskName partially hides a person's name for public display: every word
// longer than two runes keeps its first rune and the rest become asterisks
// ("John Doe" → "J*** D**"). Short particles ("de", "Al") pass through.
func MaskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) <= 2 {
			continue
		}
		words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(words, " ")
}
