// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Warranty
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. The one subtlety is that ownership
// transitions (claim, release) are expressed as conditional updates so that
// the single-owner invariant holds even under concurrent requests.
//
// Error semantics:
//   - When a warranty is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - CreateWarranty maps unique-constraint violations on the code column to
//     ErrDuplicateCode so the service layer can regenerate and retry.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbox/warranty-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateCode is returned when inserting a warranty whose code collides
// with an existing record.
var ErrDuplicateCode = errors.New("warranty code already exists")

// CreateWarranty inserts a new warranty row. The caller supplies every field
// except ID and CreatedAt, which are populated here (UUID and UTC now).
//
// A unique-constraint violation on the code column is mapped to
// ErrDuplicateCode; the issuing service regenerates the code and retries.
func CreateWarranty(ctx context.Context, db *gorm.DB, w *domain.Warranty) (*domain.Warranty, error) {
	w.ID = uuid.NewString()
	w.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(w).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return w, nil
}

// GetWarranty fetches a single warranty by ID. If the record does not exist,
// it returns ErrNotFound.
func GetWarranty(ctx context.Context, db *gorm.DB, id string) (*domain.Warranty, error) {
	var w domain.Warranty
	if err := db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWarrantyByCode fetches a single warranty by its exact code.
// Codes are unique, so at most one row matches.
func GetWarrantyByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Warranty, error) {
	var w domain.Warranty
	if err := db.WithContext(ctx).Where("code = ?", code).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWarrantyBySerial fetches the first warranty matching a serial number.
// Serial numbers are free text and not guaranteed unique; the oldest match
// wins, mirroring the public verification lookup.
func GetWarrantyBySerial(ctx context.Context, db *gorm.DB, serial string) (*domain.Warranty, error) {
	var w domain.Warranty
	err := db.WithContext(ctx).
		Where("serial_number = ?", serial).
		Order("created_at asc").
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ClaimWarranty attaches buyer ownership to the warranty with the given code,
// but only if the record is currently unclaimed. The WHERE clause makes the
// check-and-set a single atomic statement: of two concurrent claimants,
// exactly one update reports RowsAffected == 1.
//
// Returns the number of rows updated (0 or 1). The caller distinguishes
// "no such code" from "already claimed" with a follow-up read.
func ClaimWarranty(ctx context.Context, db *gorm.DB, code, buyerID, buyerEmail string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Where("code = ? AND buyer_id IS NULL", code).
		Updates(map[string]any{
			"buyer_id":    buyerID,
			"buyer_email": buyerEmail,
			"claimed_at":  now,
		})
	return res.RowsAffected, res.Error
}

// ReleaseWarranty detaches the current owner from a warranty, but only when
// id and buyer_id both match. The previous owner's email and the transfer
// timestamp are stamped in the same statement, so a successful release is
// indistinguishable from the record never having been claimed except through
// those fields and the event history.
func ReleaseWarranty(ctx context.Context, db *gorm.DB, id, buyerID, buyerEmail string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Where("id = ? AND buyer_id = ?", id, buyerID).
		Updates(map[string]any{
			"buyer_id":       nil,
			"buyer_email":    nil,
			"claimed_at":     nil,
			"previous_owner": buyerEmail,
			"transferred_at": now,
		})
	return res.RowsAffected, res.Error
}

// CountSellerWarranties returns the total number of records issued by sellerID.
func CountSellerWarranties(ctx context.Context, db *gorm.DB, sellerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Where("seller_id = ?", sellerID).
		Count(&total).Error
	return total, err
}

// ListSellerWarrantiesPage returns a page of records issued by sellerID,
// most recent first. The caller computes offset and limit.
func ListSellerWarrantiesPage(ctx context.Context, db *gorm.DB, sellerID string, offset, limit int) ([]domain.Warranty, error) {
	var out []domain.Warranty
	err := db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountBuyerWarranties returns the total number of records currently owned by
// buyerID (claimed or self-declared).
func CountBuyerWarranties(ctx context.Context, db *gorm.DB, buyerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Where("buyer_id = ?", buyerID).
		Count(&total).Error
	return total, err
}

// ListBuyerWarrantiesPage returns a page of records owned by buyerID,
// most recent first.
func ListBuyerWarrantiesPage(ctx context.Context, db *gorm.DB, buyerID string, offset, limit int) ([]domain.Warranty, error) {
	var out []domain.Warranty
	err := db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique") ||
		strings.Contains(msg, "duplicate key")
}
