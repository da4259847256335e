// Package services – WarrantyService
//
// This file implements the WarrantyService, which owns every lifecycle
// transition of a warranty record: seller issue, buyer claim by code, owner
// release/transfer, and buyer self-declaration. It validates and normalizes
// input, computes coverage terms through the warranty package, and coordinates
// repository operations inside transactions so that a record and its history
// move together.
//
// Ownership is guarded by conditional updates at the repository level
// ("set buyer only where buyer is absent"), which makes Claim safe under
// concurrent requests without any application-side locking.
//
// Service-level errors (e.g. ErrWarrantyNotFound, ErrAlreadyClaimed) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardbox/warranty-backend/internal/domain"
	"github.com/cardbox/warranty-backend/internal/warranty"
)

// Identity is the authenticated principal acting on a record, as supplied by
// the external identity provider. The service only stamps these values; it
// performs no authentication itself.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// WarrantyRepo defines the repository contract required by WarrantyService.
// Implementations are responsible for persistence of warranty aggregates and
// their event history.
type WarrantyRepo interface {
	// CreateWarranty inserts a new record, returning ErrDuplicateCode on a
	// code collision.
	CreateWarranty(ctx context.Context, db *gorm.DB, w *domain.Warranty) (*domain.Warranty, error)

	// GetWarranty fetches a record by id.
	GetWarranty(ctx context.Context, db *gorm.DB, id string) (*domain.Warranty, error)

	// GetWarrantyByCode fetches a record by exact code.
	GetWarrantyByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Warranty, error)

	// ClaimWarranty atomically attaches a buyer where none is set, returning
	// the number of rows updated.
	ClaimWarranty(ctx context.Context, db *gorm.DB, code, buyerID, buyerEmail string, now time.Time) (int64, error)

	// ReleaseWarranty atomically detaches the given buyer, returning the
	// number of rows updated.
	ReleaseWarranty(ctx context.Context, db *gorm.DB, id, buyerID, buyerEmail string, now time.Time) (int64, error)

	// AppendEvent records one lifecycle action in the history.
	AppendEvent(ctx context.Context, db *gorm.DB, warrantyID, action, actor string) (*domain.WarrantyEvent, error)

	// ListEvents returns a record's history in chronological order.
	ListEvents(ctx context.Context, db *gorm.DB, warrantyID string) ([]domain.WarrantyEvent, error)

	// CountSellerWarranties / ListSellerWarrantiesPage support the seller list.
	CountSellerWarranties(ctx context.Context, db *gorm.DB, sellerID string) (int64, error)
	ListSellerWarrantiesPage(ctx context.Context, db *gorm.DB, sellerID string, offset, limit int) ([]domain.Warranty, error)

	// CountBuyerWarranties / ListBuyerWarrantiesPage support the buyer list.
	CountBuyerWarranties(ctx context.Context, db *gorm.DB, buyerID string) (int64, error)
	ListBuyerWarrantiesPage(ctx context.Context, db *gorm.DB, buyerID string, offset, limit int) ([]domain.Warranty, error)
}

// WarrantyService provides warranty lifecycle operations. It enforces
// validation and ownership rules and leaves raw persistence to the repository.
type WarrantyService struct {
	// DB is the GORM handle used for persistence and transactions.
	DB *gorm.DB
	// Repo is the warranty repository used by this service.
	Repo WarrantyRepo

	// CodeMaxAttempts caps code regeneration on collision during Issue.
	CodeMaxAttempts int
}

// NewWarrantyService constructs a WarrantyService with sane defaults.
func NewWarrantyService(db *gorm.DB, r WarrantyRepo) *WarrantyService {
	return &WarrantyService{
		DB:              db,
		Repo:            r,
		CodeMaxAttempts: 5,
	}
}

// IssueInput carries the seller-provided fields for a new warranty.
type IssueInput struct {
	CustomerName   string
	CustomerPhone  string
	ProductModel   string
	SerialNumber   string
	PurchaseDate   string
	DurationMonths int
}

// SelfDeclareInput carries the buyer-provided fields for a manual record.
// Exactly one of DurationMonths or CustomExpiryDate selects the expiry mode:
// a zero duration means custom mode.
type SelfDeclareInput struct {
	ProductModel     string
	Brand            string
	SerialNumber     string
	SellerName       string
	Notes            string
	PurchaseDate     string
	DurationMonths   int
	CustomExpiryDate string
}

// Issue creates a new unclaimed record on behalf of a seller: a fresh unique
// code, coverage computed from the purchase date and duration, and an initial
// "issued" history entry, all in one transaction.
//
// Code uniqueness is enforced at write time: on a unique-constraint collision
// the code is regenerated, up to CodeMaxAttempts, after which
// ErrCodeSpaceExhausted is returned.
func (s *WarrantyService) Issue(ctx context.Context, seller Identity, in IssueInput) (*domain.Warranty, error) {
	tr := otel.Tracer("services/WarrantyService")
	ctx, span := tr.Start(ctx, "Issue",
		trace.WithAttributes(attribute.String("seller.id", seller.UID)),
	)
	defer span.End()

	in.CustomerName = normalizeField(in.CustomerName)
	in.CustomerPhone = normalizeField(in.CustomerPhone)
	in.ProductModel = normalizeField(in.ProductModel)
	in.SerialNumber = normalizeField(in.SerialNumber)
	if in.CustomerName == "" || in.ProductModel == "" || in.SerialNumber == "" {
		return nil, ErrMissingField
	}

	terms, err := warranty.FixedTerms(in.PurchaseDate, in.DurationMonths)
	if err != nil {
		return nil, err
	}

	sellerName := seller.Name
	if sellerName == "" {
		sellerName = "Official Store"
	}

	var created *domain.Warranty
	for attempt := 0; attempt < s.maxAttempts(); attempt++ {
		code := warranty.NewCode()
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			w := &domain.Warranty{
				Code:               &code,
				SellerID:           seller.UID,
				SellerEmail:        seller.Email,
				SellerName:         sellerName,
				CustomerName:       in.CustomerName,
				CustomerPhone:      in.CustomerPhone,
				ProductModel:       in.ProductModel,
				SerialNumber:       in.SerialNumber,
				PurchaseDate:       in.PurchaseDate,
				ExpiryDate:         terms.ExpiryDate,
				DurationMonths:     terms.DurationMonths,
				Type:               domain.TypeIssued,
				VerificationStatus: domain.VerificationVerified,
			}
			w, err := s.Repo.CreateWarranty(ctx, tx, w)
			if err != nil {
				return err
			}
			if _, err := s.Repo.AppendEvent(ctx, tx, w.ID, domain.ActionIssued, seller.Email); err != nil {
				return err
			}
			created = w
			return nil
		})
		if err == nil {
			return created, nil
		}
		if !isDuplicateCode(err) {
			return nil, err
		}
		span.AddEvent("code collision, regenerating")
	}
	return nil, ErrCodeSpaceExhausted
}

// Claim attaches the buyer as owner of the record matching code.
//
// Semantics:
//   - The code is normalized (trimmed, upper-cased) before lookup.
//   - ErrWarrantyNotFound when no record carries the code.
//   - ErrPurchaseDateMismatch when the optional purchaseDate is supplied and
//     differs from the record.
//   - ErrAlreadyClaimed when an owner is already attached. The ownership
//     check and the write are a single conditional update, so two concurrent
//     claims against one unclaimed code yield exactly one success.
//
// On success the claimed record is returned with buyer fields, claimed_at,
// and a "claimed" history entry persisted atomically.
func (s *WarrantyService) Claim(ctx context.Context, buyer Identity, code, purchaseDate string) (*domain.Warranty, error) {
	tr := otel.Tracer("services/WarrantyService")
	ctx, span := tr.Start(ctx, "Claim",
		trace.WithAttributes(attribute.String("buyer.id", buyer.UID)),
	)
	defer span.End()

	code = warranty.NormalizeCode(code)
	if code == "" {
		return nil, ErrWarrantyNotFound
	}

	// The optional purchase-date check reads immutable fields, so doing it
	// before the conditional update introduces no race.
	if purchaseDate != "" {
		w, err := s.Repo.GetWarrantyByCode(ctx, s.DB, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWarrantyNotFound
			}
			return nil, err
		}
		if w.PurchaseDate != purchaseDate {
			return nil, ErrPurchaseDateMismatch
		}
	}

	var claimed *domain.Warranty
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.Repo.ClaimWarranty(ctx, tx, code, buyer.UID, buyer.Email, time.Now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			// Distinguish "no such code" from "someone owns it".
			if _, err := s.Repo.GetWarrantyByCode(ctx, tx, code); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrWarrantyNotFound
				}
				return err
			}
			return ErrAlreadyClaimed
		}
		w, err := s.Repo.GetWarrantyByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if _, err := s.Repo.AppendEvent(ctx, tx, w.ID, domain.ActionClaimed, buyer.Email); err != nil {
			return err
		}
		claimed = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Release detaches the current owner from a record they own and returns the
// code the next owner can claim it with (transfer reuses the original code).
//
// Semantics:
//   - ErrWarrantyNotFound when the record does not exist or the caller is not
//     its current owner (existence is not leaked to non-owners).
//   - ErrNotTransferable for self-declared records, which carry no code.
//
// The detach is a conditional update on (id, buyer_id), so a release racing a
// concurrent release of the same record succeeds at most once. previous_owner
// and transferred_at are stamped and a "released" history entry appended.
func (s *WarrantyService) Release(ctx context.Context, owner Identity, id string) (string, error) {
	tr := otel.Tracer("services/WarrantyService")
	ctx, span := tr.Start(ctx, "Release",
		trace.WithAttributes(
			attribute.String("warranty.id", id),
			attribute.String("buyer.id", owner.UID),
		),
	)
	defer span.End()

	w, err := s.Repo.GetWarranty(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrWarrantyNotFound
		}
		return "", err
	}
	if w.BuyerID == nil || *w.BuyerID != owner.UID {
		return "", ErrWarrantyNotFound
	}
	if w.Type == domain.TypeManual || w.Code == nil {
		return "", ErrNotTransferable
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.Repo.ReleaseWarranty(ctx, tx, id, owner.UID, owner.Email, time.Now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost a race against another release or claim churn.
			return ErrWarrantyNotFound
		}
		_, err = s.Repo.AppendEvent(ctx, tx, id, domain.ActionReleased, owner.Email)
		return err
	})
	if err != nil {
		return "", err
	}
	return *w.Code, nil
}

// SelfDeclare creates a manual record owned by the buyer immediately: no
// code, no seller attribution, verification_status unverified. Coverage terms
// come either from a fixed duration or, when DurationMonths is zero, from the
// custom expiry date.
func (s *WarrantyService) SelfDeclare(ctx context.Context, buyer Identity, in SelfDeclareInput) (*domain.Warranty, error) {
	tr := otel.Tracer("services/WarrantyService")
	ctx, span := tr.Start(ctx, "SelfDeclare",
		trace.WithAttributes(attribute.String("buyer.id", buyer.UID)),
	)
	defer span.End()

	in.ProductModel = normalizeField(in.ProductModel)
	if in.ProductModel == "" {
		return nil, ErrMissingField
	}
	if in.SerialNumber = normalizeField(in.SerialNumber); in.SerialNumber == "" {
		in.SerialNumber = "N/A"
	}
	if in.SellerName = normalizeField(in.SellerName); in.SellerName == "" {
		in.SellerName = "Unknown Shop"
	}

	var (
		terms warranty.Terms
		err   error
	)
	if in.DurationMonths != 0 {
		terms, err = warranty.FixedTerms(in.PurchaseDate, in.DurationMonths)
	} else {
		terms, err = warranty.CustomTerms(in.PurchaseDate, in.CustomExpiryDate)
	}
	if err != nil {
		return nil, err
	}

	customerName := buyer.Name
	if customerName == "" {
		customerName = "Me"
	}

	var created *domain.Warranty
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buyerID, buyerEmail := buyer.UID, buyer.Email
		w := &domain.Warranty{
			BuyerID:            &buyerID,
			BuyerEmail:         &buyerEmail,
			CustomerName:       customerName,
			ProductModel:       in.ProductModel,
			Brand:              normalizeField(in.Brand),
			SerialNumber:       in.SerialNumber,
			SellerName:         in.SellerName,
			Notes:              strings.TrimSpace(in.Notes),
			PurchaseDate:       in.PurchaseDate,
			ExpiryDate:         terms.ExpiryDate,
			DurationMonths:     terms.DurationMonths,
			Type:               domain.TypeManual,
			VerificationStatus: domain.VerificationUnverified,
		}
		w, err := s.Repo.CreateWarranty(ctx, tx, w)
		if err != nil {
			return err
		}
		if _, err := s.Repo.AppendEvent(ctx, tx, w.ID, domain.ActionSelfDeclared, buyer.Email); err != nil {
			return err
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a record and its history to its seller or its current owner.
// Anyone else receives ErrWarrantyNotFound; existence is not leaked.
func (s *WarrantyService) Get(ctx context.Context, requester Identity, id string) (*domain.Warranty, []domain.WarrantyEvent, error) {
	w, err := s.Repo.GetWarranty(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWarrantyNotFound
		}
		return nil, nil, err
	}
	isSeller := w.SellerID != "" && w.SellerID == requester.UID
	isOwner := w.BuyerID != nil && *w.BuyerID == requester.UID
	if !isSeller && !isOwner {
		return nil, nil, ErrWarrantyNotFound
	}
	events, err := s.Repo.ListEvents(ctx, s.DB, id)
	if err != nil {
		return nil, nil, err
	}
	return w, events, nil
}

// ListForSeller returns a page of records issued by sellerID and the total
// count. Defaults are applied for invalid page/pageSize.
func (s *WarrantyService) ListForSeller(ctx context.Context, sellerID string, page, pageSize int) ([]domain.Warranty, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountSellerWarranties(ctx, s.DB, sellerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Warranty{}, 0, nil
	}
	items, err := s.Repo.ListSellerWarrantiesPage(ctx, s.DB, sellerID, offset, pageSize)
	return items, total, err
}

// ListForBuyer returns a page of records currently owned by buyerID and the
// total count.
func (s *WarrantyService) ListForBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]domain.Warranty, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountBuyerWarranties(ctx, s.DB, buyerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Warranty{}, 0, nil
	}
	items, err := s.Repo.ListBuyerWarrantiesPage(ctx, s.DB, buyerID, offset, pageSize)
	return items, total, err
}

// maxAttempts returns the configured collision retry cap with a floor of 1.
func (s *WarrantyService) maxAttempts() int {
	if s.CodeMaxAttempts < 1 {
		return 1
	}
	return s.CodeMaxAttempts
}

// isDuplicateCode detects the repo-level duplicate sentinel as well as raw
// unique-violation texts that can leak through transaction wrappers.
func isDuplicateCode(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "code already exists") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// normalizeField trims whitespace and collapses internal runs to one space.
func normalizeField(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
