package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cardbox/warranty-backend/internal/domain"
	"github.com/cardbox/warranty-backend/internal/repo"
	"github.com/cardbox/warranty-backend/internal/warranty"
)

// newServiceDB opens a throwaway SQLite database. The fakes below never touch
// it, but the service wraps writes in transactions and needs a live handle to
// begin them.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("warranty_service_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func ptr(s string) *string { return &s }

// ----- Fake repo -----

type fakeWarrantyRepo struct {
	// capture args
	createdWarranties []*domain.Warranty
	createErrs        []error // popped per CreateWarranty call

	getID       string
	getWarranty *domain.Warranty
	getErr      error

	byCodeCode     string
	byCodeWarranty *domain.Warranty
	byCodeErr      error

	claimCode  string
	claimBuyer string
	claimRows  int64
	claimErr   error

	releaseID    string
	releaseBuyer string
	releaseRows  int64
	releaseErr   error

	events   []domain.WarrantyEvent
	eventErr error

	listEvents []domain.WarrantyEvent

	countTotal int64
	countErr   error
	pageOffset int
	pageLimit  int
	pageItems  []domain.Warranty
	pageErr    error
}

func (r *fakeWarrantyRepo) CreateWarranty(ctx context.Context, db *gorm.DB, w *domain.Warranty) (*domain.Warranty, error) {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	w.ID = fmt.Sprintf("w-%d", len(r.createdWarranties)+1)
	r.createdWarranties = append(r.createdWarranties, w)
	return w, nil
}

func (r *fakeWarrantyRepo) GetWarranty(ctx context.Context, db *gorm.DB, id string) (*domain.Warranty, error) {
	r.getID = id
	return r.getWarranty, r.getErr
}

func (r *fakeWarrantyRepo) GetWarrantyByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Warranty, error) {
	r.byCodeCode = code
	return r.byCodeWarranty, r.byCodeErr
}

func (r *fakeWarrantyRepo) ClaimWarranty(ctx context.Context, db *gorm.DB, code, buyerID, buyerEmail string, now time.Time) (int64, error) {
	r.claimCode, r.claimBuyer = code, buyerID
	return r.claimRows, r.claimErr
}

func (r *fakeWarrantyRepo) ReleaseWarranty(ctx context.Context, db *gorm.DB, id, buyerID, buyerEmail string, now time.Time) (int64, error) {
	r.releaseID, r.releaseBuyer = id, buyerID
	return r.releaseRows, r.releaseErr
}

func (r *fakeWarrantyRepo) AppendEvent(ctx context.Context, db *gorm.DB, warrantyID, action, actor string) (*domain.WarrantyEvent, error) {
	if r.eventErr != nil {
		return nil, r.eventErr
	}
	ev := domain.WarrantyEvent{ID: fmt.Sprintf("e-%d", len(r.events)+1), WarrantyID: warrantyID, Action: action, Actor: actor}
	r.events = append(r.events, ev)
	return &ev, nil
}

func (r *fakeWarrantyRepo) ListEvents(ctx context.Context, db *gorm.DB, warrantyID string) ([]domain.WarrantyEvent, error) {
	return r.listEvents, nil
}

func (r *fakeWarrantyRepo) CountSellerWarranties(ctx context.Context, db *gorm.DB, sellerID string) (int64, error) {
	return r.countTotal, r.countErr
}

func (r *fakeWarrantyRepo) ListSellerWarrantiesPage(ctx context.Context, db *gorm.DB, sellerID string, offset, limit int) ([]domain.Warranty, error) {
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, r.pageErr
}

func (r *fakeWarrantyRepo) CountBuyerWarranties(ctx context.Context, db *gorm.DB, buyerID string) (int64, error) {
	return r.countTotal, r.countErr
}

func (r *fakeWarrantyRepo) ListBuyerWarrantiesPage(ctx context.Context, db *gorm.DB, buyerID string, offset, limit int) ([]domain.Warranty, error) {
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, r.pageErr
}

// ----- Tests -----

func TestNewWarrantyService_Defaults(t *testing.T) {
	r := &fakeWarrantyRepo{}
	s := NewWarrantyService(nil, r)

	if s.Repo != r {
		t.Fatalf("repo not set")
	}
	if s.CodeMaxAttempts != 5 {
		t.Fatalf("CodeMaxAttempts default = 5, got %d", s.CodeMaxAttempts)
	}
}

func TestNormalizeField(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   leading   ":   "leading",
		"multi   spaces":  "multi spaces",
		"tabs\tand\nnl  ": "tabs and nl",
		" already ok ":    "already ok",
		"\t  \n":          "",
	}
	for in, want := range cases {
		if got := normalizeField(in); got != want {
			t.Errorf("normalizeField(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestIssue_MissingRequiredFields(t *testing.T) {
	s := NewWarrantyService(newServiceDB(t), &fakeWarrantyRepo{})

	in := IssueInput{CustomerName: "  ", ProductModel: "M", SerialNumber: "S", PurchaseDate: "2025-06-01", DurationMonths: 12}
	if _, err := s.Issue(context.Background(), Identity{UID: "s1"}, in); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestIssue_InvalidDuration(t *testing.T) {
	s := NewWarrantyService(newServiceDB(t), &fakeWarrantyRepo{})

	in := IssueInput{CustomerName: "C", ProductModel: "M", SerialNumber: "S", PurchaseDate: "2025-06-01", DurationMonths: 7}
	if _, err := s.Issue(context.Background(), Identity{UID: "s1"}, in); !errors.Is(err, warranty.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestIssue_Success_GeneratesCodeAndAppendsHistory(t *testing.T) {
	r := &fakeWarrantyRepo{}
	s := NewWarrantyService(newServiceDB(t), r)

	in := IssueInput{
		CustomerName:   "  Rahim   Ahmed ",
		ProductModel:   "AC 1.5T",
		SerialNumber:   "SN-1",
		PurchaseDate:   "2025-06-01",
		DurationMonths: 12,
	}
	w, err := s.Issue(context.Background(), Identity{UID: "s1", Email: "s1@shop.example"}, in)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if w.Code == nil || !warranty.ValidCode(*w.Code) {
		t.Fatalf("issued code must match the canonical format, got %v", w.Code)
	}
	if w.CustomerName != "Rahim Ahmed" {
		t.Fatalf("customer name not normalized: %q", w.CustomerName)
	}
	if w.ExpiryDate != "2026-06-01" || w.DurationMonths != 12 {
		t.Fatalf("unexpected terms: %s / %d", w.ExpiryDate, w.DurationMonths)
	}
	if w.Type != domain.TypeIssued || w.VerificationStatus != domain.VerificationVerified {
		t.Fatalf("unexpected type/verification: %s/%s", w.Type, w.VerificationStatus)
	}
	// Anonymous sellers get the storefront default.
	if w.SellerName != "Official Store" {
		t.Fatalf("expected default seller name, got %q", w.SellerName)
	}
	if len(r.events) != 1 || r.events[0].Action != domain.ActionIssued {
		t.Fatalf("expected one issued event, got %+v", r.events)
	}
}

func TestIssue_CodeCollision_RetriesThenExhausts(t *testing.T) {
	// Two collisions then success: third attempt wins.
	r := &fakeWarrantyRepo{createErrs: []error{repo.ErrDuplicateCode, repo.ErrDuplicateCode}}
	s := NewWarrantyService(newServiceDB(t), r)

	in := IssueInput{CustomerName: "C", ProductModel: "M", SerialNumber: "S", PurchaseDate: "2025-06-01", DurationMonths: 6}
	if _, err := s.Issue(context.Background(), Identity{UID: "s1"}, in); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(r.createdWarranties) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(r.createdWarranties))
	}

	// Nothing but collisions: the cap trips.
	r2 := &fakeWarrantyRepo{createErrs: []error{
		repo.ErrDuplicateCode, repo.ErrDuplicateCode, repo.ErrDuplicateCode,
	}}
	s2 := NewWarrantyService(newServiceDB(t), r2)
	s2.CodeMaxAttempts = 3
	if _, err := s2.Issue(context.Background(), Identity{UID: "s1"}, in); !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestClaim_UnknownCode_MapsToNotFound(t *testing.T) {
	r := &fakeWarrantyRepo{claimRows: 0, byCodeErr: gorm.ErrRecordNotFound}
	s := NewWarrantyService(newServiceDB(t), r)

	_, err := s.Claim(context.Background(), Identity{UID: "b1"}, "cb-zzzz-9999", "")
	if !errors.Is(err, ErrWarrantyNotFound) {
		t.Fatalf("expected ErrWarrantyNotFound, got %v", err)
	}
	// Code must have been normalized before hitting the repo.
	if r.claimCode != "CB-ZZZZ-9999" {
		t.Fatalf("expected normalized code, repo saw %q", r.claimCode)
	}
}

func TestClaim_AlreadyClaimed(t *testing.T) {
	owner := "someone-else"
	r := &fakeWarrantyRepo{
		claimRows:      0,
		byCodeWarranty: &domain.Warranty{ID: "w-1", BuyerID: &owner},
	}
	s := NewWarrantyService(newServiceDB(t), r)

	_, err := s.Claim(context.Background(), Identity{UID: "b1"}, "CB-AAAA-2222", "")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestClaim_PurchaseDateMismatch(t *testing.T) {
	r := &fakeWarrantyRepo{
		byCodeWarranty: &domain.Warranty{ID: "w-1", PurchaseDate: "2025-06-01"},
	}
	s := NewWarrantyService(newServiceDB(t), r)

	_, err := s.Claim(context.Background(), Identity{UID: "b1"}, "CB-AAAA-2222", "2025-01-01")
	if !errors.Is(err, ErrPurchaseDateMismatch) {
		t.Fatalf("expected ErrPurchaseDateMismatch, got %v", err)
	}
	// The conditional update must never have run.
	if r.claimCode != "" {
		t.Fatalf("claim should not be attempted on mismatch")
	}
}

func TestClaim_Success_AppendsClaimedEvent(t *testing.T) {
	buyer := "b1"
	r := &fakeWarrantyRepo{
		claimRows:      1,
		byCodeWarranty: &domain.Warranty{ID: "w-1", BuyerID: &buyer, PurchaseDate: "2025-06-01"},
	}
	s := NewWarrantyService(newServiceDB(t), r)

	w, err := s.Claim(context.Background(), Identity{UID: "b1", Email: "b1@x.example"}, " cb-aaaa-2222 ", "2025-06-01")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if w.ID != "w-1" {
		t.Fatalf("unexpected record: %+v", w)
	}
	if r.claimBuyer != "b1" {
		t.Fatalf("repo saw buyer %q", r.claimBuyer)
	}
	if len(r.events) != 1 || r.events[0].Action != domain.ActionClaimed || r.events[0].Actor != "b1@x.example" {
		t.Fatalf("expected one claimed event, got %+v", r.events)
	}
}

func TestRelease_NotOwner_NotFound_Manual(t *testing.T) {
	ctx := context.Background()

	// Missing record.
	r := &fakeWarrantyRepo{getErr: gorm.ErrRecordNotFound}
	s := NewWarrantyService(newServiceDB(t), r)
	if _, err := s.Release(ctx, Identity{UID: "b1"}, "w-1"); !errors.Is(err, ErrWarrantyNotFound) {
		t.Fatalf("missing: expected ErrWarrantyNotFound, got %v", err)
	}

	// Someone else's record: existence is not leaked.
	other := "b2"
	r2 := &fakeWarrantyRepo{getWarranty: &domain.Warranty{ID: "w-1", BuyerID: &other, Code: ptr("CB-AAAA-2222"), Type: domain.TypeIssued}}
	s2 := NewWarrantyService(newServiceDB(t), r2)
	if _, err := s2.Release(ctx, Identity{UID: "b1"}, "w-1"); !errors.Is(err, ErrWarrantyNotFound) {
		t.Fatalf("foreign: expected ErrWarrantyNotFound, got %v", err)
	}

	// Manual records carry no code and cannot transfer.
	mine := "b1"
	r3 := &fakeWarrantyRepo{getWarranty: &domain.Warranty{ID: "w-1", BuyerID: &mine, Type: domain.TypeManual}}
	s3 := NewWarrantyService(newServiceDB(t), r3)
	if _, err := s3.Release(ctx, Identity{UID: "b1"}, "w-1"); !errors.Is(err, ErrNotTransferable) {
		t.Fatalf("manual: expected ErrNotTransferable, got %v", err)
	}
}

func TestRelease_Success_ReturnsTransferCode(t *testing.T) {
	mine := "b1"
	r := &fakeWarrantyRepo{
		getWarranty: &domain.Warranty{ID: "w-1", BuyerID: &mine, Code: ptr("CB-AAAA-2222"), Type: domain.TypeIssued},
		releaseRows: 1,
	}
	s := NewWarrantyService(newServiceDB(t), r)

	code, err := s.Release(context.Background(), Identity{UID: "b1", Email: "b1@x.example"}, "w-1")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Transfer reuses the original code; the next owner claims with it.
	if code != "CB-AAAA-2222" {
		t.Fatalf("expected original code back, got %q", code)
	}
	if r.releaseID != "w-1" || r.releaseBuyer != "b1" {
		t.Fatalf("conditional release saw %q/%q", r.releaseID, r.releaseBuyer)
	}
	if len(r.events) != 1 || r.events[0].Action != domain.ActionReleased {
		t.Fatalf("expected one released event, got %+v", r.events)
	}
}

func TestRelease_LostRace_MapsToNotFound(t *testing.T) {
	mine := "b1"
	r := &fakeWarrantyRepo{
		getWarranty: &domain.Warranty{ID: "w-1", BuyerID: &mine, Code: ptr("CB-AAAA-2222"), Type: domain.TypeIssued},
		releaseRows: 0, // another release won between read and update
	}
	s := NewWarrantyService(newServiceDB(t), r)

	if _, err := s.Release(context.Background(), Identity{UID: "b1"}, "w-1"); !errors.Is(err, ErrWarrantyNotFound) {
		t.Fatalf("expected ErrWarrantyNotFound on lost race, got %v", err)
	}
	if len(r.events) != 0 {
		t.Fatalf("no event may be appended on a lost race")
	}
}

func TestSelfDeclare_DefaultsAndFixedTerms(t *testing.T) {
	r := &fakeWarrantyRepo{}
	s := NewWarrantyService(newServiceDB(t), r)

	w, err := s.SelfDeclare(context.Background(), Identity{UID: "b1", Email: "b1@x.example"}, SelfDeclareInput{
		ProductModel:   "Fridge",
		PurchaseDate:   "2025-01-15",
		DurationMonths: 12,
	})
	if err != nil {
		t.Fatalf("SelfDeclare: %v", err)
	}
	if w.Code != nil {
		t.Fatalf("manual records carry no code, got %v", *w.Code)
	}
	if w.SerialNumber != "N/A" || w.SellerName != "Unknown Shop" || w.CustomerName != "Me" {
		t.Fatalf("defaults not applied: %q %q %q", w.SerialNumber, w.SellerName, w.CustomerName)
	}
	if w.Type != domain.TypeManual || w.VerificationStatus != domain.VerificationUnverified {
		t.Fatalf("unexpected type/verification: %s/%s", w.Type, w.VerificationStatus)
	}
	if w.BuyerID == nil || *w.BuyerID != "b1" {
		t.Fatalf("record must be owned immediately, got %+v", w.BuyerID)
	}
	if w.ExpiryDate != "2026-01-15" {
		t.Fatalf("expiry = %s", w.ExpiryDate)
	}
	if len(r.events) != 1 || r.events[0].Action != domain.ActionSelfDeclared {
		t.Fatalf("expected one self_declared event, got %+v", r.events)
	}
}

func TestSelfDeclare_CustomExpiry_BackComputesDuration(t *testing.T) {
	r := &fakeWarrantyRepo{}
	s := NewWarrantyService(newServiceDB(t), r)

	w, err := s.SelfDeclare(context.Background(), Identity{UID: "b1"}, SelfDeclareInput{
		ProductModel:     "Fridge",
		PurchaseDate:     "2025-01-01",
		CustomExpiryDate: "2025-04-01", // 90 days ≈ 3 months
	})
	if err != nil {
		t.Fatalf("SelfDeclare custom: %v", err)
	}
	if w.ExpiryDate != "2025-04-01" || w.DurationMonths != 3 {
		t.Fatalf("custom terms: %s / %d", w.ExpiryDate, w.DurationMonths)
	}
}

func TestSelfDeclare_CustomExpiryBeforePurchase(t *testing.T) {
	s := NewWarrantyService(newServiceDB(t), &fakeWarrantyRepo{})

	_, err := s.SelfDeclare(context.Background(), Identity{UID: "b1"}, SelfDeclareInput{
		ProductModel:     "Fridge",
		PurchaseDate:     "2025-06-01",
		CustomExpiryDate: "2025-01-01",
	})
	if !errors.Is(err, warranty.ErrExpiryBeforePurchase) {
		t.Fatalf("expected ErrExpiryBeforePurchase, got %v", err)
	}
}

func TestGet_VisibilityRules(t *testing.T) {
	ctx := context.Background()
	owner := "b1"
	rec := &domain.Warranty{ID: "w-1", SellerID: "s1", BuyerID: &owner}
	r := &fakeWarrantyRepo{
		getWarranty: rec,
		listEvents:  []domain.WarrantyEvent{{ID: "e-1", Action: domain.ActionIssued}},
	}
	s := NewWarrantyService(newServiceDB(t), r)

	// Seller sees it.
	if _, evs, err := s.Get(ctx, Identity{UID: "s1"}, "w-1"); err != nil || len(evs) != 1 {
		t.Fatalf("seller view: evs=%d err=%v", len(evs), err)
	}
	// Owner sees it.
	if _, _, err := s.Get(ctx, Identity{UID: "b1"}, "w-1"); err != nil {
		t.Fatalf("owner view: %v", err)
	}
	// Anyone else gets not-found, not forbidden.
	if _, _, err := s.Get(ctx, Identity{UID: "stranger"}, "w-1"); !errors.Is(err, ErrWarrantyNotFound) {
		t.Fatalf("stranger view: expected ErrWarrantyNotFound, got %v", err)
	}
}

func TestListForSeller_DefaultsAndShortCircuit(t *testing.T) {
	r := &fakeWarrantyRepo{countTotal: 0}
	s := NewWarrantyService(newServiceDB(t), r)

	items, total, err := s.ListForSeller(context.Background(), "s1", 0, 0)
	if err != nil {
		t.Fatalf("ListForSeller: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty results when total=0; got total=%d len=%d", total, len(items))
	}

	r2 := &fakeWarrantyRepo{countTotal: 42, pageItems: []domain.Warranty{{ID: "w-1"}, {ID: "w-2"}}}
	s2 := NewWarrantyService(newServiceDB(t), r2)
	items, total, err = s2.ListForSeller(context.Background(), "s1", 3, 10)
	if err != nil || total != 42 || len(items) != 2 {
		t.Fatalf("page: total=%d len=%d err=%v", total, len(items), err)
	}
	if r2.pageOffset != 20 || r2.pageLimit != 10 {
		t.Fatalf("offset/limit = %d/%d; want 20/10", r2.pageOffset, r2.pageLimit)
	}
}

func TestListForBuyer_CountErrorPropagates(t *testing.T) {
	sentinel := errors.New("boom")
	r := &fakeWarrantyRepo{countErr: sentinel}
	s := NewWarrantyService(newServiceDB(t), r)

	if _, _, err := s.ListForBuyer(context.Background(), "b1", 1, 10); !errors.Is(err, sentinel) {
		t.Fatalf("expected count error to propagate, got %v", err)
	}
}
