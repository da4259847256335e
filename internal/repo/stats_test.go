package repo

import (
	"context"
	"testing"
	"time"

	"github.com/cardbox/warranty-backend/internal/domain"
)

func TestSellerWarrantyStats_EmptyAndPopulated(t *testing.T) {
	db := newRepoDB(t, &domain.Warranty{})
	ctx := context.Background()

	count, maxTS, err := SellerWarrantyStats(ctx, db, "s1")
	if err != nil {
		t.Fatalf("SellerWarrantyStats empty: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("expected (0, nil) for empty seller, got (%d, %v)", count, maxTS)
	}

	if _, err := CreateWarranty(ctx, db, issuedWarranty("CB-AAAA-2222", "s1")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateWarranty(ctx, db, issuedWarranty("CB-BBBB-3333", "s1")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Other sellers are invisible.
	if _, err := CreateWarranty(ctx, db, issuedWarranty("CB-CCCC-4444", "s2")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, maxTS, err = SellerWarrantyStats(ctx, db, "s1")
	if err != nil {
		t.Fatalf("SellerWarrantyStats: %v", err)
	}
	if count != 2 || maxTS == nil {
		t.Fatalf("expected (2, non-nil), got (%d, %v)", count, maxTS)
	}
}

func TestSellerWarrantyStats_ClaimBumpsMaxUpdatedAt(t *testing.T) {
	db := newRepoDB(t, &domain.Warranty{})
	ctx := context.Background()

	w, _ := CreateWarranty(ctx, db, issuedWarranty("CB-AAAA-2222", "s1"))
	// Age the row so the claim's updated_at is measurably newer.
	old := time.Now().UTC().Add(-time.Hour)
	db.Model(&domain.Warranty{}).Where("id = ?", w.ID).Update("updated_at", old)

	_, before, err := SellerWarrantyStats(ctx, db, "s1")
	if err != nil || before == nil {
		t.Fatalf("stats before: %v %v", before, err)
	}

	if _, err := ClaimWarranty(ctx, db, "CB-AAAA-2222", "b1", "b1@x.example", time.Now().UTC()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, after, err := SellerWarrantyStats(ctx, db, "s1")
	if err != nil || after == nil {
		t.Fatalf("stats after: %v %v", after, err)
	}
	if !after.After(*before) {
		t.Fatalf("claim should bump max updated_at: before=%v after=%v", before, after)
	}
}

func TestBuyerWarrantyStats_TracksOwnership(t *testing.T) {
	db := newRepoDB(t, &domain.Warranty{})
	ctx := context.Background()
	now := time.Now().UTC()

	w, _ := CreateWarranty(ctx, db, issuedWarranty("CB-AAAA-2222", "s1"))
	if _, err := ClaimWarranty(ctx, db, "CB-AAAA-2222", "b1", "b1@x.example", now); err != nil {
		t.Fatalf("claim: %v", err)
	}

	count, _, err := BuyerWarrantyStats(ctx, db, "b1")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 owned record, got %d err=%v", count, err)
	}

	if _, err := ReleaseWarranty(ctx, db, w.ID, "b1", "b1@x.example", now); err != nil {
		t.Fatalf("release: %v", err)
	}
	count, _, err = BuyerWarrantyStats(ctx, db, "b1")
	if err != nil || count != 0 {
		t.Fatalf("released record must leave the buyer's stats, got %d err=%v", count, err)
	}
}
