package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	if (Warranty{}).TableName() != "warranties" {
		t.Fatalf("Warranty.TableName() = %q; want %q", (Warranty{}).TableName(), "warranties")
	}
	if (WarrantyEvent{}).TableName() != "warranty_events" {
		t.Fatalf("WarrantyEvent.TableName() = %q; want %q", (WarrantyEvent{}).TableName(), "warranty_events")
	}
	if (Idempotency{}).TableName() != "idempotency" {
		t.Fatalf("Idempotency.TableName() = %q; want %q", (Idempotency{}).TableName(), "idempotency")
	}
}

func TestClaimed(t *testing.T) {
	w := &Warranty{}
	if w.Claimed() {
		t.Fatalf("nil buyer must not read as claimed")
	}
	empty := ""
	w.BuyerID = &empty
	if w.Claimed() {
		t.Fatalf("empty buyer id must not read as claimed")
	}
	b := "b1"
	w.BuyerID = &b
	if !w.Claimed() {
		t.Fatalf("buyer attached must read as claimed")
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Warranty{}, &WarrantyEvent{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	// Tables exist
	for _, tbl := range []any{&Warranty{}, &WarrantyEvent{}, &Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Indexes from tags exist
	if !m.HasIndex(&Warranty{}, "idx_seller_warranties") {
		t.Fatalf("expected index idx_seller_warranties on warranties")
	}
	if !m.HasIndex(&Warranty{}, "idx_buyer_warranties") {
		t.Fatalf("expected index idx_buyer_warranties on warranties")
	}
	if !m.HasIndex(&WarrantyEvent{}, "idx_warranty_events") {
		t.Fatalf("expected index idx_warranty_events on warranty_events")
	}
	if !m.HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatalf("expected unique index ux_user_scope_key on idempotency")
	}

	// Seed a warranty with two history entries
	now := time.Now().UTC()
	code := "CB-AAAA-2222"
	w := &Warranty{
		ID: "w1", Code: &code, SellerID: "s1", SellerName: "Shop",
		CustomerName: "C", ProductModel: "M", SerialNumber: "SN-1",
		PurchaseDate: "2025-06-01", ExpiryDate: "2026-06-01", DurationMonths: 12,
		Type: TypeIssued, VerificationStatus: VerificationVerified,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("insert warranty: %v", err)
	}

	e1 := &WarrantyEvent{ID: "e1", WarrantyID: "w1", Action: ActionIssued, Actor: "s1@shop.example", CreatedAt: now}
	e2 := &WarrantyEvent{ID: "e2", WarrantyID: "w1", Action: ActionClaimed, Actor: "b1@x.example", CreatedAt: now.Add(time.Second)}
	if err := db.Create(e1).Error; err != nil {
		t.Fatalf("insert e1: %v", err)
	}
	if err := db.Create(e2).Error; err != nil {
		t.Fatalf("insert e2: %v", err)
	}

	// The action check constraint rejects values outside the lifecycle.
	bad := &WarrantyEvent{ID: "e3", WarrantyID: "w1", Action: "shredded", CreatedAt: now}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected check constraint to reject unknown action")
	}

	// CASCADE: hard-deleting the warranty removes its history
	if err := db.Unscoped().Delete(&Warranty{}, "id = ?", "w1").Error; err != nil {
		t.Fatalf("delete warranty: %v", err)
	}
	var cnt int64
	if err := db.Model(&WarrantyEvent{}).Where("warranty_id = ?", "w1").Count(&cnt).Error; err != nil {
		t.Fatalf("count events after warranty delete: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected events to cascade-delete with their warranty, got count=%d", cnt)
	}
}
