package repo

import (
	"context"
	"testing"
	"time"

	"github.com/cardbox/warranty-backend/internal/domain"
)

func TestAppendEvent_And_ListEvents_Chronological(t *testing.T) {
	db := newRepoDB(t, &domain.Warranty{}, &domain.WarrantyEvent{})
	ctx := context.Background()

	w, err := CreateWarranty(ctx, db, issuedWarranty("CB-AAAA-2222", "s1"))
	if err != nil {
		t.Fatalf("seed warranty: %v", err)
	}

	ev1, err := AppendEvent(ctx, db, w.ID, domain.ActionIssued, "s1@shop.example")
	if err != nil {
		t.Fatalf("AppendEvent issued: %v", err)
	}
	if ev1.ID == "" || ev1.WarrantyID != w.ID || ev1.Action != domain.ActionIssued {
		t.Fatalf("unexpected event: %+v", ev1)
	}
	ev2, err := AppendEvent(ctx, db, w.ID, domain.ActionClaimed, "b1@x.example")
	if err != nil {
		t.Fatalf("AppendEvent claimed: %v", err)
	}
	// Force distinct, ordered timestamps: same-instant inserts are common in tests.
	db.Model(&domain.WarrantyEvent{}).Where("id = ?", ev1.ID).
		Update("created_at", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	db.Model(&domain.WarrantyEvent{}).Where("id = ?", ev2.ID).
		Update("created_at", time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC))

	events, err := ListEvents(ctx, db, w.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != domain.ActionIssued || events[1].Action != domain.ActionClaimed {
		t.Fatalf("expected chronological order, got %s then %s", events[0].Action, events[1].Action)
	}
}

func TestListEvents_EmptyForUnknownWarranty(t *testing.T) {
	db := newRepoDB(t, &domain.Warranty{}, &domain.WarrantyEvent{})
	events, err := ListEvents(context.Background(), db, "nope")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
