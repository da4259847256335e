// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the append-only
// WarrantyEvent history.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbox/warranty-backend/internal/domain"
)

// AppendEvent records one lifecycle action for a warranty. Events are
// append-only; there is deliberately no update or delete counterpart.
func AppendEvent(ctx context.Context, db *gorm.DB, warrantyID, action, actor string) (*domain.WarrantyEvent, error) {
	ev := &domain.WarrantyEvent{
		ID:         uuid.NewString(),
		WarrantyID: warrantyID,
		Action:     action,
		Actor:      actor,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// ListEvents returns the full history of a warranty in chronological order.
func ListEvents(ctx context.Context, db *gorm.DB, warrantyID string) ([]domain.WarrantyEvent, error) {
	var out []domain.WarrantyEvent
	err := db.WithContext(ctx).
		Where("warranty_id = ?", warrantyID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
