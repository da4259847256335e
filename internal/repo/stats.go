// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides cheap aggregate queries used to derive
// weak ETags for list endpoints without fetching the rows themselves.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cardbox/warranty-backend/internal/domain"
)

// sellerStatsRow is the scan target for SellerWarrantyStats.
type sellerStatsRow struct {
	Count        int64
	MaxUpdatedAt *time.Time
}

// SellerWarrantyStats returns the number of records issued by sellerID and
// the most recent updated_at among them. Both values feed the weak ETag for
// the seller list endpoint: any issue, claim, or release bumps updated_at and
// therefore invalidates cached pages.
func SellerWarrantyStats(ctx context.Context, db *gorm.DB, sellerID string) (count int64, maxUpdatedAt *time.Time, err error) {
	var row sellerStatsRow
	err = db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Select("COUNT(*) AS count, MAX(updated_at) AS max_updated_at").
		Where("seller_id = ?", sellerID).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return row.Count, row.MaxUpdatedAt, nil
}

// BuyerWarrantyStats is the buyer-side counterpart of SellerWarrantyStats,
// keyed on current ownership.
func BuyerWarrantyStats(ctx context.Context, db *gorm.DB, buyerID string) (count int64, maxUpdatedAt *time.Time, err error) {
	var row sellerStatsRow
	err = db.WithContext(ctx).
		Model(&domain.Warranty{}).
		Select("COUNT(*) AS count, MAX(updated_at) AS max_updated_at").
		Where("buyer_id = ?", buyerID).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return row.Count, row.MaxUpdatedAt, nil
}
