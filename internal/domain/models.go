// Package domain defines the persistence models for warranty records and
// their lifecycle history. These types are mapped with GORM and form the core
// data layer of the warranty registry.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Warranty type values. These are the only status-like values that are
// persisted; coverage status (active / expiring soon / expired) is derived
// from ExpiryDate on every read.
const (
	TypeIssued = "issued" // created by a seller with a claimable code
	TypeManual = "manual" // self-declared by a buyer, no code
)

// Verification states for a record.
const (
	VerificationVerified   = "verified"
	VerificationUnverified = "unverified"
)

// Warranty represents one product's coverage terms and current ownership.
//
// A seller-issued record starts unclaimed (BuyerID nil) and carries a unique
// shareable code. Claiming attaches a buyer; releasing detaches them again and
// makes the same code claimable by the next owner. Manual records are created
// directly by a buyer, carry no code, and never enter the claim/release cycle.
//
// Dates are stored as plain YYYY-MM-DD strings: warranty coverage is a
// calendar-day concept and carrying a time component only invites timezone
// bugs at the expiry boundary.
type Warranty struct {
	ID string `json:"id" gorm:"type:char(36);primaryKey"`

	// Code is nil for manual records. Unique across all issued records;
	// NULLs are exempt from the unique index.
	Code *string `json:"code,omitempty" gorm:"type:varchar(16);uniqueIndex"`

	SellerID    string `json:"seller_id,omitempty" gorm:"type:varchar(64);index:idx_seller_warranties"`
	SellerEmail string `json:"seller_email,omitempty" gorm:"type:varchar(255)"`
	SellerName  string `json:"seller_name,omitempty" gorm:"type:varchar(255)"`

	// BuyerID nil means unclaimed. At most one buyer owns a record at a time;
	// the claim path enforces this with a conditional update.
	BuyerID    *string `json:"buyer_id,omitempty" gorm:"type:varchar(64);index:idx_buyer_warranties"`
	BuyerEmail *string `json:"buyer_email,omitempty" gorm:"type:varchar(255)"`

	CustomerName  string `json:"customer_name" gorm:"type:varchar(255)"`
	CustomerPhone string `json:"customer_phone,omitempty" gorm:"type:varchar(32)"`

	ProductModel string `json:"product_model" gorm:"type:varchar(255);not null"`
	Brand        string `json:"brand,omitempty" gorm:"type:varchar(255)"`
	SerialNumber string `json:"serial_number" gorm:"type:varchar(128);index"`

	PurchaseDate   string `json:"purchase_date" gorm:"type:char(10);not null"`
	ExpiryDate     string `json:"expiry_date" gorm:"type:char(10);not null"`
	DurationMonths int    `json:"duration_months" gorm:"not null"`

	Type               string `json:"type" gorm:"type:varchar(16);not null;check:type IN ('issued','manual')"`
	VerificationStatus string `json:"verification_status" gorm:"type:varchar(16);not null;default:'verified'"`

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	TransferredAt *time.Time `json:"transferred_at,omitempty"`
	// PreviousOwner records the releasing buyer's email across a transfer.
	PreviousOwner *string `json:"previous_owner,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Warranty.
func (Warranty) TableName() string { return "warranties" }

// Claimed reports whether the record currently has an owner.
func (w *Warranty) Claimed() bool { return w.BuyerID != nil && *w.BuyerID != "" }

// Lifecycle actions recorded in a warranty's history.
const (
	ActionIssued       = "issued"
	ActionClaimed      = "claimed"
	ActionReleased     = "released"
	ActionSelfDeclared = "self_declared"
)

// WarrantyEvent is one entry in a record's append-only lifecycle history.
// Events are never updated or deleted; the sequence of events for a warranty
// is its audit trail.
type WarrantyEvent struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	WarrantyID string    `json:"warranty_id" gorm:"type:char(36);not null;index:idx_warranty_events,priority:1"`
	Action     string    `json:"action" gorm:"type:varchar(16);not null;check:action IN ('issued','claimed','released','self_declared')"`
	Actor      string    `json:"actor,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_warranty_events,priority:2"`

	// Warranty is the parent record. Events are cascade-deleted if the
	// warranty row is ever hard-removed.
	Warranty Warranty `json:"-" gorm:"foreignKey:WarrantyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WarrantyEvent.
func (WarrantyEvent) TableName() string { return "warranty_events" }
