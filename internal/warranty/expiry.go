package warranty

import (
	"errors"
	"math"
	"time"
)

// DateLayout is the wire and storage format for calendar dates. Warranty dates
// have no time component; everything is a plain "YYYY-MM-DD" day.
const DateLayout = "2006-01-02"

// Durations sellers and buyers can pick from, in months.
var AllowedDurations = []int{6, 12, 18, 24, 36, 60}

// Coverage status values derived from the expiry date. These are computed on
// read and never persisted; a stored status would go stale the moment the
// clock passes the expiry day.
const (
	StatusActive       = "active"
	StatusExpiringSoon = "expiring_soon"
	StatusExpired      = "expired"
)

// ExpiringSoonDays is the default look-ahead window for StatusExpiringSoon.
const ExpiringSoonDays = 30

var (
	// ErrInvalidDuration is returned when a duration is not one of
	// AllowedDurations.
	ErrInvalidDuration = errors.New("duration must be one of 6, 12, 18, 24, 36 or 60 months")

	// ErrMissingExpiry is returned in custom-expiry mode when no date was
	// supplied.
	ErrMissingExpiry = errors.New("expiry date is required")

	// ErrExpiryBeforePurchase is returned when a custom expiry date precedes
	// the purchase date.
	ErrExpiryBeforePurchase = errors.New("expiry date cannot be before purchase date")

	// ErrBadDate is returned when a date string does not parse as YYYY-MM-DD.
	ErrBadDate = errors.New("date must be formatted as YYYY-MM-DD")
)

// ParseDate parses a calendar date in DateLayout, in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ValidDuration reports whether months is a selectable warranty duration.
func ValidDuration(months int) bool {
	for _, d := range AllowedDurations {
		if months == d {
			return true
		}
	}
	return false
}

// AddMonths advances a calendar date by n months using Go's date
// normalization: Jan 31 + 1 month rolls the Feb overflow forward into early
// March rather than clamping to Feb 28. This matches how the issuing frontends
// have always computed expiry, so existing records stay consistent.
func AddMonths(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, n, 0).Format(DateLayout), nil
}

// Terms is the resolved coverage window of a record: the expiry day plus the
// duration shown to users.
type Terms struct {
	ExpiryDate     string
	DurationMonths int
}

// FixedTerms computes coverage for a fixed duration-in-months selection.
func FixedTerms(purchaseDate string, months int) (Terms, error) {
	if !ValidDuration(months) {
		return Terms{}, ErrInvalidDuration
	}
	exp, err := AddMonths(purchaseDate, months)
	if err != nil {
		return Terms{}, err
	}
	return Terms{ExpiryDate: exp, DurationMonths: months}, nil
}

// CustomTerms computes coverage for an explicit expiry date. The duration is
// back-computed as round(days/30) purely for display; it is never used for a
// coverage decision.
func CustomTerms(purchaseDate, expiryDate string) (Terms, error) {
	if expiryDate == "" {
		return Terms{}, ErrMissingExpiry
	}
	start, err := ParseDate(purchaseDate)
	if err != nil {
		return Terms{}, err
	}
	end, err := ParseDate(expiryDate)
	if err != nil {
		return Terms{}, err
	}
	if end.Before(start) {
		return Terms{}, ErrExpiryBeforePurchase
	}
	days := end.Sub(start).Hours() / 24
	return Terms{
		ExpiryDate:     expiryDate,
		DurationMonths: int(math.Round(days / 30)),
	}, nil
}

// Status derives the coverage status of a record on a given day.
//
// Boundaries are inclusive on the safe side: a record expiring today is still
// covered (expiring soon, never expired), and one expiring exactly
// ExpiringSoonDays from now already counts as expiring soon.
func Status(expiryDate string, today time.Time) string {
	exp, err := ParseDate(expiryDate)
	if err != nil {
		// Unparseable expiry means the record predates validation; treat it
		// as expired rather than silently active.
		return StatusExpired
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case day.After(exp):
		return StatusExpired
	case !exp.After(day.AddDate(0, 0, ExpiringSoonDays)):
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}
