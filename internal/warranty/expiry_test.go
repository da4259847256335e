package warranty

import (
	"errors"
	"testing"
	"time"
)

func TestAddMonths(t *testing.T) {
	cases := []struct {
		date   string
		months int
		want   string
	}{
		{"2025-06-01", 12, "2026-06-01"},
		{"2025-01-15", 6, "2025-07-15"},
		{"2024-02-29", 12, "2025-03-01"}, // leap day rolls forward
		{"2025-01-31", 1, "2025-03-03"},  // Feb overflow rolls forward, not clamped
		{"2025-03-31", 1, "2025-05-01"},
		{"2025-12-01", 24, "2027-12-01"},
	}
	for _, tc := range cases {
		got, err := AddMonths(tc.date, tc.months)
		if err != nil {
			t.Fatalf("AddMonths(%q, %d) error: %v", tc.date, tc.months, err)
		}
		if got != tc.want {
			t.Errorf("AddMonths(%q, %d) = %q; want %q", tc.date, tc.months, got, tc.want)
		}
	}

	if _, err := AddMonths("31/01/2025", 1); !errors.Is(err, ErrBadDate) {
		t.Errorf("AddMonths with bad date: err = %v; want ErrBadDate", err)
	}
}

func TestFixedTerms(t *testing.T) {
	got, err := FixedTerms("2025-06-01", 12)
	if err != nil {
		t.Fatalf("FixedTerms error: %v", err)
	}
	if got.ExpiryDate != "2026-06-01" || got.DurationMonths != 12 {
		t.Errorf("FixedTerms = %+v; want expiry 2026-06-01, duration 12", got)
	}

	if _, err := FixedTerms("2025-06-01", 7); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("duration 7: err = %v; want ErrInvalidDuration", err)
	}
	if _, err := FixedTerms("2025-06-01", 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("duration 0: err = %v; want ErrInvalidDuration", err)
	}
}

func TestFixedTerms_ExpiryNeverBeforePurchase(t *testing.T) {
	for _, months := range AllowedDurations {
		terms, err := FixedTerms("2025-01-31", months)
		if err != nil {
			t.Fatalf("FixedTerms(%d) error: %v", months, err)
		}
		start, _ := ParseDate("2025-01-31")
		end, _ := ParseDate(terms.ExpiryDate)
		if end.Before(start) {
			t.Errorf("duration %d: expiry %s precedes purchase", months, terms.ExpiryDate)
		}
	}
}

func TestCustomTerms(t *testing.T) {
	got, err := CustomTerms("2025-01-01", "2025-04-01")
	if err != nil {
		t.Fatalf("CustomTerms error: %v", err)
	}
	if got.ExpiryDate != "2025-04-01" {
		t.Errorf("expiry = %q; want 2025-04-01", got.ExpiryDate)
	}
	if got.DurationMonths != 3 {
		t.Errorf("back-computed duration = %d; want 3", got.DurationMonths)
	}

	// Same day is allowed (zero-length coverage, duration 0).
	same, err := CustomTerms("2025-01-01", "2025-01-01")
	if err != nil {
		t.Fatalf("same-day CustomTerms error: %v", err)
	}
	if same.DurationMonths != 0 {
		t.Errorf("same-day duration = %d; want 0", same.DurationMonths)
	}

	if _, err := CustomTerms("2025-01-01", ""); !errors.Is(err, ErrMissingExpiry) {
		t.Errorf("missing expiry: err = %v; want ErrMissingExpiry", err)
	}
	if _, err := CustomTerms("2025-04-01", "2025-01-01"); !errors.Is(err, ErrExpiryBeforePurchase) {
		t.Errorf("inverted dates: err = %v; want ErrExpiryBeforePurchase", err)
	}
	if _, err := CustomTerms("2025-01-01", "soon"); !errors.Is(err, ErrBadDate) {
		t.Errorf("bad expiry: err = %v; want ErrBadDate", err)
	}
}

func TestStatus_Boundaries(t *testing.T) {
	today := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC) // time of day must not matter

	cases := []struct {
		expiry string
		want   string
	}{
		{"2025-06-14", StatusExpired},      // yesterday
		{"2025-06-15", StatusExpiringSoon}, // today: still covered, not expired
		{"2025-07-15", StatusExpiringSoon}, // exactly 30 days out, inclusive
		{"2025-07-16", StatusActive},       // 31 days out
		{"2026-06-15", StatusActive},
		{"not-a-date", StatusExpired},
	}
	for _, tc := range cases {
		if got := Status(tc.expiry, today); got != tc.want {
			t.Errorf("Status(%q) = %q; want %q", tc.expiry, got, tc.want)
		}
	}
}

func TestStatus_TodayIsNotExpired(t *testing.T) {
	today := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	if got := Status("2025-06-15", today); got == StatusExpired {
		t.Fatalf("record expiring today must not be expired yet")
	}
}
