package models

import (
	"testing"
	"time"
)

func seconds(n int64) *int64 { return &n }

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input *int64
		want  string
	}{
		{"nil is permanent", nil, "Permanent"},
		{"zero is permanent", seconds(0), "Permanent"},
		{"negative is permanent", seconds(-5), "Permanent"},
		{"one second", seconds(1), "1 second"},
		{"sub-minute", seconds(45), "45 seconds"},
		{"rounds down to minutes", seconds(90), "1 minute"},
		{"rounds down to hours", seconds(3700), "1 hour"},
		{"plural hours", seconds(7200), "2 hours"},
		{"one day", seconds(86400), "1 day"},
		{"one week", seconds(604800), "1 week"},
		{"one month", seconds(2592000), "1 month"},
		{"plural years", seconds(63072000), "2 years"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDuration(tc.input); got != tc.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestBanExpired(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	permanent := Ban{Active: true}
	if permanent.Expired(now) {
		t.Error("permanent ban should never expire")
	}

	past := now.Add(-time.Hour)
	expired := Ban{Active: true, ExpiresAt: &past}
	if !expired.Expired(now) {
		t.Error("ban with past expiry should be expired")
	}

	future := now.Add(time.Hour)
	active := Ban{Active: true, ExpiresAt: &future}
	if active.Expired(now) {
		t.Error("ban with future expiry should not be expired")
	}
}

func TestBanDaysRemaining(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	permanent := Ban{}
	if permanent.DaysRemaining(now) != nil {
		t.Error("permanent ban should have nil daysRemaining")
	}

	expires := now.Add(36 * time.Hour)
	b := Ban{ExpiresAt: &expires}
	got := b.DaysRemaining(now)
	if got == nil || *got != 2 {
		t.Errorf("expected 2 days remaining (rounded up), got %v", got)
	}
}
