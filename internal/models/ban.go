// Package models defines the persisted entities and shared API types.
package models

import (
	"math"
	"time"
)

// Ban is the persisted moderation record for a single player. There is exactly
// one row per user ID; repeated bans overwrite the active fields via upsert
// while CreatedAt keeps the time the user was first banned. Rows are never
// hard-deleted: unbanning or expiry flips Active off and the history stays.
type Ban struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UserID       string     `gorm:"uniqueIndex;not null" json:"userId"`
	Username     string     `gorm:"not null" json:"username"`
	Moderator    string     `gorm:"not null" json:"moderator"`
	Reason       string     `gorm:"type:text" json:"reason"`
	Duration     *int64     `json:"duration,omitempty"` // seconds, nil = permanent
	DurationText string     `json:"durationText"`
	BannedAt     time.Time  `json:"bannedAt"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	Active       bool       `gorm:"index" json:"active"`
	UnbannedAt   *time.Time `json:"unbannedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Ban) TableName() string {
	return "bans"
}

// Expired reports whether the ban's expiry time has passed. Permanent bans
// never expire.
func (b *Ban) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// DaysRemaining returns the whole days left until expiry, rounded up, or nil
// for permanent bans.
func (b *Ban) DaysRemaining(now time.Time) *int {
	if b.ExpiresAt == nil {
		return nil
	}
	days := int(math.Ceil(b.ExpiresAt.Sub(now).Hours() / 24))
	return &days
}

// BanView is the public listing shape for a ban record.
type BanView struct {
	UserID        string     `json:"userId"`
	Username      string     `json:"username"`
	Moderator     string     `json:"moderator"`
	Reason        string     `json:"reason"`
	Duration      string     `json:"duration"`
	BannedAt      time.Time  `json:"bannedAt"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	DaysRemaining *int       `json:"daysRemaining"`
}

// View projects the record into its listing shape.
func (b *Ban) View(now time.Time) BanView {
	return BanView{
		UserID:        b.UserID,
		Username:      b.Username,
		Moderator:     b.Moderator,
		Reason:        b.Reason,
		Duration:      b.DurationText,
		BannedAt:      b.BannedAt,
		ExpiresAt:     b.ExpiresAt,
		DaysRemaining: b.DaysRemaining(now),
	}
}
