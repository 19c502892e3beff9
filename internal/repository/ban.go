// Package repository implements the data access layer for ban records.
package repository

import (
	"context"
	"errors"
	"time"

	"banrelay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBanExpired is returned by GetActive when the record existed but its
// expiry had already passed; the record is swept to inactive as a side effect.
var ErrBanExpired = errors.New("ban expired")

// BanRepository defines persistence operations for ban records.
type BanRepository interface {
	// Upsert inserts the ban or overwrites the active fields of an existing
	// record for the same user, preserving the original CreatedAt.
	Upsert(ctx context.Context, ban *models.Ban) error
	// Deactivate soft-deletes the user's ban. Returns a not-found error when
	// no record exists; deactivating an already-inactive ban is a no-op success.
	Deactivate(ctx context.Context, userID string) error
	// GetActive returns the user's active ban, lazily sweeping it to inactive
	// (and returning ErrBanExpired) when its expiry has passed.
	GetActive(ctx context.Context, userID string) (*models.Ban, error)
	// List returns ban records ordered most-recent-first with the total count
	// of matching rows. Records whose expiry has passed are swept to inactive
	// and excluded from the result.
	List(ctx context.Context, activeOnly bool, limit, skip int) ([]models.Ban, int64, error)
}

type banRepository struct {
	db *gorm.DB
}

// NewBanRepository returns a new BanRepository implementation.
func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Upsert(ctx context.Context, ban *models.Ban) error {
	now := time.Now().UTC()
	if ban.BannedAt.IsZero() {
		ban.BannedAt = now
	}
	if ban.Duration != nil && *ban.Duration > 0 {
		expires := ban.BannedAt.Add(time.Duration(*ban.Duration) * time.Second)
		ban.ExpiresAt = &expires
	} else {
		ban.Duration = nil
		ban.ExpiresAt = nil
	}
	ban.DurationText = models.FormatDuration(ban.Duration)
	ban.Active = true
	ban.UnbannedAt = nil

	// created_at is deliberately absent from the conflict assignments so a
	// re-ban keeps the time the user was first banned.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"username":      ban.Username,
			"moderator":     ban.Moderator,
			"reason":        ban.Reason,
			"duration":      ban.Duration,
			"duration_text": ban.DurationText,
			"banned_at":     ban.BannedAt,
			"expires_at":    ban.ExpiresAt,
			"active":        true,
			"unbanned_at":   nil,
			"updated_at":    now,
		}),
	}).Create(ban).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *banRepository) Deactivate(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Ban{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"active":      false,
			"unbanned_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewBanNotFoundError(userID)
	}
	return nil
}

func (r *banRepository) GetActive(ctx context.Context, userID string) (*models.Ban, error) {
	var ban models.Ban
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		First(&ban).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewBanNotFoundError(userID)
		}
		return nil, models.NewInternalError(err)
	}

	now := time.Now().UTC()
	if ban.Expired(now) {
		if err := r.sweep(ctx, now, ban.ID); err != nil {
			return nil, err
		}
		return nil, ErrBanExpired
	}

	return &ban, nil
}

func (r *banRepository) List(ctx context.Context, activeOnly bool, limit, skip int) ([]models.Ban, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Ban{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var bans []models.Ban
	if err := query.
		Order("banned_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&bans).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	// Lazy expiry: sweep anything past its expiry and drop it from the page.
	now := time.Now().UTC()
	var expiredIDs []uint
	fresh := bans[:0]
	for _, ban := range bans {
		if ban.Active && ban.Expired(now) {
			expiredIDs = append(expiredIDs, ban.ID)
			continue
		}
		fresh = append(fresh, ban)
	}
	if len(expiredIDs) > 0 {
		if err := r.sweep(ctx, now, expiredIDs...); err != nil {
			return nil, 0, err
		}
	}

	return fresh, total, nil
}

func (r *banRepository) sweep(ctx context.Context, now time.Time, ids ...uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Ban{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": now,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
