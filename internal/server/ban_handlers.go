package server

import (
	"errors"
	"log/slog"
	"time"

	"banrelay/internal/discord"
	"banrelay/internal/middleware"
	"banrelay/internal/models"
	"banrelay/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// CreateBanRequest is the body of POST /api/ban.
type CreateBanRequest struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Moderator string `json:"moderator"`
	Reason    string `json:"reason"`
	Duration  *int64 `json:"duration"` // seconds; nil or non-positive = permanent
}

// CreateBan records a ban and posts a notification embed to the Discord
// channel. The notification is best effort: the ban is already persisted, so
// a Discord outage must not fail the call.
func (s *Server) CreateBan(c *fiber.Ctx) error {
	var req CreateBanRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}
	if req.UserID == "" || req.Username == "" || req.Moderator == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId, username and moderator are required"))
	}

	now := time.Now()
	ban := &models.Ban{
		UserID:    req.UserID,
		Username:  req.Username,
		Moderator: req.Moderator,
		Reason:    req.Reason,
		Duration:  req.Duration,
		BannedAt:  now,
	}

	if err := s.banRepo.Upsert(c.UserContext(), ban); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if s.config.DiscordChannelID != "" {
		msg := discord.NewBanMessage(discord.BanNotice{
			Username:  ban.Username,
			UserID:    ban.UserID,
			Moderator: ban.Moderator,
			Reason:    ban.Reason,
			Duration:  ban.DurationText,
		}, now)
		if _, err := s.discordClient.CreateMessage(c.UserContext(), s.config.DiscordChannelID, msg); err != nil {
			middleware.RelayOperations.WithLabelValues("discord", "failure").Inc()
			middleware.Logger.ErrorContext(c.UserContext(), "ban notification failed",
				slog.String("user_id", ban.UserID), slog.Any("error", err))
		} else {
			middleware.RelayOperations.WithLabelValues("discord", "success").Inc()
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"ban":     ban.View(now),
	})
}

// UnbanRequest is the body of POST /api/unban.
type UnbanRequest struct {
	UserID string `json:"userId"`
}

// Unban deactivates a user's ban record.
func (s *Server) Unban(c *fiber.Ctx) error {
	var req UnbanRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId is required"))
	}

	if err := s.banRepo.Deactivate(c.UserContext(), req.UserID); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "No active ban found for this user",
			})
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// GetBans lists ban records, active-only by default, newest first.
func (s *Server) GetBans(c *fiber.Ctx) error {
	limit, skip := parsePagination(c)
	activeOnly := parseBoolQuery(c, "active", true)

	bans, total, err := s.banRepo.List(c.UserContext(), activeOnly, limit, skip)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	var totalInDatabase int64
	if err := s.db.WithContext(c.UserContext()).Model(&models.Ban{}).Count(&totalInDatabase).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	now := time.Now()
	views := make([]models.BanView, 0, len(bans))
	for i := range bans {
		views = append(views, bans[i].View(now))
	}

	pages := int64(0)
	if total > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total":           total,
		"totalInDatabase": totalInDatabase,
		"page":            int64(skip/limit) + 1,
		"pages":           pages,
		"bans":            views,
	})
}

// CheckBan reports whether the user currently has an active ban. A record
// whose expiry has passed is swept inactive by the read and reported as not
// banned.
func (s *Server) CheckBan(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId is required"))
	}

	ban, err := s.banRepo.GetActive(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrBanExpired) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"banned": false,
				"note":   "Ban expired",
			})
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"banned": false})
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"banned": true,
		"ban":    ban.View(time.Now()),
	})
}
