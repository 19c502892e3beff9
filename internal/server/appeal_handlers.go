package server

import (
	"errors"
	"time"

	"banrelay/internal/discord"
	"banrelay/internal/models"
	"banrelay/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// SubmitAppealRequest is the body of POST /api/appeal. BanReason and
// Moderator are optional caller-supplied ban context, used when the store has
// no record of the ban being appealed.
type SubmitAppealRequest struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Reason    string `json:"reason"`
	BanReason string `json:"banReason"`
	Moderator string `json:"moderator"`
}

// SubmitAppeal posts an appeal embed with accept/decline buttons to the
// review channel. Unlike the ban notification, the Discord post is the whole
// point of this endpoint, so a failure propagates to the caller.
func (s *Server) SubmitAppeal(c *fiber.Ctx) error {
	var req SubmitAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}
	if req.UserID == "" || req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId and username are required"))
	}

	notice := discord.AppealNotice{
		Username:  req.Username,
		UserID:    req.UserID,
		Reason:    req.Reason,
		BanReason: req.BanReason,
		Moderator: req.Moderator,
	}

	// The store's ban context wins over the caller-supplied one when a record
	// exists. An appeal for an expired or unknown ban is still forwarded with
	// whatever context the caller gave; moderators decide what to do with it.
	ban, err := s.banRepo.GetActive(c.UserContext(), req.UserID)
	switch {
	case err == nil:
		notice.BanReason = ban.Reason
		notice.Moderator = ban.Moderator
	case errors.Is(err, repository.ErrBanExpired):
	default:
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	msg := discord.NewAppealMessage(notice, time.Now())
	created, err := s.discordClient.CreateMessage(c.UserContext(), s.config.DiscordChannelID, msg)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadGateway,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"messageId": created.ID,
	})
}
