package server

import (
	"encoding/json"
	"log/slog"
	"strings"

	"banrelay/internal/discord"
	"banrelay/internal/middleware"
	"banrelay/internal/models"
	"banrelay/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HandleInteraction is the Discord interactions endpoint. Every request is
// authenticated by its detached Ed25519 signature over timestamp+body; a ping
// gets an immediate pong, and a button click gets a deferred-update ack while
// the actual resolution runs in the background. Discord retries the whole
// interaction if the ack takes longer than three seconds, so nothing slow may
// happen before the response is written.
func (s *Server) HandleInteraction(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Signature-Ed25519")
	timestamp := c.Get("X-Signature-Timestamp")

	if !discord.VerifySignature(s.config.DiscordPublicKey, signature, timestamp, body) {
		middleware.InteractionsReceived.WithLabelValues("unsigned").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("invalid request signature"))
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		middleware.InteractionsReceived.WithLabelValues("malformed").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("malformed interaction payload"))
	}

	switch interaction.Type {
	case discord.InteractionTypePing:
		middleware.InteractionsReceived.WithLabelValues("ping").Inc()
		return c.Status(fiber.StatusOK).JSON(discord.InteractionResponse{
			Type: discord.ResponseTypePong,
		})

	case discord.InteractionTypeComponent:
		return s.handleButtonClick(c, &interaction)

	default:
		middleware.InteractionsReceived.WithLabelValues("unknown_type").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("unsupported interaction type"))
	}
}

// handleButtonClick acks the component interaction and hands resolution to a
// detached background task. Unrecognized custom ids are still acked; replying
// with an error would leave the moderator's client spinning.
func (s *Server) handleButtonClick(c *fiber.Ctx, interaction *discord.Interaction) error {
	ack := func() error {
		return c.Status(fiber.StatusOK).JSON(discord.InteractionResponse{
			Type: discord.ResponseTypeDeferredMessageUpdate,
		})
	}

	b, ok := buttonInteractionFrom(interaction)
	if !ok {
		middleware.InteractionsReceived.WithLabelValues("unknown_button").Inc()
		middleware.Logger.WarnContext(c.UserContext(), "ignoring unrecognized component interaction")
		return ack()
	}

	middleware.InteractionsReceived.WithLabelValues("button_" + b.Action).Inc()
	s.dispatchAsync(c, b)
	return ack()
}

// buttonInteractionFrom extracts the resolution inputs from a component
// interaction. Button custom ids follow "accept_{userId}" / "decline_{userId}".
func buttonInteractionFrom(interaction *discord.Interaction) (service.ButtonInteraction, bool) {
	var b service.ButtonInteraction

	if interaction.Data == nil || interaction.Message == nil {
		return b, false
	}
	action, userID, found := strings.Cut(interaction.Data.CustomID, "_")
	if !found || userID == "" || (action != "accept" && action != "decline") {
		return b, false
	}

	b = service.ButtonInteraction{
		Action:        action,
		UserID:        userID,
		ApplicationID: interaction.ApplicationID,
		Token:         interaction.Token,
		MessageID:     interaction.Message.ID,
	}
	if interaction.Member != nil && interaction.Member.User != nil {
		b.ModeratorID = interaction.Member.User.ID
	}
	if len(interaction.Message.Embeds) > 0 {
		b.Embed = interaction.Message.Embeds[0]
	}
	return b, true
}

// dispatchAsync runs the appeal resolution after the handler returns. The
// task gets a detached context so the client disconnecting cannot cancel
// half-finished unban work, and is tracked for graceful shutdown.
//
// The goroutine starts before fasthttp flushes the ack, so the first outbound
// call can race the response write. Correctness does not depend on the flush
// ordering: the ack and the fan-out are independent once the interaction is
// parsed, and the fan-out's own timeouts keep it clear of Discord's 3s ack
// window. Fiber exposes no post-write hook to sequence this strictly.
func (s *Server) dispatchAsync(c *fiber.Ctx, b service.ButtonInteraction) {
	deliveryID := uuid.NewString()
	ctx := middleware.DetachedContext(c.UserContext())

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.Error("appeal resolution panicked",
					slog.String("delivery_id", deliveryID),
					slog.Any("panic", r))
			}
		}()

		middleware.Logger.InfoContext(ctx, "resolving appeal",
			slog.String("delivery_id", deliveryID),
			slog.String("action", b.Action),
			slog.String("user_id", b.UserID))
		s.appealService.Resolve(ctx, b)
	}()
}
