// Package service holds the relay's business logic, decoupled from transport
// and storage through small interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"banrelay/internal/discord"
	"banrelay/internal/middleware"
	"banrelay/internal/models"
)

// legTimeout bounds each outbound unban operation independently so one slow
// target cannot starve the others or the final message edit.
const legTimeout = 8 * time.Second

// BanStore is the slice of the ban repository the appeal flow needs.
type BanStore interface {
	Deactivate(ctx context.Context, userID string) error
}

// RestrictionRemover lifts a game ban on the platform.
type RestrictionRemover interface {
	DeleteUserRestriction(ctx context.Context, userID string) error
}

// SheetNotifier mirrors the unban to the staff spreadsheet.
type SheetNotifier interface {
	Unban(ctx context.Context, userID string) error
}

// MessagePatcher edits the original appeal message after resolution.
type MessagePatcher interface {
	EditWebhookMessage(ctx context.Context, applicationID, token, messageID string, edit discord.MessageEdit) error
}

// ButtonInteraction is everything the resolver needs from a moderator's
// button click, captured before the interaction response is sent.
type ButtonInteraction struct {
	Action        string // "accept" or "decline"
	UserID        string // banned player's platform user id
	ModeratorID   string // Discord id of the moderator who clicked
	ApplicationID string
	Token         string
	MessageID     string
	Embed         discord.Embed // first embed of the appeal message
}

// Outcome records one leg of the accept fan-out.
type Outcome struct {
	Target  string
	OK      bool
	Skipped bool
	Err     error
}

// AppealService resolves appeal button clicks: it fans the unban out to every
// configured target, then rewrites the appeal message to show the result and
// strip the buttons.
type AppealService struct {
	store   BanStore
	roblox  RestrictionRemover
	sheet   SheetNotifier // nil when no sheet webhook is configured
	patcher MessagePatcher
}

// NewAppealService wires an AppealService. sheet may be nil.
func NewAppealService(store BanStore, roblox RestrictionRemover, sheet SheetNotifier, patcher MessagePatcher) *AppealService {
	return &AppealService{store: store, roblox: roblox, sheet: sheet, patcher: patcher}
}

// Resolve processes a single accept or decline. It always attempts the final
// message edit, even when every unban leg failed, so moderators see the
// failure instead of a message stuck with live buttons. The returned outcomes
// describe the unban legs; an edit failure is logged, not returned, because
// the unban work has already happened.
func (s *AppealService) Resolve(ctx context.Context, b ButtonInteraction) []Outcome {
	log := middleware.Logger.With(
		slog.String("action", b.Action),
		slog.String("user_id", b.UserID),
		slog.String("moderator_id", b.ModeratorID),
	)

	var outcomes []Outcome
	if b.Action == "accept" {
		outcomes = s.unbanEverywhere(ctx, b.UserID)
		for _, o := range outcomes {
			result := "success"
			switch {
			case o.Skipped:
				result = "skipped"
			case !o.OK:
				result = "failure"
				log.Error("unban leg failed", slog.String("target", o.Target), slog.Any("error", o.Err))
			}
			middleware.RelayOperations.WithLabelValues(o.Target, result).Inc()
		}
	}

	edit := buildResolutionEdit(b, outcomes)

	editCtx, cancel := context.WithTimeout(ctx, legTimeout)
	defer cancel()
	if err := s.patcher.EditWebhookMessage(editCtx, b.ApplicationID, b.Token, b.MessageID, edit); err != nil {
		middleware.RelayOperations.WithLabelValues("discord", "failure").Inc()
		log.Error("appeal message edit failed", slog.Any("error", err))
	} else {
		middleware.RelayOperations.WithLabelValues("discord", "success").Inc()
		log.Info("appeal resolved")
	}
	return outcomes
}

// unbanEverywhere runs the store, platform, and sheet legs concurrently, each
// under its own deadline. A missing ban record counts as success: the point
// of every leg is that the user ends up unbanned, and an absent restriction
// already satisfies that.
func (s *AppealService) unbanEverywhere(ctx context.Context, userID string) []Outcome {
	run := func(target string, fn func(context.Context) error) Outcome {
		legCtx, cancel := context.WithTimeout(ctx, legTimeout)
		defer cancel()
		err := fn(legCtx)
		return Outcome{Target: target, OK: err == nil, Err: err}
	}

	outcomes := make([]Outcome, 3)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		outcomes[0] = run("database", func(ctx context.Context) error {
			err := s.store.Deactivate(ctx, userID)
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return nil
			}
			return err
		})
	}()

	go func() {
		defer wg.Done()
		outcomes[1] = run("roblox", func(ctx context.Context) error {
			return s.roblox.DeleteUserRestriction(ctx, userID)
		})
	}()

	if s.sheet != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[2] = run("sheet", func(ctx context.Context) error {
				return s.sheet.Unban(ctx, userID)
			})
		}()
	} else {
		outcomes[2] = Outcome{Target: "sheet", Skipped: true}
	}

	wg.Wait()
	return outcomes
}

// buildResolutionEdit rewrites the appeal embed with the result and clears
// the components so the buttons cannot be clicked again.
func buildResolutionEdit(b ButtonInteraction, outcomes []Outcome) discord.MessageEdit {
	embed := b.Embed

	if b.Action != "accept" {
		embed.Title = "Appeal Declined"
		embed.Color = discord.ColorRed
		embed = embed.WithField("Status", fmt.Sprintf("Declined by <@%s>", b.ModeratorID))
		return discord.MessageEdit{Embeds: []discord.Embed{embed}, Components: []discord.Component{}}
	}

	succeeded, attempted := 0, 0
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		attempted++
		if o.OK {
			succeeded++
		}
	}

	switch {
	case succeeded == attempted:
		embed.Title = "Appeal Accepted"
		embed.Color = discord.ColorGreen
	case succeeded > 0:
		embed.Title = "Appeal Accepted (Partial)"
		embed.Color = discord.ColorAmber
	default:
		embed.Title = "Appeal Accept Failed"
		embed.Color = discord.ColorRed
	}

	embed = embed.WithField("Status", fmt.Sprintf("Accepted by <@%s>", b.ModeratorID))
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		mark := "✅ Success"
		if !o.OK {
			mark = "❌ Failed"
		}
		embed = embed.WithField(legLabel(o.Target), mark)
	}
	return discord.MessageEdit{Embeds: []discord.Embed{embed}, Components: []discord.Component{}}
}

func legLabel(target string) string {
	switch target {
	case "database":
		return "Database Unban"
	case "roblox":
		return "Roblox Unban"
	case "sheet":
		return "Sheet Unban"
	default:
		return target
	}
}
