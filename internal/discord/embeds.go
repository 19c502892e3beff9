package discord

import (
	"fmt"
	"time"
)

// BanNotice holds the fields rendered into a ban notification embed.
type BanNotice struct {
	Username  string
	UserID    string
	Moderator string
	Reason    string
	Duration  string
}

// AppealNotice holds the fields rendered into an appeal review embed.
type AppealNotice struct {
	Username  string
	UserID    string
	Reason    string
	BanReason string
	Moderator string
}

// NewBanMessage builds the channel message announcing a ban. It carries no
// action components; bans are not reviewable.
func NewBanMessage(n BanNotice, now time.Time) ChannelMessage {
	reason := n.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	return ChannelMessage{
		Embeds: []Embed{{
			Title: "Player Banned",
			Color: ColorAmber,
			Fields: []EmbedField{
				{Name: "Player", Value: fmt.Sprintf("%s (ID: %s)", n.Username, n.UserID), Inline: true},
				{Name: "Moderator", Value: n.Moderator, Inline: true},
				{Name: "Reason", Value: reason},
				{Name: "Duration", Value: n.Duration, Inline: true},
			},
			Footer:    &EmbedFooter{Text: "Ban System"},
			Timestamp: now.UTC().Format(time.RFC3339),
		}},
	}
}

// NewAppealMessage builds the channel message for an appeal, including the
// accept/decline buttons whose custom ids the interaction dispatcher parses.
func NewAppealMessage(n AppealNotice, now time.Time) ChannelMessage {
	banReason := n.BanReason
	if banReason == "" {
		banReason = "Unknown"
	}
	moderator := n.Moderator
	if moderator == "" {
		moderator = "Unknown"
	}
	reason := n.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	return ChannelMessage{
		Embeds: []Embed{{
			Title: "Ban Appeal Submitted",
			Color: ColorBlue,
			Fields: []EmbedField{
				{Name: "Player", Value: fmt.Sprintf("%s (ID: %s)", n.Username, n.UserID), Inline: true},
				{Name: "Original Ban Reason", Value: banReason, Inline: true},
				{Name: "Banned By", Value: moderator, Inline: true},
				{Name: "Appeal Reason", Value: reason},
			},
			Footer:    &EmbedFooter{Text: "Ban Appeal System"},
			Timestamp: now.UTC().Format(time.RFC3339),
		}},
		Components: []Component{{
			Type: ComponentTypeActionRow,
			Components: []Component{
				{
					Type:     ComponentTypeButton,
					Style:    ButtonStyleSuccess,
					Label:    "Accept",
					CustomID: "accept_" + n.UserID,
				},
				{
					Type:     ComponentTypeButton,
					Style:    ButtonStyleDanger,
					Label:    "Decline",
					CustomID: "decline_" + n.UserID,
				},
			},
		}},
	}
}
