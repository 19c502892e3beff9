// Package discord implements the subset of the Discord REST and interaction
// APIs the relay needs: signature verification, notification embeds, and
// webhook message edits.
package discord

// Interaction types received on the interactions endpoint.
const (
	InteractionTypePing      = 1
	InteractionTypeComponent = 3
)

// Interaction response types.
const (
	ResponseTypePong                  = 1
	ResponseTypeDeferredMessageUpdate = 6
)

// Button styles.
const (
	ButtonStyleSuccess = 3
	ButtonStyleDanger  = 4
)

// Component types.
const (
	ComponentTypeActionRow = 1
	ComponentTypeButton    = 2
)

// Embed colors used by the relay.
const (
	ColorGreen = 3066993  // full success
	ColorAmber = 16776960 // partial success, and ban notices
	ColorRed   = 15158332 // failure or decline
	ColorBlue  = 3447003  // appeal submissions
)

// Interaction is the inbound interaction payload.
type Interaction struct {
	Type          int              `json:"type"`
	Data          *InteractionData `json:"data,omitempty"`
	Message       *Message         `json:"message,omitempty"`
	Token         string           `json:"token"`
	Member        *Member          `json:"member,omitempty"`
	ApplicationID string           `json:"application_id"`
}

// InteractionData carries the component identifier of a button click.
type InteractionData struct {
	CustomID string `json:"custom_id"`
}

// InteractionResponse is the synchronous reply to an interaction.
type InteractionResponse struct {
	Type int `json:"type"`
}

// Member identifies the guild member who triggered an interaction.
type Member struct {
	User *User `json:"user,omitempty"`
}

// User is a Discord user reference.
type User struct {
	ID string `json:"id"`
}

// Message is a channel message as echoed back inside an interaction.
type Message struct {
	ID     string  `json:"id"`
	Embeds []Embed `json:"embeds,omitempty"`
}

// Embed is a Discord message embed.
type Embed struct {
	Title     string       `json:"title,omitempty"`
	Color     int          `json:"color,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

// EmbedField is a single name/value pair on an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Component is an interactive message component (action row or button).
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// ChannelMessage is the body of a message-create call.
type ChannelMessage struct {
	Embeds     []Embed     `json:"embeds"`
	Components []Component `json:"components,omitempty"`
}

// MessageEdit is the body of a webhook message PATCH. Components is not
// omitempty: sending an empty array is how the action buttons get removed.
type MessageEdit struct {
	Embeds     []Embed     `json:"embeds"`
	Components []Component `json:"components"`
}

// WithField returns a copy of the embed with the field appended. The receiver
// and its field slice are never mutated; interaction payloads are shared with
// the caller's message state.
func (e Embed) WithField(name, value string) Embed {
	fields := make([]EmbedField, 0, len(e.Fields)+1)
	fields = append(fields, e.Fields...)
	fields = append(fields, EmbedField{Name: name, Value: value})
	e.Fields = fields
	return e
}
