// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "github.com/greenroom-project/greenroom/lib/ref"

// Channel kinds. The platform distinguishes channel behavior by a
// numeric type field.
const (
	ChannelTypeText     = 0
	ChannelTypeVoice    = 2
	ChannelTypeCategory = 4
)

// Overwrite subject kinds.
const (
	OverwriteRole   = 0
	OverwriteMember = 1
)

// PermissionOverwrite grants or denies permission bits for one subject
// (a role or a member) on one channel. The @everyone role shares its
// ID with the guild, so a guild-wide default overwrite uses the guild
// ID as SubjectID.
type PermissionOverwrite struct {
	SubjectID string      `json:"id"`
	Type      int         `json:"type"`
	Allow     Permissions `json:"allow"`
	Deny      Permissions `json:"deny"`
}

// CreateChannelRequest holds parameters for creating a guild channel.
type CreateChannelRequest struct {
	Name                 string                `json:"name"`
	Type                 int                   `json:"type"`
	ParentID             ref.ChannelID         `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// Channel is a guild channel as returned by the API.
type Channel struct {
	ID                   ref.ChannelID         `json:"id"`
	GuildID              ref.GuildID           `json:"guild_id"`
	Name                 string                `json:"name"`
	Type                 int                   `json:"type"`
	ParentID             ref.ChannelID         `json:"parent_id"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites"`
}

// CanSend reports whether userID may post messages in the channel,
// judging from the channel's own overwrites: the @everyone default
// (identified by guildID) applied first, then the member-specific
// overwrite. Role overwrites other than @everyone are not evaluated;
// Greenroom always writes an explicit member overwrite for its own
// service identity on channels it creates, so that overwrite is the
// deciding one in practice.
func (c *Channel) CanSend(userID ref.UserID, guildID ref.GuildID) bool {
	allowed := true
	for _, ow := range c.PermissionOverwrites {
		if ow.SubjectID != guildID.String() {
			continue
		}
		if ow.Deny.Has(PermSendMessages) {
			allowed = false
		}
		if ow.Allow.Has(PermSendMessages) {
			allowed = true
		}
	}
	for _, ow := range c.PermissionOverwrites {
		if ow.SubjectID != userID.String() {
			continue
		}
		if ow.Deny.Has(PermSendMessages) {
			allowed = false
		}
		if ow.Allow.Has(PermSendMessages) {
			allowed = true
		}
	}
	return allowed
}

// User is a platform account.
type User struct {
	ID         ref.UserID `json:"id"`
	Username   string     `json:"username"`
	GlobalName string     `json:"global_name"`
	Bot        bool       `json:"bot"`
}

// Member is a user's membership in a guild.
type Member struct {
	User User   `json:"user"`
	Nick string `json:"nick"`
}

// DisplayName returns the name the guild shows for the member: the
// guild nickname when set, otherwise the account display name,
// otherwise the username.
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

// Embed is a rich message block.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// Component kinds used in message payloads.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
)

// Button styles.
const (
	ButtonSecondary = 2
	ButtonSuccess   = 3
	ButtonDanger    = 4
)

// Button is a clickable message component. CustomID round-trips
// through the interaction that firing the button produces.
type Button struct {
	Type     int    `json:"type"`
	Style    int    `json:"style"`
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
	Emoji    *Emoji `json:"emoji,omitempty"`
}

// Emoji decorates a button label.
type Emoji struct {
	Name string `json:"name"`
}

// ActionRow groups up to five buttons on one message line.
type ActionRow struct {
	Type       int      `json:"type"`
	Components []Button `json:"components"`
}

// NewActionRow builds an ActionRow from buttons.
func NewActionRow(buttons ...Button) ActionRow {
	return ActionRow{Type: ComponentActionRow, Components: buttons}
}

// MessageContent is the payload for sending a channel message. Nonce
// deduplicates retried sends: the platform drops a second message
// carrying an already-seen nonce when EnforceNonce is set, which is
// what makes the Notifier's retry loop deliver exactly once.
type MessageContent struct {
	Content      string      `json:"content,omitempty"`
	Embeds       []Embed     `json:"embeds,omitempty"`
	Components   []ActionRow `json:"components,omitempty"`
	Nonce        string      `json:"nonce,omitempty"`
	EnforceNonce bool        `json:"enforce_nonce,omitempty"`
}

// Message is a delivered channel message.
type Message struct {
	ID        string        `json:"id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	Content   string        `json:"content"`
}

// Interaction response types and flags.
const (
	// interactionResponseMessage replies to an interaction with a
	// message.
	interactionResponseMessage = 4

	// messageFlagEphemeral makes a reply visible only to the invoker.
	messageFlagEphemeral = 1 << 6
)
