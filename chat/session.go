// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/lib/secret"
)

// BotSession is an authenticated session for the service's bot
// account. Sessions are safe for concurrent use; every method issues
// one HTTP request and returns the decoded result or a *APIError.
type BotSession struct {
	client *Client
	token  *secret.Buffer
}

// Close releases the token memory (zeroes, unlocks, unmaps).
// Idempotent.
func (s *BotSession) Close() error {
	if s.token != nil {
		return s.token.Close()
	}
	return nil
}

// CurrentUser returns the account the session's token authenticates.
// Called once at startup to learn the service identity's own ID.
func (s *BotSession) CurrentUser(ctx context.Context) (*User, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/users/@me", s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: fetch current user: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("chat: parsing current user response: %w", err)
	}
	return &user, nil
}

// CreateChannel creates a guild channel with the given name, type, and
// permission overwrites.
func (s *BotSession) CreateChannel(ctx context.Context, guildID ref.GuildID, request CreateChannelRequest) (*Channel, error) {
	body, err := s.client.doRequest(ctx, http.MethodPost, "/guilds/"+guildID.String()+"/channels", s.token, request)
	if err != nil {
		return nil, fmt.Errorf("chat: create channel %q: %w", request.Name, err)
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, fmt.Errorf("chat: parsing create channel response: %w", err)
	}

	s.client.logger.Info("created channel",
		"channel_id", channel.ID,
		"name", request.Name,
		"type", request.Type,
	)
	return &channel, nil
}

// GetChannel fetches a channel by ID. A deleted channel yields a
// *APIError with ErrCodeUnknownChannel.
func (s *BotSession) GetChannel(ctx context.Context, channelID ref.ChannelID) (*Channel, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/channels/"+channelID.String(), s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: get channel %s: %w", channelID, err)
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, fmt.Errorf("chat: parsing channel response: %w", err)
	}
	return &channel, nil
}

// DeleteChannel deletes a channel.
func (s *BotSession) DeleteChannel(ctx context.Context, channelID ref.ChannelID) error {
	if _, err := s.client.doRequest(ctx, http.MethodDelete, "/channels/"+channelID.String(), s.token, nil); err != nil {
		return fmt.Errorf("chat: delete channel %s: %w", channelID, err)
	}
	s.client.logger.Info("deleted channel", "channel_id", channelID)
	return nil
}

// EditChannelPermissions creates or replaces one permission overwrite
// on a channel. subjectID is a role ID (the guild ID for @everyone) or
// a user ID, distinguished by kind.
func (s *BotSession) EditChannelPermissions(ctx context.Context, channelID ref.ChannelID, subjectID string, kind int, allow, deny Permissions) error {
	payload := struct {
		Type  int         `json:"type"`
		Allow Permissions `json:"allow"`
		Deny  Permissions `json:"deny"`
	}{Type: kind, Allow: allow, Deny: deny}

	path := "/channels/" + channelID.String() + "/permissions/" + subjectID
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, payload); err != nil {
		return fmt.Errorf("chat: edit permissions on %s for %s: %w", channelID, subjectID, err)
	}
	return nil
}

// MoveMember moves a member's voice connection to another channel.
// The member must currently be connected to voice in the guild.
func (s *BotSession) MoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, channelID ref.ChannelID) error {
	payload := struct {
		ChannelID ref.ChannelID `json:"channel_id"`
	}{ChannelID: channelID}
	if err := s.patchMember(ctx, guildID, userID, payload); err != nil {
		return fmt.Errorf("chat: move member %s to %s: %w", userID, channelID, err)
	}
	return nil
}

// SetMemberMute server-mutes or unmutes a member in voice.
func (s *BotSession) SetMemberMute(ctx context.Context, guildID ref.GuildID, userID ref.UserID, muted bool) error {
	payload := struct {
		Mute bool `json:"mute"`
	}{Mute: muted}
	if err := s.patchMember(ctx, guildID, userID, payload); err != nil {
		return fmt.Errorf("chat: set mute=%t on member %s: %w", muted, userID, err)
	}
	return nil
}

// DisconnectMember drops a member from voice by moving them to the
// null channel.
func (s *BotSession) DisconnectMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) error {
	payload := struct {
		ChannelID ref.ChannelID `json:"channel_id"`
	}{} // zero ChannelID marshals to null
	if err := s.patchMember(ctx, guildID, userID, payload); err != nil {
		return fmt.Errorf("chat: disconnect member %s: %w", userID, err)
	}
	return nil
}

func (s *BotSession) patchMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, payload any) error {
	path := "/guilds/" + guildID.String() + "/members/" + userID.String()
	_, err := s.client.doRequest(ctx, http.MethodPatch, path, s.token, payload)
	return err
}

// GetGuildMember fetches a member, primarily for their display name.
func (s *BotSession) GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*Member, error) {
	path := "/guilds/" + guildID.String() + "/members/" + userID.String()
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: get member %s: %w", userID, err)
	}

	var member Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("chat: parsing member response: %w", err)
	}
	return &member, nil
}

// SendMessage posts a message to a channel. A fresh nonce is attached
// when the caller did not set one, so a retried send after an
// ambiguous failure cannot produce a duplicate message.
func (s *BotSession) SendMessage(ctx context.Context, channelID ref.ChannelID, content MessageContent) (*Message, error) {
	if content.Nonce == "" {
		content.Nonce = uuid.NewString()
		content.EnforceNonce = true
	}

	body, err := s.client.doRequest(ctx, http.MethodPost, "/channels/"+channelID.String()+"/messages", s.token, content)
	if err != nil {
		return nil, fmt.Errorf("chat: send message to %s: %w", channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("chat: parsing message response: %w", err)
	}
	return &message, nil
}

// RespondToInteraction acknowledges an interaction with a text reply.
// When ephemeral is set, only the invoking member sees it. Interaction
// callbacks authenticate through the per-interaction token in the URL
// rather than the bot token.
func (s *BotSession) RespondToInteraction(ctx context.Context, interactionID, interactionToken, text string, ephemeral bool) error {
	var flags int
	if ephemeral {
		flags = messageFlagEphemeral
	}
	payload := struct {
		Type int `json:"type"`
		Data struct {
			Content string `json:"content"`
			Flags   int    `json:"flags,omitempty"`
		} `json:"data"`
	}{Type: interactionResponseMessage}
	payload.Data.Content = text
	payload.Data.Flags = flags

	path := "/interactions/" + interactionID + "/" + interactionToken + "/callback"
	if _, err := s.client.doRequest(ctx, http.MethodPost, path, nil, payload); err != nil {
		return fmt.Errorf("chat: respond to interaction %s: %w", interactionID, err)
	}
	return nil
}
