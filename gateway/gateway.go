// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/clock"
	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/lib/secret"
	"github.com/greenroom-project/greenroom/room"
)

const (
	// maxFrameSize bounds inbound gateway frames.
	maxFrameSize = 1 << 20

	// writeWait is the per-write deadline on the socket.
	writeWait = 10 * time.Second

	defaultReconnectBackoff = 5 * time.Second
)

// PresenceHandler consumes voice movement events.
type PresenceHandler interface {
	HandlePresence(ctx context.Context, event room.PresenceEvent)
}

// CommandHandler executes an owner control action and returns its
// outcome.
type CommandHandler interface {
	HandleCommand(ctx context.Context, event room.CommandEvent) room.Outcome
}

// Responder answers an interaction. *chat.BotSession implements it.
type Responder interface {
	RespondToInteraction(ctx context.Context, interactionID, interactionToken, text string, ephemeral bool) error
}

var _ Responder = (*chat.BotSession)(nil)

// Config carries a Session's endpoint, credentials, and handlers.
type Config struct {
	// URL is the websocket endpoint, including version and encoding
	// query parameters.
	URL string

	// Token authenticates the identify. The session reads it on every
	// reconnect and never copies it out of the secret buffer for
	// longer than the identify frame.
	Token *secret.Buffer

	// GuildID filters dispatches: events for other guilds are
	// dropped at the session boundary.
	GuildID ref.GuildID

	// ReconnectBackoff is the wait between connection attempts. Zero
	// means the default of five seconds.
	ReconnectBackoff time.Duration

	Presence  PresenceHandler
	Commands  CommandHandler
	Responder Responder

	// VoiceStates is the occupancy view the session maintains. Nil
	// means the session creates its own; callers that share the view
	// with the room engine pass it in.
	VoiceStates *VoiceStateView

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	Clock  clock.Clock
	Logger *slog.Logger
}

// Session is the long-running gateway connection. Run dials,
// identifies, heartbeats, and dispatches until its context is
// cancelled, reconnecting on any failure.
type Session struct {
	cfg  Config
	view *VoiceStateView
	log  *slog.Logger
}

// NewSession builds a Session. Dialer, Clock, and Logger default when
// nil.
func NewSession(cfg Config) *Session {
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = defaultReconnectBackoff
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.VoiceStates == nil {
		cfg.VoiceStates = NewVoiceStateView()
	}
	return &Session{
		cfg:  cfg,
		view: cfg.VoiceStates,
		log:  cfg.Logger.With("component", "gateway"),
	}
}

// VoiceStates exposes the live occupancy view for the room engine.
func (s *Session) VoiceStates() *VoiceStateView {
	return s.view
}

// Run connects and serves until ctx is cancelled. Connection failures
// and server-initiated reconnects are retried after the configured
// backoff; only cancellation ends the loop.
func (s *Session) Run(ctx context.Context) error {
	for {
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("gateway connection lost",
			"error", err,
			"backoff", s.cfg.ReconnectBackoff)

		select {
		case <-s.cfg.Clock.After(s.cfg.ReconnectBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// wsConn serializes writes to one websocket connection. Gorilla
// connections allow a single concurrent writer; the heartbeat
// goroutine and the read loop both send.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// runOnce serves a single connection from dial to first failure.
func (s *Session) runOnce(ctx context.Context) error {
	rawConn, _, err := s.cfg.Dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing gateway: %w", err)
	}
	conn := &wsConn{conn: rawConn}
	defer rawConn.Close()

	rawConn.SetReadLimit(maxFrameSize)

	// Close the socket when ctx is cancelled so the blocking read
	// below unblocks.
	stop := context.AfterFunc(ctx, func() { rawConn.Close() })
	defer stop()

	interval, err := s.handshake(conn)
	if err != nil {
		return err
	}

	hbCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()

	var lastSeq sequence
	go s.heartbeatLoop(hbCtx, conn, interval, &lastSeq)

	for {
		_, frame, err := rawConn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading gateway frame: %w", err)
		}
		var p payload
		if err := json.Unmarshal(frame, &p); err != nil {
			s.log.Warn("undecodable gateway frame", "error", err)
			continue
		}
		if p.S != 0 {
			lastSeq.store(p.S)
		}

		switch p.Op {
		case opDispatch:
			s.handleDispatch(ctx, p)
		case opHeartbeat:
			// Server-requested immediate heartbeat.
			if err := conn.writeJSON(payload{Op: opHeartbeat, D: lastSeq.json()}); err != nil {
				return fmt.Errorf("answering heartbeat request: %w", err)
			}
		case opReconnect:
			return fmt.Errorf("server requested reconnect")
		case opInvalidSession:
			return fmt.Errorf("server invalidated session")
		case opHeartbeatACK:
			// Nothing to do.
		default:
			s.log.Debug("unhandled gateway opcode", "op", p.Op)
		}
	}
}

// handshake reads the hello frame and sends identify. Returns the
// heartbeat interval the server asked for.
func (s *Session) handshake(conn *wsConn) (time.Duration, error) {
	_, frame, err := conn.conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("reading hello: %w", err)
	}
	var p payload
	if err := json.Unmarshal(frame, &p); err != nil {
		return 0, fmt.Errorf("parsing hello: %w", err)
	}
	if p.Op != opHello {
		return 0, fmt.Errorf("expected hello opcode, got %d", p.Op)
	}
	var hello helloData
	if err := json.Unmarshal(p.D, &hello); err != nil {
		return 0, fmt.Errorf("parsing hello data: %w", err)
	}
	if hello.HeartbeatInterval <= 0 {
		return 0, fmt.Errorf("invalid heartbeat interval %d", hello.HeartbeatInterval)
	}

	identify, err := json.Marshal(identifyData{
		Token:   s.cfg.Token.String(),
		Intents: intentGuilds | intentGuildVoiceStates,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "greenroom",
			Device:  "greenroom",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("encoding identify: %w", err)
	}
	if err := conn.writeJSON(payload{Op: opIdentify, D: identify}); err != nil {
		return 0, fmt.Errorf("sending identify: %w", err)
	}
	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (s *Session) heartbeatLoop(ctx context.Context, conn *wsConn, interval time.Duration, seq *sequence) {
	ticker := s.cfg.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.writeJSON(payload{Op: opHeartbeat, D: seq.json()}); err != nil {
				s.log.Warn("heartbeat write failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleDispatch(ctx context.Context, p payload) {
	switch p.T {
	case eventReady:
		var ready readyData
		if err := json.Unmarshal(p.D, &ready); err != nil {
			s.log.Warn("undecodable ready event", "error", err)
			return
		}
		s.log.Info("gateway session ready",
			"session", ready.SessionID,
			"identity", ready.User.Username)

	case eventGuildCreate:
		var guild guildCreateData
		if err := json.Unmarshal(p.D, &guild); err != nil {
			s.log.Warn("undecodable guild event", "error", err)
			return
		}
		if guild.ID != s.cfg.GuildID {
			return
		}
		// The dispatch carries the guild's current voice states;
		// rebuild the view from scratch so stale entries from a
		// previous connection cannot linger.
		s.view.Reset()
		for _, state := range guild.VoiceStates {
			s.view.Apply(state.UserID, state.ChannelID, state.Member.User.Bot)
		}

	case eventVoiceStateUpdate:
		var state voiceStateData
		if err := json.Unmarshal(p.D, &state); err != nil {
			s.log.Warn("undecodable voice state", "error", err)
			return
		}
		if state.GuildID != s.cfg.GuildID {
			return
		}
		// Apply to the view in frame order on the read loop, then
		// hand off: the handler serializes per owner on its own.
		previous := s.view.Apply(state.UserID, state.ChannelID, state.Member.User.Bot)
		if previous == state.ChannelID {
			return
		}
		go s.cfg.Presence.HandlePresence(ctx, room.PresenceEvent{
			GuildID:     state.GuildID,
			MemberID:    state.UserID,
			IsAutomated: state.Member.User.Bot,
			Previous:    previous,
			Current:     state.ChannelID,
		})

	case eventInteraction:
		var interaction interactionData
		if err := json.Unmarshal(p.D, &interaction); err != nil {
			s.log.Warn("undecodable interaction", "error", err)
			return
		}
		if interaction.Type != interactionComponent {
			return
		}
		action, ok := strings.CutPrefix(interaction.Data.CustomID, room.CustomIDPrefix)
		if !ok {
			return
		}
		go s.handleCommand(ctx, interaction, room.Action(action))
	}
}

// handleCommand runs one button press through the command handler and
// answers the interaction with the outcome, visible only to the
// invoker.
func (s *Session) handleCommand(ctx context.Context, interaction interactionData, action room.Action) {
	outcome := s.cfg.Commands.HandleCommand(ctx, room.CommandEvent{
		InvokerID: interaction.Member.User.ID,
		ChannelID: interaction.ChannelID,
		Action:    action,
	})

	err := s.cfg.Responder.RespondToInteraction(ctx, interaction.ID, interaction.Token, outcome.Text, true)
	switch {
	case err == nil:
	case chat.IsAPIError(err, chat.ErrCodeUnknownInteraction):
		// The interaction expired before we answered; the action
		// itself still took effect.
		s.log.Debug("interaction expired before response",
			"interaction", interaction.ID,
			"action", action)
	default:
		s.log.Warn("interaction response failed",
			"interaction", interaction.ID,
			"action", action,
			"error", err)
	}
}

// sequence is the last dispatch sequence number, shared between the
// read loop and the heartbeat goroutine.
type sequence struct {
	mu  sync.Mutex
	val int64
	set bool
}

func (s *sequence) store(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val, s.set = v, true
}

// json renders the sequence as a heartbeat payload: the number, or
// null before the first dispatch.
func (s *sequence) json() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return json.RawMessage("null")
	}
	raw, _ := json.Marshal(s.val)
	return raw
}
