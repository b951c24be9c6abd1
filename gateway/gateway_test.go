// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/lib/secret"
	"github.com/greenroom-project/greenroom/lib/testutil"
	"github.com/greenroom-project/greenroom/room"
)

const testTimeout = 5 * time.Second

func mustGuildID(t *testing.T, raw string) ref.GuildID {
	t.Helper()
	id, err := ref.ParseGuildID(raw)
	if err != nil {
		t.Fatalf("ParseGuildID(%q) failed: %v", raw, err)
	}
	return id
}

// gatewayServer plays the platform's side of the websocket protocol:
// it sends hello, verifies the identify, and hands the connection to
// the test for scripted dispatches.
type gatewayServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	server   *httptest.Server
}

func newGatewayServer(t *testing.T) *gatewayServer {
	t.Helper()
	gs := &gatewayServer{t: t, conns: make(chan *websocket.Conn, 4)}
	gs.server = httptest.NewServer(http.HandlerFunc(gs.serve))
	t.Cleanup(gs.server.Close)
	return gs
}

func (gs *gatewayServer) url() string {
	return "ws" + strings.TrimPrefix(gs.server.URL, "http")
}

func (gs *gatewayServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := gs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.t.Errorf("upgrade failed: %v", err)
		return
	}

	hello, _ := json.Marshal(helloData{HeartbeatInterval: 45000})
	if err := conn.WriteJSON(payload{Op: opHello, D: hello}); err != nil {
		gs.t.Errorf("writing hello: %v", err)
		return
	}

	var identify payload
	if err := conn.ReadJSON(&identify); err != nil {
		gs.t.Errorf("reading identify: %v", err)
		return
	}
	if identify.Op != opIdentify {
		gs.t.Errorf("first client frame op = %d, want identify", identify.Op)
	}
	var data identifyData
	if err := json.Unmarshal(identify.D, &data); err != nil {
		gs.t.Errorf("parsing identify: %v", err)
	}
	if data.Token != "gw-token" {
		gs.t.Errorf("identify token = %q", data.Token)
	}

	gs.conns <- conn
}

// dispatch sends one dispatch frame with the given sequence number.
func (gs *gatewayServer) dispatch(conn *websocket.Conn, seq int64, event string, data any) {
	gs.t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		gs.t.Fatalf("marshaling %s: %v", event, err)
	}
	if err := conn.WriteJSON(payload{Op: opDispatch, T: event, S: seq, D: raw}); err != nil {
		gs.t.Fatalf("writing %s: %v", event, err)
	}
}

type capturePresence struct {
	events chan room.PresenceEvent
}

func (c *capturePresence) HandlePresence(ctx context.Context, event room.PresenceEvent) {
	c.events <- event
}

type captureCommands struct {
	outcome room.Outcome
	events  chan room.CommandEvent
}

func (c *captureCommands) HandleCommand(ctx context.Context, event room.CommandEvent) room.Outcome {
	c.events <- event
	return c.outcome
}

type respondCall struct {
	interactionID string
	token         string
	text          string
	ephemeral     bool
}

type captureResponder struct {
	calls chan respondCall
}

func (c *captureResponder) RespondToInteraction(ctx context.Context, interactionID, interactionToken, text string, ephemeral bool) error {
	c.calls <- respondCall{interactionID, interactionToken, text, ephemeral}
	return nil
}

type sessionFixture struct {
	server    *gatewayServer
	presence  *capturePresence
	commands  *captureCommands
	responder *captureResponder
	session   *Session
	cancel    context.CancelFunc
	done      chan error

	guild ref.GuildID
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	token, err := secret.FromBytes([]byte("gw-token"))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	t.Cleanup(func() { token.Close() })

	f := &sessionFixture{
		server:    newGatewayServer(t),
		presence:  &capturePresence{events: make(chan room.PresenceEvent, 16)},
		commands:  &captureCommands{events: make(chan room.CommandEvent, 16)},
		responder: &captureResponder{calls: make(chan respondCall, 16)},
		done:      make(chan error, 1),
		guild:     mustGuildID(t, "400000000000000001"),
	}
	f.commands.outcome = room.Outcome{Status: room.StatusOK, Text: "done"}

	f.session = NewSession(Config{
		URL:              f.server.url(),
		Token:            token,
		GuildID:          f.guild,
		ReconnectBackoff: 10 * time.Millisecond,
		Presence:         f.presence,
		Commands:         f.commands,
		Responder:        f.responder,
	})

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() { f.done <- f.session.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-f.done:
		case <-time.After(testTimeout):
			t.Error("session did not stop on cancel")
		}
	})
	return f
}

// accept waits for the session to complete a handshake.
func (f *sessionFixture) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	return testutil.RequireReceive(t, f.server.conns, testTimeout, "waiting for gateway handshake")
}

// voiceState builds a voice state dispatch body. An empty channel
// means the member disconnected; the zero ChannelID serializes as
// null, matching the wire format.
func voiceState(t *testing.T, guild ref.GuildID, user, channel string, bot bool) voiceStateData {
	t.Helper()
	var state voiceStateData
	state.GuildID = guild
	state.UserID = mustUserID(t, user)
	if channel != "" {
		state.ChannelID = mustChannelID(t, channel)
	}
	state.Member.User.ID = state.UserID
	state.Member.User.Bot = bot
	return state
}

func TestSessionDeliversPresenceWithPrevious(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	// Member joins a channel, then moves to another.
	f.server.dispatch(conn, 1, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "200000000000000001", false))
	first := testutil.RequireReceive(t, f.presence.events, testTimeout, "first presence event")
	if !first.Previous.IsZero() || first.Current.String() != "200000000000000001" {
		t.Fatalf("first event = %+v", first)
	}

	f.server.dispatch(conn, 2, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "200000000000000002", false))
	second := testutil.RequireReceive(t, f.presence.events, testTimeout, "second presence event")
	if second.Previous.String() != "200000000000000001" || second.Current.String() != "200000000000000002" {
		t.Fatalf("second event = %+v, want previous derived from the view", second)
	}

	// Disconnect.
	f.server.dispatch(conn, 3, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "", false))
	third := testutil.RequireReceive(t, f.presence.events, testTimeout, "third presence event")
	if third.Previous.String() != "200000000000000002" || !third.Current.IsZero() {
		t.Fatalf("third event = %+v", third)
	}
}

func TestSessionIgnoresOtherGuilds(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	f.server.dispatch(conn, 1, eventVoiceStateUpdate,
		voiceState(t, mustGuildID(t, "400000000000000099"), "100000000000000001", "200000000000000001", false))
	f.server.dispatch(conn, 2, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000002", "200000000000000001", false))

	event := testutil.RequireReceive(t, f.presence.events, testTimeout, "in-guild presence event")
	if event.MemberID.String() != "100000000000000002" {
		t.Fatalf("event = %+v, the other guild's event leaked through", event)
	}
}

func TestSessionSeedsViewFromGuildCreate(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	seed := map[string]any{
		"id": f.guild.String(),
		"voice_states": []any{
			map[string]any{
				"user_id":    "100000000000000001",
				"channel_id": "200000000000000001",
				"member":     map[string]any{"user": map[string]any{"id": "100000000000000001", "bot": false}},
			},
		},
	}
	f.server.dispatch(conn, 1, eventGuildCreate, seed)

	// The seeded member moving away must report the seeded channel as
	// previous.
	f.server.dispatch(conn, 2, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "", false))
	event := testutil.RequireReceive(t, f.presence.events, testTimeout, "presence event")
	if event.Previous.String() != "200000000000000001" {
		t.Fatalf("previous = %s, want the channel seeded by the guild dispatch", event.Previous)
	}
}

func TestSessionRoutesButtonPresses(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	interaction := map[string]any{
		"id":         "interaction-1",
		"token":      "interaction-token",
		"type":       interactionComponent,
		"guild_id":   f.guild.String(),
		"channel_id": "300000000000000001",
		"member":     map[string]any{"user": map[string]any{"id": "100000000000000001"}},
		"data":       map[string]any{"custom_id": "room_lock"},
	}
	f.server.dispatch(conn, 1, eventInteraction, interaction)

	command := testutil.RequireReceive(t, f.commands.events, testTimeout, "command event")
	if command.Action != room.ActionLock {
		t.Fatalf("action = %s, want lock", command.Action)
	}
	if command.InvokerID.String() != "100000000000000001" {
		t.Fatalf("invoker = %s", command.InvokerID)
	}
	if command.ChannelID.String() != "300000000000000001" {
		t.Fatalf("channel = %s", command.ChannelID)
	}

	response := testutil.RequireReceive(t, f.responder.calls, testTimeout, "interaction response")
	if response.interactionID != "interaction-1" || response.token != "interaction-token" {
		t.Fatalf("response routed to %q/%q", response.interactionID, response.token)
	}
	if response.text != "done" || !response.ephemeral {
		t.Fatalf("response = %+v, want ephemeral outcome text", response)
	}
}

func TestSessionIgnoresForeignCustomIDs(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	foreign := map[string]any{
		"id":         "interaction-1",
		"token":      "interaction-token",
		"type":       interactionComponent,
		"guild_id":   f.guild.String(),
		"channel_id": "300000000000000001",
		"member":     map[string]any{"user": map[string]any{"id": "100000000000000001"}},
		"data":       map[string]any{"custom_id": "poll_vote_1"},
	}
	f.server.dispatch(conn, 1, eventInteraction, foreign)

	// A frame we do handle afterwards proves the foreign one was
	// dropped rather than queued.
	f.server.dispatch(conn, 2, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "200000000000000001", false))
	testutil.RequireReceive(t, f.presence.events, testTimeout, "presence event")

	select {
	case command := <-f.commands.events:
		t.Fatalf("foreign custom_id dispatched as %+v", command)
	default:
	}
}

func TestSessionAnswersHeartbeatRequest(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	// Raise the sequence, then ask for an immediate heartbeat.
	f.server.dispatch(conn, 7, eventVoiceStateUpdate,
		voiceState(t, f.guild, "100000000000000001", "200000000000000001", false))
	testutil.RequireReceive(t, f.presence.events, testTimeout, "presence event")

	if err := conn.WriteJSON(payload{Op: opHeartbeat}); err != nil {
		t.Fatalf("writing heartbeat request: %v", err)
	}

	var beat payload
	if err := conn.ReadJSON(&beat); err != nil {
		t.Fatalf("reading heartbeat: %v", err)
	}
	if beat.Op != opHeartbeat {
		t.Fatalf("op = %d, want heartbeat", beat.Op)
	}
	var seq int64
	if err := json.Unmarshal(beat.D, &seq); err != nil || seq != 7 {
		t.Fatalf("heartbeat sequence = %s, want 7", beat.D)
	}
}

func TestSessionReconnects(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	// Kill the connection; the session must dial and identify again.
	conn.Close()
	f.accept(t)
}

func TestSessionReconnectsOnServerRequest(t *testing.T) {
	f := newSessionFixture(t)
	conn := f.accept(t)

	if err := conn.WriteJSON(payload{Op: opReconnect}); err != nil {
		t.Fatalf("writing reconnect: %v", err)
	}
	f.accept(t)
}
