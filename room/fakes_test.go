// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/ref"
)

func mustChannelID(t *testing.T, raw string) ref.ChannelID {
	t.Helper()
	id, err := ref.ParseChannelID(raw)
	if err != nil {
		t.Fatalf("ParseChannelID(%q) failed: %v", raw, err)
	}
	return id
}

func mustUserID(t *testing.T, raw string) ref.UserID {
	t.Helper()
	id, err := ref.ParseUserID(raw)
	if err != nil {
		t.Fatalf("ParseUserID(%q) failed: %v", raw, err)
	}
	return id
}

func mustGuildID(t *testing.T, raw string) ref.GuildID {
	t.Helper()
	id, err := ref.ParseGuildID(raw)
	if err != nil {
		t.Fatalf("ParseGuildID(%q) failed: %v", raw, err)
	}
	return id
}

func unknownChannelErr() error {
	return &chat.APIError{
		Code:       chat.ErrCodeUnknownChannel,
		Message:    "Unknown Channel",
		StatusCode: http.StatusNotFound,
	}
}

type moveCall struct {
	member  ref.UserID
	channel ref.ChannelID
}

type muteCall struct {
	member ref.UserID
	muted  bool
}

type permEdit struct {
	channel ref.ChannelID
	subject string
	kind    int
	allow   chat.Permissions
	deny    chat.Permissions
}

// fakeProvisioner implements Provisioner and Messenger. Created
// channels are held in an in-memory map; permission edits mutate the
// stored channel so later reads observe them.
type fakeProvisioner struct {
	mu     sync.Mutex
	nextID int

	channels map[ref.ChannelID]*chat.Channel
	member   *chat.Member

	creates     []chat.CreateChannelRequest
	createErrAt int // 1-based index of the CreateChannel call to fail
	deleted     []ref.ChannelID
	deleteErr   error
	moves       []moveCall
	moveErr     error
	mutes       []muteCall
	kicked      []ref.UserID
	edits       []permEdit
	editErr     error
	getErr      map[ref.ChannelID]error
	sent        []chat.MessageContent
	sendErrs    []error // popped per SendMessage call; nil means success
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		channels: make(map[ref.ChannelID]*chat.Channel),
		getErr:   make(map[ref.ChannelID]error),
		member: &chat.Member{
			User: chat.User{Username: "alice"},
		},
	}
}

// addChannel registers a pre-existing channel.
func (f *fakeProvisioner) addChannel(channel *chat.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channel.ID] = channel
}

func (f *fakeProvisioner) CreateChannel(ctx context.Context, guildID ref.GuildID, request chat.CreateChannelRequest) (*chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates = append(f.creates, request)
	if f.createErrAt == len(f.creates) {
		return nil, fmt.Errorf("create refused")
	}

	f.nextID++
	id, err := ref.ParseChannelID(fmt.Sprintf("9%017d", f.nextID))
	if err != nil {
		panic(err)
	}
	channel := &chat.Channel{
		ID:                   id,
		GuildID:              guildID,
		Name:                 request.Name,
		Type:                 request.Type,
		ParentID:             request.ParentID,
		PermissionOverwrites: request.PermissionOverwrites,
	}
	f.channels[id] = channel
	return channel, nil
}

func (f *fakeProvisioner) GetChannel(ctx context.Context, channelID ref.ChannelID) (*chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.getErr[channelID]; err != nil {
		return nil, err
	}
	channel, ok := f.channels[channelID]
	if !ok {
		return nil, unknownChannelErr()
	}
	copied := *channel
	return &copied, nil
}

func (f *fakeProvisioner) DeleteChannel(ctx context.Context, channelID ref.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, channelID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.channels, channelID)
	return nil
}

func (f *fakeProvisioner) EditChannelPermissions(ctx context.Context, channelID ref.ChannelID, subjectID string, kind int, allow, deny chat.Permissions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.edits = append(f.edits, permEdit{channelID, subjectID, kind, allow, deny})
	if f.editErr != nil {
		return f.editErr
	}

	channel, ok := f.channels[channelID]
	if !ok {
		return unknownChannelErr()
	}
	for i, ow := range channel.PermissionOverwrites {
		if ow.SubjectID == subjectID && ow.Type == kind {
			channel.PermissionOverwrites[i].Allow = allow
			channel.PermissionOverwrites[i].Deny = deny
			return nil
		}
	}
	channel.PermissionOverwrites = append(channel.PermissionOverwrites, chat.PermissionOverwrite{
		SubjectID: subjectID,
		Type:      kind,
		Allow:     allow,
		Deny:      deny,
	})
	return nil
}

func (f *fakeProvisioner) MoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, channelID ref.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.moves = append(f.moves, moveCall{userID, channelID})
	return f.moveErr
}

func (f *fakeProvisioner) SetMemberMute(ctx context.Context, guildID ref.GuildID, userID ref.UserID, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mutes = append(f.mutes, muteCall{userID, muted})
	return nil
}

func (f *fakeProvisioner) DisconnectMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeProvisioner) GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*chat.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *f.member
	return &copied, nil
}

func (f *fakeProvisioner) SendMessage(ctx context.Context, channelID ref.ChannelID, content chat.MessageContent) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Record the attempt whether or not it fails, so tests can
	// compare payloads across retries.
	f.sent = append(f.sent, content)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &chat.Message{ChannelID: channelID, Content: content.Content}, nil
}

// totalCalls reports how many state-changing provisioner calls
// happened in total.
func (f *fakeProvisioner) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.deleted) + len(f.moves) +
		len(f.mutes) + len(f.kicked) + len(f.edits)
}

var (
	_ Provisioner = (*fakeProvisioner)(nil)
	_ Messenger   = (*fakeProvisioner)(nil)
)

// fakeOccupancy is a settable OccupancyView.
type fakeOccupancy struct {
	mu     sync.Mutex
	byChan map[ref.ChannelID][]ref.UserID
}

func newFakeOccupancy() *fakeOccupancy {
	return &fakeOccupancy{byChan: make(map[ref.ChannelID][]ref.UserID)}
}

func (f *fakeOccupancy) set(channelID ref.ChannelID, members ...ref.UserID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byChan[channelID] = members
}

func (f *fakeOccupancy) Occupants(channelID ref.ChannelID) []ref.UserID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ref.UserID(nil), f.byChan[channelID]...)
}

// fakeCloser records Close calls.
type fakeCloser struct {
	mu     sync.Mutex
	closed []ref.UserID
	found  bool
}

func (f *fakeCloser) Close(ctx context.Context, ownerID ref.UserID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, ownerID)
	return f.found
}
