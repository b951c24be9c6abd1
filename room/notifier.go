// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/clock"
	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/metrics"
)

// Notifier delivery defaults.
const (
	defaultPanelAttempts = 3
	defaultPanelBackoff  = 800 * time.Millisecond
)

var errSendDenied = errors.New("send permission denied on channel")

// NotifierConfig carries a Notifier's collaborators and retry policy.
type NotifierConfig struct {
	// SelfID is the service identity whose send permission is checked
	// before each attempt.
	SelfID ref.UserID

	// Attempts is the maximum number of delivery tries. Zero means
	// the default of three.
	Attempts int

	// Backoff is the fixed wait between attempts. Zero means the
	// default.
	Backoff time.Duration

	Messenger Messenger
	Clock     clock.Clock
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Notifier posts the control panel into a room's text channel with
// bounded retries. Delivery failure never rolls the room back; the
// room stays usable without its panel.
type Notifier struct {
	cfg NotifierConfig
	log *slog.Logger
}

// NewNotifier builds a Notifier, filling defaults for zero fields.
func NewNotifier(cfg NotifierConfig) *Notifier {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultPanelAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultPanelBackoff
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Notifier{cfg: cfg, log: cfg.Logger.With("component", "notifier")}
}

// Post delivers the control panel for target. One nonce is generated
// up front and reused on every attempt, so a retry after an ambiguous
// failure cannot double-post: the platform drops a resend whose nonce
// it has already accepted.
func (n *Notifier) Post(ctx context.Context, target Room) {
	content := panelMessage(target)
	content.Nonce = uuid.NewString()
	content.EnforceNonce = true

	for attempt := 1; attempt <= n.cfg.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-n.cfg.Clock.After(n.cfg.Backoff):
			case <-ctx.Done():
				return
			}
		}

		if err := n.attempt(ctx, target, content); err != nil {
			n.log.Warn("control panel attempt failed",
				"owner", target.OwnerID,
				"channel", target.SecondaryID,
				"attempt", attempt,
				"error", err)
			continue
		}
		n.cfg.Metrics.PanelDeliveries.WithLabelValues("delivered").Inc()
		n.log.Info("control panel posted",
			"owner", target.OwnerID,
			"channel", target.SecondaryID,
			"attempt", attempt)
		return
	}

	n.cfg.Metrics.PanelDeliveries.WithLabelValues("failed").Inc()
	n.log.Error("control panel delivery failed",
		"owner", target.OwnerID,
		"channel", target.SecondaryID,
		"attempts", n.cfg.Attempts)
}

// attempt makes one delivery try: confirm the channel still exists
// and the service identity may send in it, then send. A denied send
// permission counts as a failed attempt rather than a hard stop,
// because freshly created channels can lag behind their own
// permission overwrites.
func (n *Notifier) attempt(ctx context.Context, target Room, content chat.MessageContent) error {
	channel, err := n.cfg.Messenger.GetChannel(ctx, target.SecondaryID)
	if err != nil {
		return fmt.Errorf("checking channel: %w", err)
	}
	if !channel.CanSend(n.cfg.SelfID, target.GuildID) {
		return errSendDenied
	}
	if _, err := n.cfg.Messenger.SendMessage(ctx, target.SecondaryID, content); err != nil {
		return fmt.Errorf("sending panel: %w", err)
	}
	return nil
}
