// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Greenroom is a service that provisions ephemeral paired rooms in a
// chat guild: a member joining the lobby voice channel gets a private
// voice channel plus a hidden text channel carrying a control panel,
// and the pair is torn down when the voice channel empties.
//
// On startup:
//  1. Loads and validates the YAML configuration.
//  2. Reads the bot token into locked memory.
//  3. Resolves the service identity via the REST API.
//  4. Connects to the gateway and serves presence and command events
//     until terminated.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/gateway"
	"github.com/greenroom-project/greenroom/lib/config"
	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/lib/secret"
	"github.com/greenroom-project/greenroom/lib/version"
	"github.com/greenroom-project/greenroom/metrics"
	"github.com/greenroom-project/greenroom/room"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("greenroom", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML configuration (default: $GREENROOM_CONFIG)")
	flagSet.StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("greenroom %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// IDs were validated by cfg.Validate; parse errors here are
	// unreachable.
	guildID, err := ref.ParseGuildID(cfg.GuildID)
	if err != nil {
		return fmt.Errorf("guild id: %w", err)
	}
	lobbyID, err := ref.ParseChannelID(cfg.LobbyChannelID)
	if err != nil {
		return fmt.Errorf("lobby channel id: %w", err)
	}
	var categoryID ref.ChannelID
	if cfg.CategoryID != "" {
		categoryID, err = ref.ParseChannelID(cfg.CategoryID)
		if err != nil {
			return fmt.Errorf("category id: %w", err)
		}
	}

	token, err := secret.FromFile(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("reading bot token: %w", err)
	}

	client, err := chat.NewClient(chat.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	session := client.Session(token)
	defer session.Close()

	self, err := session.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolving service identity: %w", err)
	}
	logger.Info("service identity resolved",
		"user_id", self.ID,
		"username", self.Username)

	m := metrics.New(prometheus.DefaultRegisterer)
	registry := room.NewRegistry()

	notifier := room.NewNotifier(room.NotifierConfig{
		SelfID:    self.ID,
		Attempts:  cfg.Panel.Attempts,
		Backoff:   cfg.Panel.Backoff.Std(),
		Messenger: session,
		Logger:    logger,
		Metrics:   m,
	})

	// The occupancy view belongs to the gateway session, but the
	// controller and dispatcher need it at construction time. Session
	// wiring is circular (the session delivers events into the
	// handlers, the handlers read the session's view), so the view is
	// created first and shared.
	voiceStates := gateway.NewVoiceStateView()

	controller := room.NewController(room.ControllerConfig{
		GuildID:     guildID,
		LobbyID:     lobbyID,
		CategoryID:  categoryID,
		SelfID:      self.ID,
		PanelDelay:  cfg.Panel.PostDelay.Std(),
		Provisioner: session,
		Notifier:    notifier,
		Occupancy:   voiceStates,
		Registry:    registry,
		Logger:      logger,
		Metrics:     m,
	})

	dispatcher := room.NewDispatcher(room.DispatcherConfig{
		Registry:    registry,
		Provisioner: session,
		Occupancy:   voiceStates,
		Closer:      controller,
		Logger:      logger,
		Metrics:     m,
	})

	gatewaySession := gateway.NewSession(gateway.Config{
		URL:              cfg.Gateway.URL,
		Token:            token,
		GuildID:          guildID,
		ReconnectBackoff: cfg.Gateway.ReconnectBackoff.Std(),
		Presence:         controller,
		Commands:         dispatcher,
		Responder:        session,
		VoiceStates:      voiceStates,
		Logger:           logger,
	})

	if cfg.Metrics.Listen != "" {
		go serveMetrics(ctx, cfg.Metrics.Listen, logger)
	}

	logger.Info("greenroom starting",
		"version", version.Info(),
		"guild", guildID,
		"lobby", lobbyID)

	err = gatewaySession.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("greenroom stopped")
		return nil
	}
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "", "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel,
	})), nil
}

// serveMetrics runs the Prometheus exposition endpoint until ctx is
// cancelled.
func serveMetrics(ctx context.Context, listen string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
