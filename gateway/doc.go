// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway maintains the realtime websocket session with the
// chat platform: identify, heartbeat, and reconnect. It decodes voice
// state updates and button interactions into engine events, keeps the
// live voice-state view that answers channel occupancy, and delivers
// command outcomes back as ephemeral interaction responses.
package gateway
