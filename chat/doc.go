// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat wraps the platform's REST API for Greenroom's channel
// provisioning and messaging needs.
//
// The package provides two core types. [Client] holds the API base URL
// and HTTP transport. [BotSession] wraps a Client with the bot token
// for authenticated operations: channel management (create with
// permission overwrites, fetch, delete, edit overwrites), guild member
// voice state (move between channels, server-mute, disconnect),
// message delivery with interactive components, and interaction
// responses for command outcomes.
//
// The bot token lives in mmap-backed secret.Buffer memory, locked
// against swap and excluded from core dumps; callers must Close the
// session to release it.
//
// All API errors are returned as [*APIError] carrying the platform's
// numeric error code (unknown channel, missing permissions, ...) and
// the HTTP status. [IsAPIError] tests for a specific code. Request
// URLs are built by string concatenation of pre-validated snowflake
// IDs, so no path escaping is needed.
//
// Permission bitmasks use the [Permissions] type, which serializes as
// a decimal string to match the wire format.
package chat
