// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types for the chat
// platform's entities: [ChannelID], [UserID], and [GuildID].
//
// All platform identifiers are snowflakes: decimal-encoded unsigned
// 64-bit integers assigned by the platform. Greenroom never constructs
// them: they arrive in API responses, gateway frames, and
// configuration, and are parsed into these types at the boundary. Once
// parsed, an ID is known valid everywhere downstream, so core code
// never re-checks identifier syntax.
//
// The types are immutable value types wrapping the string form. The
// zero value of each is not a valid identifier; use IsZero to check.
// They marshal to and from JSON as plain strings, matching the wire
// format of the platform API.
package ref
