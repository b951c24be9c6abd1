// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with a time.After fallback) so individual
// tests do not hang forever when an expected event never arrives.
// These helpers are the only place in the test suite where real
// wall-clock timeouts appear; everything timing-sensitive in
// production code is driven through lib/clock fakes instead.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since a failed test setup is not recoverable.
package testutil
