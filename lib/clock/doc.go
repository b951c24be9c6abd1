// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that code built
// on timers can be tested deterministically.
//
// Production code takes a [Clock] parameter (or holds one in a struct
// field) instead of calling time.Now, time.After, time.AfterFunc,
// time.NewTicker, or time.Sleep directly. [Real] returns the standard
// library behavior; [Fake] returns a clock that only moves when the
// test calls Advance.
//
// The Notifier's retry backoff, the control panel post delay, and the
// gateway heartbeat are all driven through this interface, which is
// what lets their tests run in microseconds with exact timing
// assertions instead of sleeping through real wall-clock intervals.
//
// When a goroutine under test registers a timer or sleep on a
// [FakeClock], the registration is observable through WaitForTimers.
// Tests block on WaitForTimers before calling Advance, which removes
// the race between "goroutine started waiting" and "test moved time
// forward" without any real sleeping.
package clock
