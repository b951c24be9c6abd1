// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds sensitive byte strings, in Greenroom's case the
// platform bot token, in memory that the rest of the process cannot
// leak by accident.
//
// A [Buffer] is backed by an anonymous mmap region outside the Go
// heap: locked into RAM with mlock so it never reaches swap, marked
// MADV_DONTDUMP so it never reaches core dumps, and invisible to the
// garbage collector so it is never copied or relocated. Close zeroes
// the region before unmapping it.
//
// [FromFile] loads a secret from a file (or stdin when the path is
// "-"), trims surrounding whitespace, and zeroes every intermediate
// heap copy on the way into the protected region.
package secret
