// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"fmt"
)

// APIError is a structured error response from the platform API.
// Callers use errors.As to extract it:
//
//	var apiErr *chat.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == chat.ErrCodeUnknownChannel { ... }
type APIError struct {
	// Code is the platform's numeric error code.
	Code int `json:"code"`
	// Message is the human-readable description from the server.
	Message string `json:"message"`
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api: %d (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Platform error codes Greenroom branches on.
const (
	ErrCodeUnknownChannel     = 10003
	ErrCodeUnknownMember      = 10007
	ErrCodeUnknownInteraction = 10062
	ErrCodeMissingAccess      = 50001
	ErrCodeMissingPermissions = 50013
	ErrCodeNotInVoice         = 40032
)

// IsAPIError checks whether err is a *APIError with the given code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsUnknownChannel reports whether err means the referenced channel no
// longer exists. Deletion of an already-deleted channel and lookups of
// a stale room both land here.
func IsUnknownChannel(err error) bool {
	return IsAPIError(err, ErrCodeUnknownChannel)
}
