// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "encoding/json"

// marshalID encodes an ID string as a JSON string. A zero ID encodes
// as null, which the platform API treats the same as an absent field
// in the payloads where Greenroom sends IDs.
func marshalID(id string) ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(id)
}

// unmarshalID decodes a JSON string or null. Returns the raw string
// form and whether the value was null.
func unmarshalID(data []byte) (raw string, null bool, err error) {
	if string(data) == "null" {
		return "", true, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", false, err
	}
	return raw, false, nil
}
