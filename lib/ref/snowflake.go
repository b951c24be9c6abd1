// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// maxSnowflakeDigits is the length of the largest uint64 in decimal.
// Real platform snowflakes are 17 to 19 digits; anything longer cannot
// be a snowflake at all.
const maxSnowflakeDigits = 20

// validateSnowflake checks that raw is a plausible platform snowflake:
// a non-empty decimal string with no leading zero and at most 20
// digits. kind names the identifier type in error messages.
func validateSnowflake(kind, raw string) error {
	if raw == "" {
		return fmt.Errorf("empty %s", kind)
	}
	if len(raw) > maxSnowflakeDigits {
		return fmt.Errorf("%s too long (%d digits): %q", kind, len(raw), raw)
	}
	if raw[0] == '0' {
		return fmt.Errorf("%s has leading zero: %q", kind, raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return fmt.Errorf("%s contains non-digit %q: %q", kind, raw[i], raw)
		}
	}
	return nil
}
