// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// FromFile reads a secret from path, or from stdin when path is "-".
// Surrounding whitespace (trailing newlines especially) is trimmed
// before the secret enters protected memory, and every heap copy made
// along the way is zeroed. Returns an error if the trimmed secret is
// empty.
func FromFile(path string) (*Buffer, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret in %s is empty", path)
	}

	// FromBytes zeroes trimmed; zero the rest of data (whitespace
	// prefix and suffix) separately.
	buffer, err := FromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
