// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package releaseauth verifies that downloaded release artifacts match
// the checksums published alongside them in a SHA256SUMS document.
package releaseauth

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// SHA256Hash is a raw SHA-256 digest.
type SHA256Hash [sha256.Size]byte

// SHA256HashFromHex parses the usual lowercase hex encoding of a
// SHA-256 digest.
func SHA256HashFromHex(s string) (SHA256Hash, error) {
	var hash SHA256Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return hash, fmt.Errorf("invalid checksum string: %w", err)
	}
	if len(raw) != sha256.Size {
		return hash, fmt.Errorf("checksum is %d bytes, want %d", len(raw), sha256.Size)
	}
	copy(hash[:], raw)
	return hash, nil
}

func (h SHA256Hash) String() string {
	return hex.EncodeToString(h[:])
}

// SHA256Checksums is the parsed content of a SHA256SUMS document,
// keyed by artifact base name.
type SHA256Checksums map[string]SHA256Hash

// ParseChecksums parses a SHA256SUMS document in the format produced by
// sha256sum(1): one "<hex digest>  <filename>" pair per line.
func ParseChecksums(data []byte) (SHA256Checksums, error) {
	sums := make(SHA256Checksums)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed checksum line %q", line)
		}
		hash, err := SHA256HashFromHex(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed checksum for %q: %w", fields[1], err)
		}
		sums[fields[1]] = hash
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(sums) == 0 {
		return nil, fmt.Errorf("checksum document contains no entries")
	}
	return sums, nil
}

// Validate ensures the given hash matches the recorded checksum for the
// named artifact.
func (s SHA256Checksums) Validate(baseName string, actual SHA256Hash) error {
	expected, ok := s[baseName]
	if !ok {
		return fmt.Errorf("no checksum recorded for %q", baseName)
	}
	if expected != actual {
		return fmt.Errorf("checksum for %q is %s, but the release manifest records %s", baseName, actual, expected)
	}
	return nil
}

// FileSHA256 computes the SHA-256 digest of the named file.
func FileSHA256(path string) (SHA256Hash, error) {
	var hash SHA256Hash
	f, err := os.Open(path)
	if err != nil {
		return hash, err
	}
	defer f.Close()

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return hash, err
	}
	copy(hash[:], digest.Sum(nil))
	return hash, nil
}
