// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package releaseauth

import "fmt"

// ErrChecksumMismatch is the error returned when a computed checksum does
// not match what is stored in a SHA256SUMS document.
type ErrChecksumMismatch struct {
	Inner error
}

func (e ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("failed to authenticate that release checksum matches checksum provided by the manifest: %v", e.Inner)
}

func (e ErrChecksumMismatch) Unwrap() error {
	return e.Inner
}

// Authenticator is the interface for a single archive authentication
// strategy.
type Authenticator interface {
	Authenticate() error
}

// MatchingChecksumsAuthentication is an archive Authenticator that checks
// whether a computed checksum matches the checksum recorded for the same
// file in a SHA256SUMS document.
type MatchingChecksumsAuthentication struct {
	actual   SHA256Hash
	sums     SHA256Checksums
	baseName string
}

var _ Authenticator = MatchingChecksumsAuthentication{}

// NewMatchingChecksumsAuthentication creates the Authenticator given the
// computed hash of a downloaded artifact, its base name, and the parsed
// SHA256SUMS data.
func NewMatchingChecksumsAuthentication(actual SHA256Hash, baseName string, sums SHA256Checksums) *MatchingChecksumsAuthentication {
	return &MatchingChecksumsAuthentication{
		actual:   actual,
		sums:     sums,
		baseName: baseName,
	}
}

// Authenticate ensures that the computed hash matches what is found in
// the SHA256SUMS document for the corresponding filename.
func (a MatchingChecksumsAuthentication) Authenticate() error {
	err := a.sums.Validate(a.baseName, a.actual)
	if err != nil {
		return ErrChecksumMismatch{
			Inner: err,
		}
	}

	return nil
}
