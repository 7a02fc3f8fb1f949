// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"fmt"
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
)

// CleanupArtifacts removes all retained release archives (the files
// matching the versioned zip naming pattern) from the install directory
// and returns the paths it removed. The active binary is never touched.
func CleanupArtifacts(dir string) ([]string, error) {
	pattern := filepath.Join(dir, "terraform-ls_v*.zip")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact pattern %s: %w", pattern, err)
	}

	var removed []string
	var errs *multierror.Error
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
			continue
		}
		removed = append(removed, path)
	}
	return removed, errs.ErrorOrNil()
}
