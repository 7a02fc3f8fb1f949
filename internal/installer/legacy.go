// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// legacyPluginsDir is the staging location an older variant of the
// lifecycle manager copied provider binaries from.
const legacyPluginsDir = ".terraform/plugins"

// StageLegacyPlugins copies provider binaries staged under the
// workspace's legacy plugins directory into the install directory,
// returning the destination paths. A workspace with no legacy staging
// directory stages nothing and is not an error.
func StageLegacyPlugins(workspaceDir, installDir string) ([]string, error) {
	root := filepath.Join(workspaceDir, filepath.FromSlash(legacyPluginsDir))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var staged []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Only executable plugin binaries are staged; lock files and
		// other metadata stay behind.
		if info.Mode().Perm()&0o111 == 0 {
			return nil
		}

		dst := filepath.Join(installDir, d.Name())
		if err := copyFile(path, dst, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
		staged = append(staged, dst)
		return nil
	})
	if err != nil {
		return staged, err
	}
	return staged, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
