// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	version "github.com/hashicorp/go-version"
)

// ErrNotInstalled indicates the expected first-run condition: there is
// no usable binary in the install directory. It is distinguished from
// other probe failures, which are fatal.
var ErrNotInstalled = errors.New("language server is not installed")

var versionRe = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?)`)

// InstalledVersion invokes the binary in the given install directory to
// determine its version. It prefers the machine-readable "version -json"
// report and falls back to the legacy plain-text "--version" flag when
// an older binary does not recognize the former. A missing or
// non-executable binary yields ErrNotInstalled; any other invocation
// failure is returned with the process output preserved.
func InstalledVersion(ctx context.Context, dir string) (*version.Version, error) {
	binPath := BinaryPath(dir)

	info, err := os.Stat(binPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotInstalled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", binPath, err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return nil, ErrNotInstalled
	}

	stdout, combined, err := runBinary(ctx, binPath, "version", "-json")
	if err == nil {
		var report struct {
			Version string `json:"version"`
		}
		if jsonErr := json.Unmarshal(stdout, &report); jsonErr != nil || report.Version == "" {
			return nil, fmt.Errorf("malformed version report from %s: %q", binPath, string(stdout))
		}
		return version.NewVersion(report.Version)
	}

	if !isUnsupportedInvocation(err, combined) {
		return nil, fmt.Errorf("failed to probe version of %s: %w\n%s", binPath, err, combined)
	}

	// Older binaries predate the JSON report; fall back to the legacy
	// plain-text flag and scan whatever it printed on either stream.
	_, combined, err = runBinary(ctx, binPath, "--version")
	if err != nil && !isUnsupportedInvocation(err, combined) {
		return nil, fmt.Errorf("failed to probe version of %s: %w\n%s", binPath, err, combined)
	}
	if m := versionRe.FindStringSubmatch(combined); m != nil {
		return version.NewVersion(m[1])
	}
	return nil, fmt.Errorf("no version string in output of %s: %q", binPath, combined)
}

func runBinary(ctx context.Context, binPath string, args ...string) (stdout []byte, combined string, err error) {
	cmd := exec.CommandContext(ctx, binPath, args...)

	var outBuf, allBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(&outBuf, &allBuf)
	cmd.Stderr = &allBuf

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The binary could not be started at all; treat the same
			// as absence per the install-state lifecycle.
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", ErrNotInstalled
			}
			return nil, "", err
		}
	}
	return outBuf.Bytes(), allBuf.String(), err
}

// isUnsupportedInvocation reports whether a probe failure looks like an
// older binary rejecting a flag or subcommand it does not know, rather
// than a genuine execution failure.
func isUnsupportedInvocation(err error, combined string) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	out := strings.ToLower(combined)
	for _, marker := range []string{
		"flag provided but not defined",
		"unknown flag",
		"unknown command",
		"unknown shorthand flag",
		"usage:",
	} {
		if strings.Contains(out, marker) {
			return true
		}
	}
	return false
}
