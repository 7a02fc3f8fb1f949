// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package installer downloads, verifies and unpacks terraform-ls release
// artifacts into a managed install directory, and probes whatever binary
// is already there for its version.
//
// The install directory has a single-writer discipline: only this
// package writes or deletes the active binary. Callers must stop any
// running server before installing over its binary; readers tolerate the
// binary being transiently absent during replacement.
package installer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	getter "github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-hclog"
	version "github.com/hashicorp/go-version"

	"github.com/hashicorp/terraform-ls-manager/internal/httpclient"
	"github.com/hashicorp/terraform-ls-manager/internal/releaseauth"
	"github.com/hashicorp/terraform-ls-manager/internal/releases"
)

// Language server releases are always zip archives with a fixed layout,
// so the zip decompressor is used directly rather than through
// go-getter's source-detection front end.
var unzip = getter.ZipDecompressor{}

// BinaryName returns the base name of the active language server binary
// for the current platform.
func BinaryName() string {
	if runtime.GOOS == "windows" {
		return "terraform-ls.exe"
	}
	return "terraform-ls"
}

// BinaryPath returns the path of the active binary within an install
// directory.
func BinaryPath(dir string) string {
	return filepath.Join(dir, BinaryName())
}

// ArchiveName returns the versioned artifact filename a release is
// downloaded to within the install directory.
func ArchiveName(v *version.Version) string {
	return fmt.Sprintf("terraform-ls_v%s.zip", v)
}

// VerificationError indicates that a downloaded artifact failed checksum
// verification and was not installed. The artifact itself is retained on
// disk for diagnosis; the active binary is never replaced by it.
type VerificationError struct {
	ArchivePath string
	Inner       error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("downloaded artifact %s failed verification: %s", e.ArchivePath, e.Inner)
}

func (e *VerificationError) Unwrap() error {
	return e.Inner
}

// Installer installs language server releases into a single directory.
// Install operations must not run concurrently with each other or with a
// live server process using the same binary path.
type Installer struct {
	dir      string
	releases *releases.Client
	logger   hclog.Logger
	events   InstallerEvents
}

// NewInstaller returns an Installer writing into the given directory.
func NewInstaller(dir string, client *releases.Client, logger hclog.Logger) *Installer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Installer{
		dir:      dir,
		releases: client,
		logger:   logger,
	}
}

// SetEvents installs the callbacks used to report install progress.
// It must be called before Install.
func (i *Installer) SetEvents(events InstallerEvents) {
	i.events = events
}

// Dir returns the install directory.
func (i *Installer) Dir() string {
	return i.dir
}

// Install downloads the build of the given release matching the current
// platform, verifies it against the release's published checksums, and
// unpacks it so that the active binary at BinaryPath reports the new
// version.
//
// The downloaded zip is deliberately retained on disk after both success
// and failure, so a failed install can be diagnosed from the leftover
// artifact; CleanupArtifacts removes retained archives explicitly.
func (i *Installer) Install(ctx context.Context, rel *releases.Release) error {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create install directory %s: %w", i.dir, err)
	}
	i.events.targetDirPrepared(i.dir)

	build, err := rel.BuildForPlatform(releases.CurrentPlatform)
	if err != nil {
		return err
	}

	// Best-effort removal of the previous binary. Absence is the normal
	// first-install case; any other failure surfaces again as an unpack
	// error if it actually matters.
	binPath := BinaryPath(i.dir)
	if err := os.Remove(binPath); err != nil && !os.IsNotExist(err) {
		i.logger.Warn("failed to remove previous binary", "path", binPath, "error", err)
	}

	archivePath := filepath.Join(i.dir, ArchiveName(rel.Version))
	i.events.downloadBegin(build.URL)
	if err := i.download(ctx, build.URL, archivePath); err != nil {
		return fmt.Errorf("failed to download %s: %w", build.URL, err)
	}
	i.events.downloadComplete(archivePath)

	i.events.verifyBegin(archivePath)
	if err := i.verify(ctx, rel, build, archivePath); err != nil {
		return err
	}
	i.events.verifyComplete(archivePath)

	i.events.unpackBegin(archivePath)
	if err := unzip.Decompress(i.dir, archivePath, true, 0o022); err != nil {
		return fmt.Errorf("failed to unpack %s: %w", archivePath, err)
	}
	if _, err := os.Stat(binPath); err != nil {
		return fmt.Errorf("archive %s did not produce %s: %w", archivePath, binPath, err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(binPath, 0o755); err != nil {
			return fmt.Errorf("failed to mark %s executable: %w", binPath, err)
		}
	}
	i.events.unpackComplete(binPath)

	i.logger.Info("installed language server", "version", rel.Version.String(), "path", binPath)
	return nil
}

func (i *Installer) download(ctx context.Context, url, target string) error {
	httpClient := httpclient.New()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("invalid download request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unsuccessful request to %s: %s", url, resp.Status)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer f.Close()

	// go-getter's cancelable copy lets a progress-UI level cancellation
	// interrupt the transfer partway through.
	n, err := getter.Copy(ctx, f, resp.Body)
	if err == nil && resp.ContentLength >= 0 && n < resp.ContentLength {
		err = fmt.Errorf("incorrect response size: expected %d bytes, but got %d bytes", resp.ContentLength, n)
	}
	return err
}

func (i *Installer) verify(ctx context.Context, rel *releases.Release, build releases.Build, archivePath string) error {
	sums, err := i.releases.Checksums(ctx, rel)
	if err != nil {
		return &VerificationError{ArchivePath: archivePath, Inner: err}
	}
	actual, err := releaseauth.FileSHA256(archivePath)
	if err != nil {
		return &VerificationError{ArchivePath: archivePath, Inner: err}
	}
	auth := releaseauth.NewMatchingChecksumsAuthentication(actual, build.Filename, sums)
	if err := auth.Authenticate(); err != nil {
		return &VerificationError{ArchivePath: archivePath, Inner: err}
	}
	return nil
}
