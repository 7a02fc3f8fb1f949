// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
	version "github.com/hashicorp/go-version"

	"github.com/hashicorp/terraform-ls-manager/internal/releaseauth"
	"github.com/hashicorp/terraform-ls-manager/internal/releases"
)

// fakeRelease serves a zip artifact and its SHA256SUMS from a local
// server and returns a Release describing them for the current platform.
// When tamper is set, the served checksum doc records a wrong digest.
func fakeRelease(t *testing.T, verStr, binaryContent string, tamper bool) *releases.Release {
	t.Helper()

	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	f, err := zw.Create(BinaryName())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(binaryContent)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	v := version.Must(version.NewVersion(verStr))
	filename := fmt.Sprintf("terraform-ls_%s_%s_%s.zip", verStr, releases.CurrentPlatform.OS, releases.CurrentPlatform.Arch)

	digest := releaseauth.SHA256Hash(sha256.Sum256(zipBuf.Bytes()))
	if tamper {
		digest[0] ^= 0xff
	}
	sumsDoc := fmt.Sprintf("%s  %s\n", digest, filename)

	mux := http.NewServeMux()
	mux.HandleFunc("/artifact.zip", func(w http.ResponseWriter, req *http.Request) {
		w.Write(zipBuf.Bytes())
	})
	mux.HandleFunc("/sums", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(sumsDoc))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &releases.Release{
		Product:      "terraform-ls",
		Version:      v,
		ChecksumsURL: srv.URL + "/sums",
		Builds: []releases.Build{
			{
				OS:       releases.CurrentPlatform.OS,
				Arch:     releases.CurrentPlatform.Arch,
				Filename: filename,
				URL:      srv.URL + "/artifact.zip",
			},
		},
	}
}

func TestInstall(t *testing.T) {
	dir := t.TempDir()
	rel := fakeRelease(t, "0.21.0", "#!/bin/sh\necho fake server\n", false)

	var phases []string
	inst := NewInstaller(dir, releases.NewClient(hclog.NewNullLogger()), hclog.NewNullLogger())
	inst.SetEvents(InstallerEvents{
		TargetDirPrepared: func(string) { phases = append(phases, "prepare") },
		DownloadBegin:     func(string) { phases = append(phases, "download") },
		DownloadComplete:  func(string) { phases = append(phases, "downloaded") },
		VerifyBegin:       func(string) { phases = append(phases, "verify") },
		VerifyComplete:    func(string) { phases = append(phases, "verified") },
		UnpackBegin:       func(string) { phases = append(phases, "unpack") },
		UnpackComplete:    func(string) { phases = append(phases, "unpacked") },
	})

	if err := inst.Install(context.Background(), rel); err != nil {
		t.Fatal(err)
	}

	wantPhases := []string{"prepare", "download", "downloaded", "verify", "verified", "unpack", "unpacked"}
	if diff := cmp.Diff(wantPhases, phases); diff != "" {
		t.Errorf("wrong phase sequence\n%s", diff)
	}

	content, err := os.ReadFile(BinaryPath(dir))
	if err != nil {
		t.Fatalf("active binary missing after install: %s", err)
	}
	if !bytes.Contains(content, []byte("fake server")) {
		t.Errorf("unexpected binary content: %q", content)
	}

	// The archive is retained until explicit cleanup.
	archive := filepath.Join(dir, ArchiveName(rel.Version))
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("archive was not retained: %s", err)
	}
}

func TestInstall_verificationFailure(t *testing.T) {
	dir := t.TempDir()
	rel := fakeRelease(t, "0.21.0", "#!/bin/sh\necho fake server\n", true)

	inst := NewInstaller(dir, releases.NewClient(hclog.NewNullLogger()), hclog.NewNullLogger())
	err := inst.Install(context.Background(), rel)

	var verErr *VerificationError
	if !errors.As(err, &verErr) {
		t.Fatalf("error is %T (%v), want *VerificationError", err, err)
	}
	var mismatch releaseauth.ErrChecksumMismatch
	if !errors.As(err, &mismatch) {
		t.Errorf("verification error does not wrap a checksum mismatch: %v", err)
	}

	// The corrupt artifact must never end up as the active binary.
	if _, err := InstalledVersion(context.Background(), dir); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("probe after failed verification: got %v, want ErrNotInstalled", err)
	}

	// The artifact stays behind for diagnosis.
	archive := filepath.Join(dir, ArchiveName(rel.Version))
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("artifact was not retained for diagnosis: %s", err)
	}
}

func TestInstall_noMatchingBuild(t *testing.T) {
	dir := t.TempDir()
	rel := fakeRelease(t, "0.21.0", "#!/bin/sh\n", false)
	rel.Builds[0].OS = "plan9"
	rel.Builds[0].Arch = "mips"

	inst := NewInstaller(dir, releases.NewClient(hclog.NewNullLogger()), hclog.NewNullLogger())
	err := inst.Install(context.Background(), rel)

	var noBuild *releases.ErrNoMatchingBuild
	if !errors.As(err, &noBuild) {
		t.Fatalf("error is %T (%v), want *ErrNoMatchingBuild", err, err)
	}
}

func TestInstall_canceled(t *testing.T) {
	dir := t.TempDir()
	rel := fakeRelease(t, "0.21.0", "#!/bin/sh\necho fake server\n", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inst := NewInstaller(dir, releases.NewClient(hclog.NewNullLogger()), hclog.NewNullLogger())
	if err := inst.Install(ctx, rel); err == nil {
		t.Fatal("expected error from canceled install, got none")
	}

	// A canceled download never leaves a completed install behind.
	if _, err := InstalledVersion(context.Background(), dir); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("probe after canceled install: got %v, want ErrNotInstalled", err)
	}
}

func TestCleanupArtifacts(t *testing.T) {
	dir := t.TempDir()
	keep := []string{BinaryName(), "unrelated.txt"}
	remove := []string{"terraform-ls_v0.20.0.zip", "terraform-ls_v0.21.0.zip"}
	for _, name := range append(append([]string{}, keep...), remove...) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := CleanupArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}

	var want []string
	for _, name := range remove {
		want = append(want, filepath.Join(dir, name))
	}
	if diff := cmp.Diff(want, removed); diff != "" {
		t.Errorf("wrong removed paths\n%s", diff)
	}

	for _, name := range keep {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should have been kept: %s", name, err)
		}
	}
	for _, name := range remove {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", name)
		}
	}
}

func TestCleanupArtifacts_emptyDir(t *testing.T) {
	removed, err := CleanupArtifacts(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 0 {
		t.Errorf("unexpected removals: %v", removed)
	}
}
