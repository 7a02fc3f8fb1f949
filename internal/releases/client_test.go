// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

const testIndexJSON = `{
  "name": "terraform-ls",
  "versions": {
    "0.19.0": {
      "version": "0.19.0",
      "shasums": "terraform-ls_0.19.0_SHA256SUMS",
      "builds": [
        {"os": "linux", "arch": "amd64", "filename": "terraform-ls_0.19.0_linux_amd64.zip", "url": "https://example.com/terraform-ls_0.19.0_linux_amd64.zip"}
      ]
    },
    "0.20.0": {
      "version": "0.20.0",
      "shasums": "terraform-ls_0.20.0_SHA256SUMS",
      "builds": [
        {"os": "linux", "arch": "amd64", "filename": "terraform-ls_0.20.0_linux_amd64.zip", "url": "https://example.com/terraform-ls_0.20.0_linux_amd64.zip"},
        {"os": "windows", "arch": "386", "filename": "terraform-ls_0.20.0_windows_386.zip", "url": "https://example.com/terraform-ls_0.20.0_windows_386.zip"}
      ]
    },
    "0.21.0-beta1": {
      "version": "0.21.0-beta1",
      "shasums": "terraform-ls_0.21.0-beta1_SHA256SUMS",
      "builds": [
        {"os": "linux", "arch": "amd64", "filename": "terraform-ls_0.21.0-beta1_linux_amd64.zip", "url": "https://example.com/terraform-ls_0.21.0-beta1_linux_amd64.zip"}
      ]
    }
  }
}`

func testReleasesServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/terraform-ls/index.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(testIndexJSON))
		default:
			http.NotFound(w, req)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(hclog.NewNullLogger())
	c.BaseURL = baseURL
	return c
}

func TestClientResolve_latest(t *testing.T) {
	srv := testReleasesServer(t)
	c := testClient(t, srv.URL)

	rel, err := c.Resolve(context.Background(), "terraform-ls", Latest())
	if err != nil {
		t.Fatal(err)
	}

	// Prereleases are not candidates for "latest".
	if got, want := rel.Version.String(), "0.20.0"; got != want {
		t.Errorf("resolved version %s, want %s", got, want)
	}
	if got, want := rel.ChecksumsURL, srv.URL+"/terraform-ls/0.20.0/terraform-ls_0.20.0_SHA256SUMS"; got != want {
		t.Errorf("wrong checksums URL\ngot:  %s\nwant: %s", got, want)
	}

	wantBuilds := []Build{
		{OS: "linux", Arch: "amd64", Filename: "terraform-ls_0.20.0_linux_amd64.zip", URL: "https://example.com/terraform-ls_0.20.0_linux_amd64.zip"},
		{OS: "windows", Arch: "386", Filename: "terraform-ls_0.20.0_windows_386.zip", URL: "https://example.com/terraform-ls_0.20.0_windows_386.zip"},
	}
	if diff := cmp.Diff(wantBuilds, rel.Builds); diff != "" {
		t.Errorf("wrong builds\n%s", diff)
	}
}

func TestClientResolve_constraint(t *testing.T) {
	srv := testReleasesServer(t)
	c := testClient(t, srv.URL)

	wanted, err := ParseConstraint("~> 0.19.0")
	if err != nil {
		t.Fatal(err)
	}

	rel, err := c.Resolve(context.Background(), "terraform-ls", wanted)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := rel.Version.String(), "0.19.0"; got != want {
		t.Errorf("resolved version %s, want %s", got, want)
	}
}

func TestClientResolve_unsatisfiable(t *testing.T) {
	srv := testReleasesServer(t)
	c := testClient(t, srv.URL)

	wanted, err := ParseConstraint(">= 9.0.0")
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Resolve(context.Background(), "terraform-ls", wanted)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error is %T, want *ResolutionError", err)
	}
}

func TestClientResolve_unreachable(t *testing.T) {
	srv := testReleasesServer(t)
	c := testClient(t, srv.URL)
	srv.Close()

	_, err := c.Resolve(context.Background(), "terraform-ls", Latest())
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error is %T, want *ResolutionError", err)
	}
}

func TestParseConstraint(t *testing.T) {
	got, err := ParseConstraint("")
	if err != nil || !got.IsLatest() {
		t.Errorf("empty constraint: got (%v, %v), want latest with no error", got, err)
	}

	got, err = ParseConstraint("latest")
	if err != nil || !got.IsLatest() {
		t.Errorf("latest constraint: got (%v, %v), want latest with no error", got, err)
	}

	got, err = ParseConstraint("~> 0.20")
	if err != nil || got.IsLatest() {
		t.Errorf("range constraint: got (%v, %v), want range with no error", got, err)
	}

	// Invalid input is reported but still defaults to "latest".
	got, err = ParseConstraint("carrots")
	if err == nil {
		t.Error("invalid constraint: expected error, got none")
	}
	if !got.IsLatest() {
		t.Error("invalid constraint: expected fallback to latest")
	}
}
