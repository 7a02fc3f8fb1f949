// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	version "github.com/hashicorp/go-version"

	"github.com/hashicorp/terraform-ls-manager/internal/httpclient"
	"github.com/hashicorp/terraform-ls-manager/internal/releaseauth"
)

// DefaultBaseURL is the production releases index.
const DefaultBaseURL = "https://releases.hashicorp.com"

// Client queries a HashiCorp-style releases index for published build
// metadata. The zero value is not usable; use NewClient.
type Client struct {
	// BaseURL is the root of the releases index. It may be overridden
	// for testing against a local server.
	BaseURL string

	logger hclog.Logger
	http   *retryablehttp.Client
}

// NewClient returns a release-index client over the shared UA-stamped
// HTTP client, retrying transient failures a small number of times.
func NewClient(logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	retry := retryablehttp.NewClient()
	retry.HTTPClient = httpclient.New()
	retry.RetryMax = 2
	retry.Logger = logger.Named("http")

	return &Client{
		BaseURL: DefaultBaseURL,
		logger:  logger,
		http:    retry,
	}
}

// Resolve queries the index for the given product and returns the
// newest published release satisfying the constraint. The "latest"
// constraint selects the newest non-prerelease version. Failures of
// either the query or the match are returned as *ResolutionError.
func (c *Client) Resolve(ctx context.Context, product string, wanted Constraints) (*Release, error) {
	indexURL := fmt.Sprintf("%s/%s/index.json", c.BaseURL, product)
	c.logger.Debug("resolving release", "product", product, "constraint", wanted.String(), "url", indexURL)

	body, err := c.get(ctx, indexURL)
	if err != nil {
		return nil, &ResolutionError{Product: product, Wanted: wanted.String(), Inner: err}
	}

	var index indexDoc
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, &ResolutionError{
			Product: product,
			Wanted:  wanted.String(),
			Inner:   fmt.Errorf("malformed index document: %w", err),
		}
	}

	var best *version.Version
	var bestEntry indexRelease
	for raw, entry := range index.Versions {
		v, err := version.NewVersion(raw)
		if err != nil {
			c.logger.Warn("ignoring unparseable version in index", "product", product, "version", raw)
			continue
		}
		if wanted.IsLatest() && v.Prerelease() != "" {
			continue
		}
		if !wanted.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestEntry = entry
		}
	}
	if best == nil {
		return nil, &ResolutionError{Product: product, Wanted: wanted.String()}
	}

	rel := &Release{
		Product: product,
		Version: best,
	}
	shasums := bestEntry.Shasums
	if shasums == "" {
		shasums = fmt.Sprintf("%s_%s_SHA256SUMS", product, best.String())
	}
	rel.ChecksumsURL = fmt.Sprintf("%s/%s/%s/%s", c.BaseURL, product, best.String(), shasums)
	for _, b := range bestEntry.Builds {
		rel.Builds = append(rel.Builds, Build{
			OS:       b.OS,
			Arch:     b.Arch,
			Filename: b.Filename,
			URL:      b.URL,
		})
	}

	c.logger.Debug("resolved release", "product", product, "version", best.String(), "builds", len(rel.Builds))
	return rel, nil
}

// Checksums fetches and parses the SHA256SUMS document for the given
// release, covering all of its build artifacts.
func (c *Client) Checksums(ctx context.Context, rel *Release) (releaseauth.SHA256Checksums, error) {
	body, err := c.get(ctx, rel.ChecksumsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checksums for %s v%s: %w", rel.Product, rel.Version, err)
	}
	sums, err := releaseauth.ParseChecksums(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse checksums for %s v%s: %w", rel.Product, rel.Version, err)
	}
	return sums, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsuccessful request to %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// indexDoc matches the document served at <base>/<product>/index.json.
type indexDoc struct {
	Name     string                  `json:"name"`
	Versions map[string]indexRelease `json:"versions"`
}

type indexRelease struct {
	Version string       `json:"version"`
	Shasums string       `json:"shasums"`
	Builds  []indexBuild `json:"builds"`
}

type indexBuild struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
