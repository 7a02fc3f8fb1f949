// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package httpclient provides the shared HTTP client used for all
// release-index and artifact requests, with a User-Agent that identifies
// both this tool and, when known, the editor embedding it.
package httpclient

import (
	"net/http"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// New returns the http.Client used by all outgoing requests within this
// program. The client stamps requests with the standard User-Agent
// unless the caller already set one.
func New() *http.Client {
	cli := cleanhttp.DefaultPooledClient()
	cli.Transport = &userAgentRoundTripper{
		userAgent: UserAgentString(),
		inner:     cli.Transport,
	}
	return cli
}
