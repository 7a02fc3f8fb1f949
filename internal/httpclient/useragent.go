// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package httpclient

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/terraform-ls-manager/version"
)

const userAgentProduct = "terraform-ls-manager"

// editorIdent is the "<editor>/<editorVersion>" suffix appended to the
// User-Agent when the embedding editor has identified itself.
var editorIdent string

// SetEditorIdentity records the identity of the editor this tool is
// acting for, so that release-index traffic can be attributed to it.
// It must be called before any request is made; later calls are ignored
// by in-flight clients that already captured the string.
func SetEditorIdentity(name, editorVersion string) {
	if name == "" {
		editorIdent = ""
		return
	}
	editorIdent = fmt.Sprintf("%s/%s", name, editorVersion)
}

// UserAgentString returns the full User-Agent value, in the form
// "terraform-ls-manager/<version> <editor>/<editorVersion>".
func UserAgentString() string {
	ua := fmt.Sprintf("%s/%s", userAgentProduct, version.String())
	if editorIdent != "" {
		ua = ua + " " + editorIdent
	}
	return ua
}

type userAgentRoundTripper struct {
	inner     http.RoundTripper
	userAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header.Set("User-Agent", rt.userAgent)
	}
	return rt.inner.RoundTrip(req)
}
