package models

import (
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dohr-michael/tinychat/internal/backend"
)

const maxErrorBody = 512

// classifyingTransport wraps an http.RoundTripper and turns every failure into
// a *backend.Error: transport errors are unreachable, non-2xx responses are
// rejected and non-JSON payloads (e.g. a reverse proxy answering "no available
// server" in plain text) are protocol errors.
type classifyingTransport struct {
	inner     http.RoundTripper
	provider  string
	userAgent string
}

func (t *classifyingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, backend.Unreachable(t.provider, err)
	}

	if resp.StatusCode >= 400 {
		return nil, backend.Rejected(t.provider, resp.StatusCode, drainBody(resp))
	}

	// Ollama sends application/x-ndjson when streaming, the hosted APIs
	// application/json or text/event-stream.
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "json") && !strings.Contains(ct, "event-stream") {
		return nil, backend.Protocol(t.provider, drainBody(resp), nil)
	}

	return resp, nil
}

func drainBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return strings.TrimSpace(string(body))
}

// NewHTTPClient builds the client every driver talks through.
func NewHTTPClient(provider, userAgent string, timeout time.Duration, insecureSkipVerify bool) *http.Client {
	inner := http.DefaultTransport
	if insecureSkipVerify {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed local servers
		inner = tr
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &classifyingTransport{
			inner:     inner,
			provider:  provider,
			userAgent: userAgent,
		},
	}
}
