// Package http provides the shared HTTP client used for version resolution
// and artifact downloads.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/freshen/pkg/auth"
	"github.com/glorpus-work/freshen/pkg/errors"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "freshen/1.0"

// MaxBodySize bounds GetBody responses. Release pages and feeds are small;
// artifacts go through Open.
const MaxBodySize = 8 << 20

// HTTPClient implements Client.
type HTTPClient struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	auth      auth.Hosts
}

// NewHTTPClient creates a client. timeout bounds whole GetBody requests and
// the wait for response headers in Open, so long downloads are not cut off.
func NewHTTPClient(timeout time.Duration, userAgent string) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &HTTPClient{
		client:    &http.Client{Transport: transport},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// WithAuth sets the per-host credentials applied to every request.
func (hc *HTTPClient) WithAuth(hosts auth.Hosts) *HTTPClient {
	hc.auth = hosts
	return hc
}

// GetBody implements Client.
func (hc *HTTPClient) GetBody(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	if hc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hc.timeout)
		defer cancel()
	}

	resp, err := hc.do(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}

// Open implements Client.
func (hc *HTTPClient) Open(ctx context.Context, rawURL string) (*http.Response, error) {
	return hc.do(ctx, rawURL, nil)
}

func (hc *HTTPClient) do(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("User-Agent", hc.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if err := hc.auth.Apply(req); err != nil {
		return nil, errors.Wrapf(err, "failed to authenticate request to %s", rawURL)
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %d: %w", rawURL, resp.StatusCode, errors.ErrHTTPStatus)
	}
	return resp, nil
}
