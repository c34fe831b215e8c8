//go:generate mockgen -destination=mocks/http.go -package=mocks . Client
package http

import (
	"context"
	"net/http"
)

// Client defines the HTTP operations used by resolvers and the artifact
// fetcher.
type Client interface {
	// GetBody fetches rawURL and returns the response body. Non-200
	// responses fail with ErrHTTPStatus.
	GetBody(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)

	// Open starts a GET request for rawURL and returns the response with an
	// unread body. The caller must close it.
	Open(ctx context.Context, rawURL string) (*http.Response, error)
}
