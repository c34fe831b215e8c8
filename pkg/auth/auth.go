// Package auth applies per-host credentials to outgoing requests, so private
// download servers and rate-limited release APIs can be reached with the
// same shared HTTP client.
package auth

import (
	"net/http"
	"strings"
)

// Authenticator applies credentials to a request.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type names an authentication scheme.
type Type string

const (
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// BasicAuth sends HTTP Basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth sets arbitrary headers, e.g. an API key.
type HeaderAuth struct {
	Headers map[string]string
}

// BearerAuth sends an Authorization: Bearer token.
type BearerAuth struct {
	Token string
}

func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

func (b BasicAuth) Type() Type { return BasicAuthType }

func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

func (h HeaderAuth) Type() Type { return HeaderAuthType }

func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b BearerAuth) Type() Type { return BearerAuthType }

// Hosts maps a host name to the credentials sent to it. Keys are compared
// case-insensitively and without a port.
type Hosts map[string]Authenticator

// For returns the authenticator registered for host, if any.
func (h Hosts) For(host string) (Authenticator, bool) {
	if len(h) == 0 {
		return nil, false
	}
	host = strings.ToLower(host)
	if a, ok := h[host]; ok {
		return a, true
	}
	for k, a := range h {
		if strings.ToLower(k) == host {
			return a, true
		}
	}
	return nil, false
}

// Apply applies the credentials registered for the request's host. Requests
// to other hosts, including redirects off the configured host, are left
// untouched.
func (h Hosts) Apply(req *http.Request) error {
	if req.URL == nil {
		return nil
	}
	a, ok := h.For(req.URL.Hostname())
	if !ok {
		return nil
	}
	return a.Apply(req)
}
