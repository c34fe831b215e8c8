package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Regex scrapes a page and returns the first capture group of the first
// match, or the whole match when the pattern has no group.
type Regex struct {
	client  BodyFetcher
	url     string
	pattern *regexp.Regexp
	headers map[string]string
}

// NewRegex compiles pattern and returns the resolver.
func NewRegex(client BodyFetcher, url, pattern string, headers map[string]string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &Regex{client: client, url: url, pattern: re, headers: headers}, nil
}

// LatestVersion implements Resolver.
func (r *Regex) LatestVersion(ctx context.Context) (string, error) {
	body, err := r.client.GetBody(ctx, r.url, r.headers)
	if err != nil {
		return "", resolutionError(r.url, err)
	}

	match := r.pattern.FindSubmatch(body)
	if match == nil {
		return "", noVersion(r.url)
	}
	found := match[0]
	if len(match) > 1 {
		found = match[1]
	}
	return strings.TrimSpace(string(found)), nil
}
