package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/freshen/pkg/errors"
)

// scriptModules are the tengo stdlib modules a resolver script may import.
var scriptModules = []string{"enum", "fmt", "json", "math", "text", "times"}

// Script runs a tengo script to compute the version. When a URL is set its
// body is fetched first and exposed to the script as `body`; `url` holds
// the URL. `version` and `err` are predeclared: the script assigns the
// result with `version = ...`, or a message to `err` to signal failure.
type Script struct {
	client  BodyFetcher
	source  string
	url     string
	headers map[string]string
}

// NewScript returns a tengo script resolver.
func NewScript(client BodyFetcher, source, url string, headers map[string]string) *Script {
	return &Script{client: client, source: source, url: url, headers: headers}
}

// LatestVersion implements Resolver.
func (s *Script) LatestVersion(ctx context.Context) (string, error) {
	var body string
	if s.url != "" {
		data, err := s.client.GetBody(ctx, s.url, s.headers)
		if err != nil {
			return "", resolutionError(s.url, err)
		}
		body = string(data)
	}

	script := tengo.NewScript([]byte(s.source))
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	for name, value := range map[string]interface{}{"body": body, "url": s.url, "version": "", "err": ""} {
		if err := script.Add(name, value); err != nil {
			return "", fmt.Errorf("failed to add %s to script: %w", name, err)
		}
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return "", resolutionError("script", err)
	}

	if msg := strings.TrimSpace(compiled.Get("err").String()); msg != "" {
		return "", fmt.Errorf("script: %w: %s", errors.ErrResolutionFailed, msg)
	}

	version := strings.TrimSpace(compiled.Get("version").String())
	if version == "" {
		return "", noVersion("script")
	}
	return version, nil
}
