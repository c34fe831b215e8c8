package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glorpus-work/freshen/pkg/model"
)

// DefaultGitHubAPI is the releases API base used when none is configured.
const DefaultGitHubAPI = "https://api.github.com"

// GitHub returns the highest release tag of a repository.
type GitHub struct {
	client             BodyFetcher
	repository         string
	apiBase            string
	includePrereleases bool
	headers            map[string]string
}

// NewGitHub returns a GitHub releases resolver. apiBase may be empty.
func NewGitHub(client BodyFetcher, repository, apiBase string, includePrereleases bool, headers map[string]string) *GitHub {
	if apiBase == "" {
		apiBase = DefaultGitHubAPI
	}
	h := map[string]string{"Accept": "application/vnd.github+json"}
	for k, v := range headers {
		h[k] = v
	}
	return &GitHub{
		client:             client,
		repository:         repository,
		apiBase:            strings.TrimSuffix(apiBase, "/"),
		includePrereleases: includePrereleases,
		headers:            h,
	}
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// LatestVersion implements Resolver.
func (g *GitHub) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases", g.apiBase, g.repository)
	body, err := g.client.GetBody(ctx, url, g.headers)
	if err != nil {
		return "", resolutionError(g.repository, err)
	}

	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return "", resolutionError(g.repository, err)
	}

	best, bestVersion := "", model.ZeroVersion
	for _, release := range releases {
		if release.Draft || (release.Prerelease && !g.includePrereleases) {
			continue
		}
		tag := strings.TrimPrefix(strings.TrimSpace(release.TagName), "v")
		if v := model.ParseVersion(tag); v.GreaterThan(bestVersion) {
			best, bestVersion = tag, v
		}
	}
	if best == "" {
		return "", noVersion(g.repository)
	}
	return best, nil
}
