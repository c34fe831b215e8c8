package resolver

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"github.com/glorpus-work/freshen/pkg/model"
)

// Sparkle reads a Sparkle appcast feed and returns the highest version it
// lists. Items on a named channel (betas) are skipped unless prereleases
// are included.
type Sparkle struct {
	client             BodyFetcher
	url                string
	includePrereleases bool
	headers            map[string]string
}

// NewSparkle returns a Sparkle appcast resolver.
func NewSparkle(client BodyFetcher, url string, includePrereleases bool, headers map[string]string) *Sparkle {
	return &Sparkle{client: client, url: url, includePrereleases: includePrereleases, headers: headers}
}

type appcast struct {
	Items []appcastItem `xml:"channel>item"`
}

// Element and attribute names are matched by local name, so the sparkle
// namespace prefix does not need to be declared exactly.
type appcastItem struct {
	Title              string `xml:"title"`
	ShortVersionString string `xml:"shortVersionString"`
	Version            string `xml:"version"`
	Channel            string `xml:"channel"`
	Enclosure          struct {
		ShortVersionString string `xml:"shortVersionString,attr"`
		Version            string `xml:"version,attr"`
	} `xml:"enclosure"`
}

func (i appcastItem) version() string {
	for _, candidate := range []string{
		i.ShortVersionString,
		i.Enclosure.ShortVersionString,
		i.Version,
		i.Enclosure.Version,
	} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return ""
}

// LatestVersion implements Resolver.
func (s *Sparkle) LatestVersion(ctx context.Context) (string, error) {
	body, err := s.client.GetBody(ctx, s.url, s.headers)
	if err != nil {
		return "", resolutionError(s.url, err)
	}

	var feed appcast
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.Strict = false
	if err := decoder.Decode(&feed); err != nil {
		return "", resolutionError(s.url, err)
	}

	best, bestVersion := "", model.ZeroVersion
	for _, item := range feed.Items {
		if item.Channel != "" && !s.includePrereleases {
			continue
		}
		raw := item.version()
		if v := model.ParseVersion(raw); v.GreaterThan(bestVersion) {
			best, bestVersion = raw, v
		}
	}
	if best == "" {
		return "", noVersion(s.url)
	}
	return best, nil
}
