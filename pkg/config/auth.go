package config

import (
	"github.com/glorpus-work/freshen/pkg/auth"
	"github.com/glorpus-work/freshen/pkg/errors"
)

// AuthConfig holds the credentials sent to one host. Exactly one scheme
// must be set.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty" toml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty" toml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty" toml:"bearer,omitempty"`
}

// BasicAuth holds configuration for HTTP Basic Authentication.
type BasicAuth struct {
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers" toml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token" toml:"token"`
}

func (a *AuthConfig) validate() error {
	if a == nil {
		return errors.ErrInvalidAuth
	}
	set := 0
	for _, ok := range []bool{a.BasicAuth != nil, a.HeaderAuth != nil, a.BearerAuth != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.ErrInvalidAuth
	}
	return nil
}

// ToAuthenticator converts the entry to an Authenticator.
func (a *AuthConfig) ToAuthenticator() auth.Authenticator {
	switch {
	case a == nil:
		return nil
	case a.BasicAuth != nil:
		return auth.BasicAuth{Username: a.BasicAuth.Username, Password: a.BasicAuth.Password}
	case a.HeaderAuth != nil:
		return auth.HeaderAuth{Headers: a.HeaderAuth.Headers}
	case a.BearerAuth != nil:
		return auth.BearerAuth{Token: a.BearerAuth.Token}
	default:
		return nil
	}
}

// AuthHosts converts the auth settings to per-host authenticators.
// Returns nil if no credentials are configured.
func (c *Config) AuthHosts() auth.Hosts {
	if len(c.Settings.Auth) == 0 {
		return nil
	}
	hosts := make(auth.Hosts, len(c.Settings.Auth))
	for host, entry := range c.Settings.Auth {
		if a := entry.ToAuthenticator(); a != nil {
			hosts[host] = a
		}
	}
	if len(hosts) == 0 {
		return nil
	}
	return hosts
}
