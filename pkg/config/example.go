package config

import (
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/resolver"
)

// ExampleConfig returns the defaults plus one application per common
// resolver type. It is what `freshen config init` writes.
func ExampleConfig() *Config {
	c := DefaultConfig()
	c.Apps = []*AppConfig{
		{
			ID:          "org.videolan.vlc",
			Name:        "VLC",
			InstallPath: "/Applications/VLC.app",
			DownloadURL: "https://get.videolan.org/vlc/{version}/macosx/vlc-{version}-universal.dmg",
			Resolver: model.ResolverSpec{
				Type: resolver.TypeSparkle,
				URL:  "https://update.videolan.org/vlc/sparkle/vlc-intel64.xml",
			},
		},
		{
			ID:          "com.github.gui-app",
			Name:        "Example",
			InstallPath: "/Applications/Example.app",
			DownloadURL: "https://github.com/example/gui-app/releases/download/v{version}/Example-{version}.zip",
			Resolver: model.ResolverSpec{
				Type:       resolver.TypeGitHub,
				Repository: "example/gui-app",
			},
		},
		{
			ID:          "com.example.native",
			Name:        "Native",
			InstallPath: "/Applications/Native.app",
			DownloadURL: "https://downloads.example.com/native/{version}/Native-{arch}.dmg",
			ArchNames:   map[string]string{"amd64": "x64", "arm64": "arm64"},
			Resolver: model.ResolverSpec{
				Type:    resolver.TypeRegex,
				URL:     "https://downloads.example.com/native/",
				Pattern: `Native (\d+\.\d+\.\d+)`,
			},
		},
	}
	return c
}
