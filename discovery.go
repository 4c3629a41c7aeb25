// FILE: lixenwraith/configtree/discovery.go
package configtree

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures the search for an existing config file
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the search used by the CLI: an
// APP_CONFIG override, then ./config.{toml,json,yaml,yml}, then the XDG
// directories for app.
func DefaultDiscoveryOptions(app string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          "config",
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(app, "-", "_")) + "_CONFIG",
		UseXDG:        app != "",
		UseCurrentDir: true,
	}
}

// DiscoverFile returns the first existing file matching opts for app.
func DiscoverFile(app string, opts FileDiscoveryOptions) (string, bool) {
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	var searchPaths []string
	searchPaths = append(searchPaths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG && app != "" {
		searchPaths = append(searchPaths, getXDGConfigPaths(app)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	return "", false
}

// WithFileDiscovery selects the file backend on the first discovered file.
// No match leaves the builder unchanged.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path, ok := DiscoverFile(b.opts.App, opts); ok {
		b.opts.Kind = BackendFile
		b.opts.Path = path
	}
	return b
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(app string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, app))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", app))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, app))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", app),
			filepath.Join("/etc", app),
		)
	}

	return paths
}
