// File: lixenwraith/configtree/builder.go
package configtree

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Builder provides a fluent interface for constructing a Config
type Builder struct {
	opts        BackendOptions
	backend     Backend
	enforceRead bool
	logger      *slog.Logger
	err         error
}

// NewBuilder creates a builder for the platform default backend
func NewBuilder() *Builder {
	return &Builder{opts: BackendOptions{Kind: BackendAuto}}
}

// WithApp sets the application name used for default store locations
func (b *Builder) WithApp(app string) *Builder {
	b.opts.App = app
	return b
}

// WithBackend selects the backend kind
func (b *Builder) WithBackend(kind BackendKind) *Builder {
	b.opts.Kind = BackendKind(strings.ToLower(string(kind)))
	return b
}

// WithPath sets an explicit store location
func (b *Builder) WithPath(path string) *Builder {
	b.opts.Path = path
	return b
}

// WithFormat sets the file encoding for the file backend
func (b *Builder) WithFormat(format string) *Builder {
	b.opts.Format = strings.ToLower(format)
	return b
}

// WithBucket sets the bolt bucket name
func (b *Builder) WithBucket(bucket string) *Builder {
	b.opts.Bucket = bucket
	return b
}

// WithBackendInstance uses backend as is, ignoring backend options
func (b *Builder) WithBackendInstance(backend Backend) *Builder {
	if backend == nil {
		b.err = errors.New("backend instance cannot be nil")
		return b
	}
	b.backend = backend
	return b
}

// WithEnforceRead makes read failures fatal on the built Config
func (b *Builder) WithEnforceRead() *Builder {
	b.enforceRead = true
	return b
}

// WithLogger replaces the Config's logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build creates an idle Config; call Open before use
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	backend := b.backend
	if backend == nil {
		var err error
		backend, err = NewBackend(b.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend: %w", err)
		}
	}

	cfg := New(backend)
	if b.logger != nil {
		cfg.logger = b.logger
	}
	if b.enforceRead {
		cfg.SetEnforceRead()
	}
	return cfg, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}
