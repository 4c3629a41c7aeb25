// FILE: lixenwraith/configtree/factory.go
package configtree

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/lixenwraith/configtree/internal/boltstore"
	"github.com/lixenwraith/configtree/internal/filestore"
	"github.com/lixenwraith/configtree/internal/memstore"
	"github.com/lixenwraith/configtree/internal/sqlstore"
)

// BackendKind selects a storage engine.
type BackendKind string

const (
	// BackendAuto picks the platform default: bolt on Windows, a TOML file elsewhere.
	BackendAuto   BackendKind = "auto"
	BackendFile   BackendKind = "file"
	BackendBolt   BackendKind = "bolt"
	BackendSQLite BackendKind = "sqlite"
	BackendMemory BackendKind = "memory"
)

var (
	_ Backend = (*filestore.Store)(nil)
	_ Backend = (*boltstore.Store)(nil)
	_ Backend = (*sqlstore.Store)(nil)
	_ Backend = (*memstore.Store)(nil)

	_ Snapshotter = (*filestore.Store)(nil)
	_ Snapshotter = (*boltstore.Store)(nil)
	_ Snapshotter = (*sqlstore.Store)(nil)
	_ Snapshotter = (*memstore.Store)(nil)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BackendOptions describes the backend NewBackend constructs.
type BackendOptions struct {
	Kind BackendKind `validate:"omitempty,oneof=auto file bolt sqlite memory"`
	// App names the application directory used for default paths.
	App string `validate:"required_without=Path,excludesall=/\\"`
	// Path overrides the default location of the store.
	Path string
	// Format selects the file encoding; empty detects it from the path or content.
	Format string `validate:"omitempty,oneof=auto toml json yaml"`
	// Bucket names the bolt bucket.
	Bucket string `validate:"omitempty,printascii"`
}

// resolvedKind returns Kind with BackendAuto mapped to the platform default.
func (o BackendOptions) resolvedKind() BackendKind {
	if o.Kind == "" || o.Kind == BackendAuto {
		return platformDefaultKind
	}
	return o.Kind
}

// NewBackend constructs the single backend described by opts.
func NewBackend(opts BackendOptions) (Backend, error) {
	kind := opts.resolvedKind()
	if kind == BackendMemory {
		return memstore.New(), nil
	}
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid backend options: %w", err)
	}

	path := opts.Path
	if path == "" {
		p, err := DefaultPath(opts.App, kind)
		if err != nil {
			return nil, err
		}
		path = p
	}

	switch kind {
	case BackendFile:
		format, ok := filestore.ParseFormat(opts.Format)
		if !ok {
			return nil, fmt.Errorf("unsupported config file format %q", opts.Format)
		}
		return filestore.New(path, format)
	case BackendBolt:
		return boltstore.New(path, opts.Bucket)
	case BackendSQLite:
		return sqlstore.New(path)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", kind)
	}
}

// DefaultPath returns the platform location for app's store of the given kind.
func DefaultPath(app string, kind BackendKind) (string, error) {
	if app == "" {
		return "", fmt.Errorf("application name required for default path")
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}

	name := "config.toml"
	switch kind {
	case BackendBolt:
		name = "config.db"
	case BackendSQLite:
		name = "config.sqlite"
	case BackendAuto, "":
		return DefaultPath(app, platformDefaultKind)
	}
	return filepath.Join(dir, app, name), nil
}
