// Package filestore implements a backend over a single flat configuration
// file in TOML, JSON or YAML.
//
// The document is decoded into memory on Open and written back atomically on
// Close when the session changed it. Nested tables in hand-written files are
// flattened into dotted keys; written files keep every key at the top level.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lixenwraith/configtree/internal/memstore"
)

// DefaultMaxFileSize bounds how much of a config file is read.
const DefaultMaxFileSize = 10 << 20

// Store is a file-backed store.
type Store struct {
	*memstore.Store

	path        string
	format      Format
	dontRead    bool
	maxFileSize int64
}

// New creates a Store for path. An empty or "auto" format is resolved from
// the file extension on Open, then from the existing content, falling back
// to TOML.
func New(path string, format Format) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}
	if format != FormatAuto && !format.valid() {
		return nil, fmt.Errorf("unsupported config file format %q", format)
	}
	return &Store{
		Store:       memstore.New(),
		path:        path,
		format:      format,
		maxFileSize: DefaultMaxFileSize,
	}, nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Format returns the resolved format. Before the first Open it may still be
// FormatAuto.
func (s *Store) Format() Format {
	return s.format
}

// Open loads the file unless dontRead is set. A missing file is an empty
// store, not an error.
func (s *Store) Open(dontRead bool) error {
	s.dontRead = dontRead
	if dontRead {
		if s.format == FormatAuto {
			s.format = resolveFormat(s.path, nil)
		}
		s.Replace(nil)
		return nil
	}

	raw, err := s.readFile()
	if err != nil {
		return err
	}
	if s.format == FormatAuto {
		s.format = resolveFormat(s.path, raw)
	}

	data, err := decode(s.format, raw)
	if err != nil {
		return fmt.Errorf("failed to parse %s config file '%s': %w", s.format, s.path, err)
	}
	flat := flattenMap(data, "")
	if s.format == FormatTOML {
		flat = fromTOMLValues(flat)
	}
	s.Replace(flat)
	return nil
}

// Close writes the document back when the session changed it, or always
// for a dontRead session so that the file holds exactly what was written.
func (s *Store) Close() error {
	if !s.Dirty() && !s.dontRead {
		return nil
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}
	raw, err := encode(s.format, snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal config data to %s: %w", s.format, err)
	}
	if err := atomicWriteFile(s.path, raw); err != nil {
		return err
	}
	return s.Store.Close()
}

func (s *Store) readFile() ([]byte, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file '%s': %w", s.path, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", s.path, err)
	}
	if int64(len(raw)) > s.maxFileSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", s.path, s.maxFileSize)
	}
	return raw, nil
}
