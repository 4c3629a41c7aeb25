// FILE: lixenwraith/configtree/config.go
package configtree

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lixenwraith/configtree/internal/logging"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateOpen
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Config is a typed accessor over one Backend. It tracks the session
// lifecycle (idle, open, closed) and applies the enforced-read policy; the
// typed operations are the package functions HasKey, Read and Write.
//
// Key operations outside an open session return ErrNotOpen. A Config is
// meant to be used by one goroutine at a time; the internal mutex only
// keeps the state machine consistent under misuse.
type Config struct {
	mu sync.Mutex

	backend     Backend
	state       sessionState
	dontRead    bool
	enforceRead bool
	logger      *slog.Logger
}

// New creates an idle Config that owns backend.
func New(backend Backend) *Config {
	return &Config{
		backend: backend,
		logger:  logging.For("configtree"),
	}
}

// SetEnforceRead makes every subsequent read failure fatal: Read logs the
// failure and panics with *EnforcedReadError instead of returning an error.
func (c *Config) SetEnforceRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enforceRead = true
}

// EnforceRead reports whether read failures are fatal.
func (c *Config) EnforceRead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enforceRead
}

// DontRead reports whether the current or last session was opened write-only.
func (c *Config) DontRead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dontRead
}

// IsOpen reports whether a session is open.
func (c *Config) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateOpen
}

// Open starts a session on the backend. With dontRead the backend skips
// loading existing content, for sessions that only overwrite. On failure
// the Config stays in its previous state.
func (c *Config) Open(dontRead bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateOpen {
		return ErrAlreadyOpen
	}
	if err := c.backend.Open(dontRead); err != nil {
		c.logger.Warn("failed to open config store", "dont_read", dontRead, "error", err)
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}

	c.state = stateOpen
	c.dontRead = dontRead
	c.logger.Debug("config store opened", "dont_read", dontRead)
	return nil
}

// Close flushes the backend and ends the session. The session is closed
// even when the flush fails; the returned error reports the failure.
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateOpen {
		return fmt.Errorf("%w: close in %s state", ErrNotOpen, c.state)
	}

	err := c.backend.Close()
	c.state = stateClosed
	if err != nil {
		c.logger.Warn("failed to flush config store", "error", err)
		return fmt.Errorf("%w: %w", ErrClose, err)
	}
	c.logger.Debug("config store closed")
	return nil
}

// Delete removes key. Deleting a missing key succeeds.
func (c *Config) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkKey(key); err != nil {
		return err
	}
	if err := c.backend.Delete(key); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrDelete, key, err)
	}
	c.logger.Debug("deleted key", "key", key)
	return nil
}

// Keys returns every stored key in sorted order. The backend must implement
// Snapshotter.
func (c *Config) Keys() ([]string, error) {
	snapshot, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *Config) snapshot() (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateOpen {
		return nil, ErrNotOpen
	}
	s, ok := c.backend.(Snapshotter)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot list keys", ErrUnsupported, c.backend)
	}
	data, err := s.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, nil
}

// checkKey validates session state and key. Callers hold c.mu.
func (c *Config) checkKey(key string) error {
	if c.state != stateOpen {
		return fmt.Errorf("%w: key %q in %s state", ErrNotOpen, key, c.state)
	}
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

// failRead terminates the read with *EnforcedReadError. Callers hold c.mu;
// their deferred unlock runs while the panic unwinds.
func (c *Config) failRead(key string, kind Kind, cause error) {
	c.logger.Error("required config key could not be read", "key", key, "type", kind.String(), "error", cause)
	panic(&EnforcedReadError{Key: key, Type: kind, Err: cause})
}
