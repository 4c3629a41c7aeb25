// FILE: lixenwraith/configtree/errors.go
package configtree

import (
	"errors"
	"fmt"
)

// Sentinel errors. Operations wrap them with the key and the backend cause,
// so callers classify failures with errors.Is.
var (
	// ErrOpen is returned when the backend cannot establish a session.
	ErrOpen = errors.New("failed to open config store")
	// ErrClose is returned when flushing the backend fails. The session is closed anyway.
	ErrClose = errors.New("failed to close config store")
	// ErrKeyNotFound is returned when a key is absent or not representable as the requested type.
	ErrKeyNotFound = errors.New("config key not found")
	// ErrRead is returned when the backend fails while reading or probing a key.
	ErrRead = errors.New("failed to read config key")
	// ErrWrite is returned when the backend fails to store a value.
	ErrWrite = errors.New("failed to write config key")
	// ErrDelete is returned when the backend fails to remove a key.
	ErrDelete = errors.New("failed to delete config key")
	// ErrNotOpen is returned by every key operation outside an open session.
	ErrNotOpen = errors.New("config store is not open")
	// ErrAlreadyOpen is returned by Open on a session that is already open.
	ErrAlreadyOpen = errors.New("config store is already open")
	// ErrEmptyKey is returned for an empty key.
	ErrEmptyKey = errors.New("config key cannot be empty")
	// ErrUnsupported is returned when the backend lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by config backend")
)

// EnforcedReadError is the panic value raised when a read fails on a Config
// with enforced reads. It unwraps to the underlying failure, usually
// ErrKeyNotFound.
type EnforcedReadError struct {
	Key  string
	Type Kind
	Err  error
}

func (e *EnforcedReadError) Error() string {
	return fmt.Sprintf("required config key %q (%s) could not be read: %v", e.Key, e.Type, e.Err)
}

func (e *EnforcedReadError) Unwrap() error {
	return e.Err
}
