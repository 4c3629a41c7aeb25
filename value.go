// FILE: lixenwraith/configtree/value.go
package configtree

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Value is the closed set of types a Config stores.
type Value interface {
	string | bool | uint32 | int32 | uint64 | int64
}

// kindOf returns the Kind for T.
func kindOf[T Value]() Kind {
	var zero T
	switch any(zero).(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case uint32:
		return KindUint32
	case int32:
		return KindInt32
	case uint64:
		return KindUint64
	default:
		return KindInt64
	}
}

// HasKey reports whether key exists and holds a value representable as T.
func HasKey[T Value](c *Config, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkKey(key); err != nil {
		return false, err
	}

	var (
		ok  bool
		err error
		b   = c.backend
	)
	var zero T
	switch any(zero).(type) {
	case string:
		ok, err = b.HasKeyString(key)
	case bool:
		ok, err = b.HasKeyBool(key)
	case uint32:
		ok, err = b.HasKeyUint32(key)
	case int32:
		ok, err = b.HasKeyInt32(key)
	case uint64:
		ok, err = b.HasKeyUint64(key)
	case int64:
		ok, err = b.HasKeyInt64(key)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %q: %w", ErrRead, key, err)
	}
	return ok, nil
}

// Read stores the value at key into out. On a miss it returns an error
// wrapping ErrKeyNotFound and leaves out untouched. With enforced reads any
// failure panics with *EnforcedReadError instead. masked only changes how
// the value appears in logs.
func Read[T Value](c *Config, key string, out *T, masked bool) error {
	if out == nil {
		return errors.New("read target cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkKey(key); err != nil {
		return err
	}

	v, found, err := readBackend[T](c.backend, key)
	kind := kindOf[T]()
	if err != nil {
		err = fmt.Errorf("%w: %q: %w", ErrRead, key, err)
		if c.enforceRead {
			c.failRead(key, kind, err)
		}
		return err
	}
	if !found {
		err = fmt.Errorf("%w: %q as %s", ErrKeyNotFound, key, kind)
		if c.enforceRead {
			c.failRead(key, kind, err)
		}
		c.logger.Debug("config key not found", "key", key, "type", kind.String())
		return err
	}

	*out = v
	c.logger.Debug("read key", "key", key, "type", kind.String(), "value", Masked(v, masked))
	return nil
}

// Write stores value at key, replacing any previous value and type.
// Keys and string values must be valid UTF-8; anything else is rejected
// before it reaches the backend. masked only changes how the value appears
// in logs.
func Write[T Value](c *Config, key string, value T, masked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkKey(key); err != nil {
		return err
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: key %q is not valid UTF-8", ErrWrite, key)
	}
	if s, ok := any(value).(string); ok && !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q: value is not valid UTF-8", ErrWrite, key)
	}

	var err error
	b := c.backend
	switch v := any(value).(type) {
	case string:
		err = b.WriteString(key, v)
	case bool:
		err = b.WriteBool(key, v)
	case uint32:
		err = b.WriteUint32(key, v)
	case int32:
		err = b.WriteInt32(key, v)
	case uint64:
		err = b.WriteUint64(key, v)
	case int64:
		err = b.WriteInt64(key, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrWrite, key, err)
	}

	c.logger.Debug("wrote key", "key", key, "type", kindOf[T]().String(), "value", Masked(value, masked))
	return nil
}

func readBackend[T Value](b Backend, key string) (T, bool, error) {
	var (
		out   T
		v     any
		found bool
		err   error
	)
	switch any(out).(type) {
	case string:
		v, found, err = b.ReadString(key)
	case bool:
		v, found, err = b.ReadBool(key)
	case uint32:
		v, found, err = b.ReadUint32(key)
	case int32:
		v, found, err = b.ReadInt32(key)
	case uint64:
		v, found, err = b.ReadUint64(key)
	case int64:
		v, found, err = b.ReadInt64(key)
	}
	if err != nil || !found {
		return out, false, err
	}
	return v.(T), true, nil
}
