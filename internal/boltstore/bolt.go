// Package boltstore implements a backend over a bbolt database, playing the
// role a registry hive plays on Windows: one bucket per application, each
// value stored with a type tag.
//
// A session is one read-write transaction. Writes become durable when Close
// commits it; a failed Open or a dontRead session that is never closed
// leaves the database unchanged.
package boltstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lixenwraith/configtree/internal/convert"
)

// DefaultBucket is used when no bucket name is given.
const DefaultBucket = "config"

// openTimeout bounds the wait for the database file lock.
const openTimeout = time.Second

var errNoSession = errors.New("bolt store has no open session")

// Store implements a typed backend using bbolt (embedded B+ tree).
type Store struct {
	path   string
	bucket []byte

	db *bolt.DB
	tx *bolt.Tx
}

// New creates a Store for the database at path using the named bucket.
func New(path, bucket string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt database path cannot be empty")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Store{path: path, bucket: []byte(bucket)}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Open opens the database and begins the session transaction. With dontRead
// the bucket is recreated empty inside that transaction.
func (s *Store) Open(dontRead bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("opening bolt db: %w", err)
	}

	tx, err := db.Begin(true)
	if err != nil {
		db.Close()
		return fmt.Errorf("beginning bolt transaction: %w", err)
	}

	if dontRead && tx.Bucket(s.bucket) != nil {
		if err := tx.DeleteBucket(s.bucket); err != nil {
			tx.Rollback()
			db.Close()
			return fmt.Errorf("clearing bucket %q: %w", s.bucket, err)
		}
	}
	if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
		tx.Rollback()
		db.Close()
		return fmt.Errorf("creating bucket: %w", err)
	}

	s.db = db
	s.tx = tx
	return nil
}

// Close commits the session transaction and closes the database. The
// database is closed even when the commit fails.
func (s *Store) Close() error {
	if s.tx == nil {
		return errNoSession
	}

	var commitErr error
	if err := s.tx.Commit(); err != nil {
		commitErr = fmt.Errorf("committing bolt transaction: %w", err)
	}
	closeErr := s.db.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("closing bolt db: %w", closeErr)
	}

	s.tx = nil
	s.db = nil
	return errors.Join(commitErr, closeErr)
}

// Snapshot returns every key with its decoded value.
func (s *Store) Snapshot() (map[string]any, error) {
	b, err := s.current()
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	err = b.ForEach(func(k, v []byte) error {
		_, value, ok := decode(v)
		if !ok {
			return fmt.Errorf("corrupt value for key %q", k)
		}
		result[string(k)] = value
		return nil
	})
	return result, err
}

func (s *Store) HasKeyString(key string) (bool, error) { return s.has(key, convert.KindString) }

func (s *Store) HasKeyBool(key string) (bool, error) { return s.has(key, convert.KindBool) }

func (s *Store) HasKeyUint32(key string) (bool, error) { return s.has(key, convert.KindUint32) }

func (s *Store) HasKeyInt32(key string) (bool, error) { return s.has(key, convert.KindInt32) }

func (s *Store) HasKeyUint64(key string) (bool, error) { return s.has(key, convert.KindUint64) }

func (s *Store) HasKeyInt64(key string) (bool, error) { return s.has(key, convert.KindInt64) }

func (s *Store) ReadString(key string) (string, bool, error) {
	v, ok, err := s.get(key, convert.KindString)
	if !ok {
		return "", false, err
	}
	return v.(string), true, nil
}

func (s *Store) ReadBool(key string) (bool, bool, error) {
	v, ok, err := s.get(key, convert.KindBool)
	if !ok {
		return false, false, err
	}
	return v.(bool), true, nil
}

func (s *Store) ReadUint32(key string) (uint32, bool, error) {
	v, ok, err := s.get(key, convert.KindUint32)
	if !ok {
		return 0, false, err
	}
	return v.(uint32), true, nil
}

func (s *Store) ReadInt32(key string) (int32, bool, error) {
	v, ok, err := s.get(key, convert.KindInt32)
	if !ok {
		return 0, false, err
	}
	return v.(int32), true, nil
}

func (s *Store) ReadUint64(key string) (uint64, bool, error) {
	v, ok, err := s.get(key, convert.KindUint64)
	if !ok {
		return 0, false, err
	}
	return v.(uint64), true, nil
}

func (s *Store) ReadInt64(key string) (int64, bool, error) {
	v, ok, err := s.get(key, convert.KindInt64)
	if !ok {
		return 0, false, err
	}
	return v.(int64), true, nil
}

func (s *Store) WriteString(key, value string) error { return s.put(key, encode(value)) }

func (s *Store) WriteBool(key string, value bool) error { return s.put(key, encode(value)) }

func (s *Store) WriteUint32(key string, value uint32) error { return s.put(key, encode(value)) }

func (s *Store) WriteInt32(key string, value int32) error { return s.put(key, encode(value)) }

func (s *Store) WriteUint64(key string, value uint64) error { return s.put(key, encode(value)) }

func (s *Store) WriteInt64(key string, value int64) error { return s.put(key, encode(value)) }

// Delete removes key. bbolt treats deleting a missing key as success.
func (s *Store) Delete(key string) error {
	b, err := s.current()
	if err != nil {
		return err
	}
	return b.Delete([]byte(key))
}

func (s *Store) current() (*bolt.Bucket, error) {
	if s.tx == nil {
		return nil, errNoSession
	}
	b := s.tx.Bucket(s.bucket)
	if b == nil {
		return nil, fmt.Errorf("bucket %q missing from session", s.bucket)
	}
	return b, nil
}

func (s *Store) has(key string, want convert.Kind) (bool, error) {
	_, ok, err := s.get(key, want)
	return ok, err
}

// get returns the decoded value when key holds a value of kind want.
func (s *Store) get(key string, want convert.Kind) (any, bool, error) {
	b, err := s.current()
	if err != nil {
		return nil, false, err
	}
	raw := b.Get([]byte(key))
	if raw == nil {
		return nil, false, nil
	}
	kind, value, ok := decode(raw)
	if !ok {
		return nil, false, fmt.Errorf("corrupt value for key %q", key)
	}
	if kind != want {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *Store) put(key string, value []byte) error {
	b, err := s.current()
	if err != nil {
		return err
	}
	return b.Put([]byte(key), value)
}

// encode lays a value out as a kind tag followed by its payload: raw bytes
// for strings, one byte for booleans, big-endian integers otherwise.
func encode(v any) []byte {
	switch x := v.(type) {
	case string:
		return append([]byte{byte(convert.KindString)}, x...)
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return []byte{byte(convert.KindBool), b}
	case uint32:
		return binary.BigEndian.AppendUint32([]byte{byte(convert.KindUint32)}, x)
	case int32:
		return binary.BigEndian.AppendUint32([]byte{byte(convert.KindInt32)}, uint32(x))
	case uint64:
		return binary.BigEndian.AppendUint64([]byte{byte(convert.KindUint64)}, x)
	case int64:
		return binary.BigEndian.AppendUint64([]byte{byte(convert.KindInt64)}, uint64(x))
	}
	panic(fmt.Sprintf("boltstore: unsupported value type %T", v))
}

func decode(raw []byte) (convert.Kind, any, bool) {
	if len(raw) == 0 {
		return 0, nil, false
	}
	kind, payload := convert.Kind(raw[0]), raw[1:]
	switch kind {
	case convert.KindString:
		return kind, string(payload), true
	case convert.KindBool:
		if len(payload) != 1 {
			return kind, nil, false
		}
		return kind, payload[0] != 0, true
	case convert.KindUint32:
		if len(payload) != 4 {
			return kind, nil, false
		}
		return kind, binary.BigEndian.Uint32(payload), true
	case convert.KindInt32:
		if len(payload) != 4 {
			return kind, nil, false
		}
		return kind, int32(binary.BigEndian.Uint32(payload)), true
	case convert.KindUint64:
		if len(payload) != 8 {
			return kind, nil, false
		}
		return kind, binary.BigEndian.Uint64(payload), true
	case convert.KindInt64:
		if len(payload) != 8 {
			return kind, nil, false
		}
		return kind, int64(binary.BigEndian.Uint64(payload)), true
	}
	return kind, nil, false
}
