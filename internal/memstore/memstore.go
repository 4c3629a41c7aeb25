// Package memstore implements an in-process key/value backend. Values keep
// their Go types, and integer kinds convert into one another whenever the
// stored number fits the requested type.
//
// Store is also the in-memory layer of the file backend, which loads a
// decoded document into it on Open and writes it back on Close.
package memstore

import (
	"maps"

	"github.com/lixenwraith/configtree/internal/convert"
)

// Store holds values for the lifetime of the process. Data written in one
// session remains visible to the next session unless it is opened with
// dontRead.
type Store struct {
	data  map[string]any
	dirty bool
}

// New creates an empty memory store.
func New() *Store {
	return &Store{data: make(map[string]any)}
}

// Open starts a session. With dontRead the previous contents are dropped.
func (s *Store) Open(dontRead bool) error {
	if dontRead || s.data == nil {
		s.Replace(nil)
	}
	return nil
}

// Close ends a session. There is nothing to flush.
func (s *Store) Close() error {
	s.dirty = false
	return nil
}

// Replace swaps in data as the complete contents and clears the dirty flag.
// A nil map empties the store.
func (s *Store) Replace(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	s.data = data
	s.dirty = false
}

// Dirty reports whether a write or delete changed the contents since the
// last Replace or Close.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Snapshot returns a shallow copy of every key and value.
func (s *Store) Snapshot() (map[string]any, error) {
	return maps.Clone(s.data), nil
}

func (s *Store) HasKeyString(key string) (bool, error) {
	_, ok, err := s.ReadString(key)
	return ok, err
}

func (s *Store) HasKeyBool(key string) (bool, error) {
	_, ok, err := s.ReadBool(key)
	return ok, err
}

func (s *Store) HasKeyUint32(key string) (bool, error) {
	_, ok, err := s.ReadUint32(key)
	return ok, err
}

func (s *Store) HasKeyInt32(key string) (bool, error) {
	_, ok, err := s.ReadInt32(key)
	return ok, err
}

func (s *Store) HasKeyUint64(key string) (bool, error) {
	_, ok, err := s.ReadUint64(key)
	return ok, err
}

func (s *Store) HasKeyInt64(key string) (bool, error) {
	_, ok, err := s.ReadInt64(key)
	return ok, err
}

func (s *Store) ReadString(key string) (string, bool, error) {
	v, ok := convert.ToString(s.data[key])
	return v, ok, nil
}

func (s *Store) ReadBool(key string) (bool, bool, error) {
	v, ok := convert.ToBool(s.data[key])
	return v, ok, nil
}

func (s *Store) ReadUint32(key string) (uint32, bool, error) {
	v, ok := convert.ToUint32(s.data[key])
	return v, ok, nil
}

func (s *Store) ReadInt32(key string) (int32, bool, error) {
	v, ok := convert.ToInt32(s.data[key])
	return v, ok, nil
}

func (s *Store) ReadUint64(key string) (uint64, bool, error) {
	v, ok := convert.ToUint64(s.data[key])
	return v, ok, nil
}

func (s *Store) ReadInt64(key string) (int64, bool, error) {
	v, ok := convert.ToInt64(s.data[key])
	return v, ok, nil
}

func (s *Store) WriteString(key, value string) error { return s.put(key, value) }

func (s *Store) WriteBool(key string, value bool) error { return s.put(key, value) }

func (s *Store) WriteUint32(key string, value uint32) error { return s.put(key, value) }

func (s *Store) WriteInt32(key string, value int32) error { return s.put(key, value) }

func (s *Store) WriteUint64(key string, value uint64) error { return s.put(key, value) }

func (s *Store) WriteInt64(key string, value int64) error { return s.put(key, value) }

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
	return nil
}

func (s *Store) put(key string, value any) error {
	s.data[key] = value
	s.dirty = true
	return nil
}
