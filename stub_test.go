package configtree

import (
	"errors"

	"github.com/lixenwraith/configtree/internal/memstore"
)

var errDisk = errors.New("disk failure")

// stubBackend is a memory backend whose operations can be made to fail.
type stubBackend struct {
	*memstore.Store

	openErr  error
	closeErr error
	readErr  error
	writeErr error
	delErr   error

	opens  int
	closes int
}

func newStub() *stubBackend {
	return &stubBackend{Store: memstore.New()}
}

func (s *stubBackend) Open(dontRead bool) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opens++
	return s.Store.Open(dontRead)
}

func (s *stubBackend) Close() error {
	s.closes++
	if s.closeErr != nil {
		return s.closeErr
	}
	return s.Store.Close()
}

func (s *stubBackend) HasKeyString(key string) (bool, error) {
	if s.readErr != nil {
		return false, s.readErr
	}
	return s.Store.HasKeyString(key)
}

func (s *stubBackend) ReadString(key string) (string, bool, error) {
	if s.readErr != nil {
		return "", false, s.readErr
	}
	return s.Store.ReadString(key)
}

func (s *stubBackend) ReadUint32(key string) (uint32, bool, error) {
	if s.readErr != nil {
		return 0, false, s.readErr
	}
	return s.Store.ReadUint32(key)
}

func (s *stubBackend) WriteString(key, value string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.Store.WriteString(key, value)
}

func (s *stubBackend) Delete(key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	return s.Store.Delete(key)
}

// opaqueBackend hides the Snapshotter implementation of its embedded store.
type opaqueBackend struct {
	Backend
}
