// FILE: lixenwraith/configtree/config_test.go
package configtree

import (
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/configtree/internal/logging"
	"github.com/lixenwraith/configtree/internal/memstore"
)

func openMemory(t *testing.T) *Config {
	t.Helper()
	cfg := New(memstore.New())
	require.NoError(t, cfg.Open(false))
	t.Cleanup(func() {
		if cfg.IsOpen() {
			_ = cfg.Close()
		}
	})
	return cfg
}

// TestSessionLifecycle tests the idle, open and closed states
func TestSessionLifecycle(t *testing.T) {
	t.Run("IdleRejectsOperations", func(t *testing.T) {
		cfg := New(memstore.New())
		assert.False(t, cfg.IsOpen())

		var s string
		assert.ErrorIs(t, Read(cfg, "k", &s, false), ErrNotOpen)
		assert.ErrorIs(t, Write(cfg, "k", "v", false), ErrNotOpen)
		assert.ErrorIs(t, cfg.Delete("k"), ErrNotOpen)
		_, err := HasKey[string](cfg, "k")
		assert.ErrorIs(t, err, ErrNotOpen)
		assert.ErrorIs(t, cfg.Close(), ErrNotOpen)
	})

	t.Run("ClosedRejectsOperations", func(t *testing.T) {
		cfg := New(memstore.New())
		require.NoError(t, cfg.Open(false))
		require.NoError(t, cfg.Close())

		var n uint32
		assert.ErrorIs(t, Read(cfg, "n", &n, false), ErrNotOpen)
		assert.ErrorIs(t, Write(cfg, "n", uint32(1), false), ErrNotOpen)
		assert.ErrorIs(t, cfg.Close(), ErrNotOpen)
	})

	t.Run("ReopenAfterClose", func(t *testing.T) {
		cfg := New(memstore.New())
		require.NoError(t, cfg.Open(false))
		require.NoError(t, cfg.Close())
		require.NoError(t, cfg.Open(false))
		assert.True(t, cfg.IsOpen())
		require.NoError(t, cfg.Close())
	})

	t.Run("DoubleOpen", func(t *testing.T) {
		cfg := openMemory(t)
		assert.ErrorIs(t, cfg.Open(false), ErrAlreadyOpen)
		assert.True(t, cfg.IsOpen())
	})

	t.Run("OpenFailureStaysIdle", func(t *testing.T) {
		stub := newStub()
		stub.openErr = errDisk
		cfg := New(stub)

		err := cfg.Open(false)
		assert.ErrorIs(t, err, ErrOpen)
		assert.ErrorIs(t, err, errDisk)
		assert.False(t, cfg.IsOpen())

		var s string
		assert.ErrorIs(t, Read(cfg, "k", &s, false), ErrNotOpen)
	})

	t.Run("CloseFailureStillCloses", func(t *testing.T) {
		stub := newStub()
		stub.closeErr = errDisk
		cfg := New(stub)
		require.NoError(t, cfg.Open(false))

		err := cfg.Close()
		assert.ErrorIs(t, err, ErrClose)
		assert.ErrorIs(t, err, errDisk)
		assert.False(t, cfg.IsOpen())
		assert.Equal(t, 1, stub.closes)
	})

	t.Run("DontReadRecorded", func(t *testing.T) {
		cfg := New(memstore.New())
		require.NoError(t, cfg.Open(true))
		assert.True(t, cfg.DontRead())
		require.NoError(t, cfg.Close())
	})

	t.Run("EmptyKey", func(t *testing.T) {
		cfg := openMemory(t)
		assert.ErrorIs(t, Write(cfg, "", "v", false), ErrEmptyKey)
		var s string
		assert.ErrorIs(t, Read(cfg, "", &s, false), ErrEmptyKey)
		assert.ErrorIs(t, cfg.Delete(""), ErrEmptyKey)
	})
}

// TestTypedRoundTrip tests that every value type reads back what was written
func TestTypedRoundTrip(t *testing.T) {
	cfg := openMemory(t)

	t.Run("String", func(t *testing.T) { roundTrip(t, cfg, "s", "héllo wörld") })
	t.Run("EmptyString", func(t *testing.T) { roundTrip(t, cfg, "empty", "") })
	t.Run("Bool", func(t *testing.T) { roundTrip(t, cfg, "b", true) })
	t.Run("Uint32", func(t *testing.T) { roundTrip(t, cfg, "u32", uint32(math.MaxUint32)) })
	t.Run("Int32", func(t *testing.T) { roundTrip(t, cfg, "i32", int32(math.MinInt32)) })
	t.Run("Uint64", func(t *testing.T) { roundTrip(t, cfg, "u64", uint64(math.MaxUint64)) })
	t.Run("Int64", func(t *testing.T) { roundTrip(t, cfg, "i64", int64(math.MinInt64)) })
	t.Run("DottedKeyIsLiteral", func(t *testing.T) { roundTrip(t, cfg, "server.port", uint32(8080)) })
}

func roundTrip[T Value](t *testing.T, cfg *Config, key string, want T) {
	t.Helper()
	require.NoError(t, Write(cfg, key, want, false))

	has, err := HasKey[T](cfg, key)
	require.NoError(t, err)
	assert.True(t, has)

	var got T
	require.NoError(t, Read(cfg, key, &got, false))
	assert.Equal(t, want, got)
}

// TestReadMiss tests misses on a fresh session
func TestReadMiss(t *testing.T) {
	cfg := openMemory(t)

	has, err := HasKey[string](cfg, "missing")
	require.NoError(t, err)
	assert.False(t, has)

	out := "untouched"
	err = Read(cfg, "missing", &out, false)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, "untouched", out)

	t.Run("NilTarget", func(t *testing.T) {
		assert.Error(t, Read[string](cfg, "missing", nil, false))
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		require.NoError(t, Write(cfg, "name", "alice", false))
		var n int64
		assert.ErrorIs(t, Read(cfg, "name", &n, false), ErrKeyNotFound)
		has, err := HasKey[int64](cfg, "name")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		stub := newStub()
		c := New(stub)
		require.NoError(t, c.Open(false))
		stub.readErr = errDisk

		var s string
		err := Read(c, "k", &s, false)
		assert.ErrorIs(t, err, ErrRead)
		assert.ErrorIs(t, err, errDisk)

		_, err = HasKey[string](c, "k")
		assert.ErrorIs(t, err, errDisk)
	})
}

// TestDelete tests deletion and its idempotence
func TestDelete(t *testing.T) {
	cfg := openMemory(t)

	require.NoError(t, Write(cfg, "k", int32(-5), false))
	require.NoError(t, cfg.Delete("k"))
	require.NoError(t, cfg.Delete("k"))
	require.NoError(t, cfg.Delete("never-existed"))

	has, err := HasKey[int32](cfg, "k")
	require.NoError(t, err)
	assert.False(t, has)

	t.Run("BackendFailure", func(t *testing.T) {
		stub := newStub()
		c := New(stub)
		require.NoError(t, c.Open(false))
		stub.delErr = errDisk
		err := c.Delete("k")
		assert.ErrorIs(t, err, ErrDelete)
		assert.ErrorIs(t, err, errDisk)
	})
}

// TestWriteFailure tests that backend write errors are classified
func TestWriteFailure(t *testing.T) {
	stub := newStub()
	cfg := New(stub)
	require.NoError(t, cfg.Open(false))
	stub.writeErr = errDisk

	err := Write(cfg, "k", "v", false)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errDisk)
}

// TestOverwrite tests that a second write replaces the first
func TestOverwrite(t *testing.T) {
	cfg := openMemory(t)

	require.NoError(t, Write(cfg, "n", uint32(42), false))
	require.NoError(t, Write(cfg, "n", uint32(7), false))

	var n uint32
	require.NoError(t, Read(cfg, "n", &n, false))
	assert.Equal(t, uint32(7), n)

	t.Run("ChangesType", func(t *testing.T) {
		require.NoError(t, Write(cfg, "n", "seven", false))
		var s string
		require.NoError(t, Read(cfg, "n", &s, false))
		assert.Equal(t, "seven", s)
	})
}

// TestDurability tests that values survive a close and reopen
func TestDurability(t *testing.T) {
	cfg := New(memstore.New())

	require.NoError(t, cfg.Open(false))
	require.NoError(t, Write(cfg, "flag", true, false))
	require.NoError(t, cfg.Close())

	require.NoError(t, cfg.Open(false))
	defer cfg.Close()

	var flag bool
	require.NoError(t, Read(cfg, "flag", &flag, false))
	assert.True(t, flag)
}

// TestEnforcedRead tests that enforced reads turn failures into panics
func TestEnforcedRead(t *testing.T) {
	t.Run("MissPanics", func(t *testing.T) {
		capture := logging.CaptureForTest()
		defer capture.Restore()

		cfg := openMemory(t)
		cfg.SetEnforceRead()
		assert.True(t, cfg.EnforceRead())

		var n uint32
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected panic")
			perr, ok := r.(*EnforcedReadError)
			require.True(t, ok, "panic value %T", r)
			assert.Equal(t, "required", perr.Key)
			assert.Equal(t, KindUint32, perr.Type)
			assert.ErrorIs(t, perr, ErrKeyNotFound)
			assert.Equal(t, uint32(0), n)
			assert.True(t, capture.Has(slog.LevelError, "required config key"))

			// The lock is released while the panic unwinds.
			assert.NoError(t, Write(cfg, "after", "ok", false))
		}()
		_ = Read(cfg, "required", &n, false)
	})

	t.Run("BackendFailurePanics", func(t *testing.T) {
		stub := newStub()
		cfg := New(stub)
		cfg.SetEnforceRead()
		require.NoError(t, cfg.Open(false))
		stub.readErr = errDisk

		assert.PanicsWithError(t,
			`required config key "k" (string) could not be read: failed to read config key: "k": disk failure`,
			func() {
				var s string
				_ = Read(cfg, "k", &s, false)
			})
	})

	t.Run("HitDoesNotPanic", func(t *testing.T) {
		cfg := openMemory(t)
		cfg.SetEnforceRead()
		require.NoError(t, Write(cfg, "k", int64(1), false))

		var v int64
		assert.NotPanics(t, func() {
			require.NoError(t, Read(cfg, "k", &v, false))
		})
		assert.Equal(t, int64(1), v)
	})

	t.Run("DefaultOff", func(t *testing.T) {
		cfg := openMemory(t)
		assert.False(t, cfg.EnforceRead())
		var v int64
		assert.NotPanics(t, func() {
			assert.ErrorIs(t, Read(cfg, "k", &v, false), ErrKeyNotFound)
		})
	})

	t.Run("NotOpenDoesNotPanic", func(t *testing.T) {
		cfg := New(memstore.New())
		cfg.SetEnforceRead()
		var v int64
		assert.NotPanics(t, func() {
			assert.ErrorIs(t, Read(cfg, "k", &v, false), ErrNotOpen)
		})
	})
}

// TestMasking tests that masking affects logs only
func TestMasking(t *testing.T) {
	capture := logging.CaptureForTest()
	defer capture.Restore()

	backend := memstore.New()
	cfg := New(backend)
	require.NoError(t, cfg.Open(false))
	defer cfg.Close()

	const secret = "hunter2-s3cr3t"
	require.NoError(t, Write(cfg, "password", secret, true))

	stored, ok, err := backend.ReadString("password")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, stored)

	var got string
	require.NoError(t, Read(cfg, "password", &got, true))
	assert.Equal(t, secret, got)

	logs := capture.Text()
	assert.NotContains(t, logs, secret)
	assert.Contains(t, logs, RedactionPlaceholder)

	t.Run("UnmaskedIsLogged", func(t *testing.T) {
		require.NoError(t, Write(cfg, "user", "alice", false))
		assert.Contains(t, capture.Text(), "alice")
	})
}

// TestKeys tests sorted key listing
func TestKeys(t *testing.T) {
	cfg := openMemory(t)
	require.NoError(t, Write(cfg, "b", true, false))
	require.NoError(t, Write(cfg, "a.x", "1", false))
	require.NoError(t, Write(cfg, "c", uint64(3), false))

	keys, err := cfg.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.x", "b", "c"}, keys)

	t.Run("Unsupported", func(t *testing.T) {
		c := New(opaqueBackend{memstore.New()})
		require.NoError(t, c.Open(false))
		_, err := c.Keys()
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("NotOpen", func(t *testing.T) {
		_, err := New(memstore.New()).Keys()
		assert.True(t, errors.Is(err, ErrNotOpen))
	})
}
