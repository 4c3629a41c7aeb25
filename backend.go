package configtree

import "github.com/lixenwraith/configtree/internal/convert"

// Backend is a storage engine for one physical medium. A Config owns
// exactly one Backend and only calls it between a successful Open and the
// matching Close.
//
// HasKey and Read methods report absence (or a value not representable as
// the requested type) as false with a nil error; errors are reserved for
// I/O failures. Write upserts, replacing any previous value or type. Delete
// succeeds whether or not the key existed.
type Backend interface {
	// Open establishes a session. With dontRead, existing content is not
	// loaded and the session's flush replaces it.
	Open(dontRead bool) error
	// Close flushes pending writes and releases the medium.
	Close() error

	HasKeyString(key string) (bool, error)
	HasKeyBool(key string) (bool, error)
	HasKeyUint32(key string) (bool, error)
	HasKeyInt32(key string) (bool, error)
	HasKeyUint64(key string) (bool, error)
	HasKeyInt64(key string) (bool, error)

	ReadString(key string) (string, bool, error)
	ReadBool(key string) (bool, bool, error)
	ReadUint32(key string) (uint32, bool, error)
	ReadInt32(key string) (int32, bool, error)
	ReadUint64(key string) (uint64, bool, error)
	ReadInt64(key string) (int64, bool, error)

	WriteString(key, value string) error
	WriteBool(key string, value bool) error
	WriteUint32(key string, value uint32) error
	WriteInt32(key string, value int32) error
	WriteUint64(key string, value uint64) error
	WriteInt64(key string, value int64) error

	Delete(key string) error
}

// Snapshotter is implemented by backends that can list their contents.
// Keys and Scan require it.
type Snapshotter interface {
	Snapshot() (map[string]any, error)
}

// Kind identifies one of the supported value types.
type Kind = convert.Kind

const (
	KindString = convert.KindString
	KindBool   = convert.KindBool
	KindUint32 = convert.KindUint32
	KindInt32  = convert.KindInt32
	KindUint64 = convert.KindUint64
	KindInt64  = convert.KindInt64
)

// ParseKind resolves a kind from its type name ("string", "uint32", ...).
func ParseKind(s string) (Kind, error) {
	return convert.ParseKind(s)
}
