// Package convert maps loosely typed decoded values (as produced by TOML,
// JSON and YAML decoders) onto the fixed set of value kinds a store holds,
// and parses or formats those kinds as text.
package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind tags a stored value with its declared type.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindBool
	KindUint32
	KindInt32
	KindUint64
	KindInt64
)

var kindNames = map[Kind]string{
	KindString: "string",
	KindBool:   "bool",
	KindUint32: "uint32",
	KindInt32:  "int32",
	KindUint64: "uint64",
	KindInt64:  "int64",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind by its name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// KindOf reports the kind of a value already held as one of the six Go types.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	case uint32:
		return KindUint32, true
	case int32:
		return KindInt32, true
	case uint64:
		return KindUint64, true
	case int64:
		return KindInt64, true
	}
	return 0, false
}

// ToString accepts only textual values.
func ToString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ToBool accepts only boolean values. Strings such as "true" are not
// considered booleans.
func ToBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// ToInt32 accepts any integral value within the int32 range.
func ToInt32(v any) (int32, bool) {
	i, ok := signed(v)
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int32(i), true
}

// ToInt64 accepts any integral value within the int64 range.
func ToInt64(v any) (int64, bool) {
	return signed(v)
}

// ToUint32 accepts any non-negative integral value within the uint32 range.
func ToUint32(v any) (uint32, bool) {
	u, ok := unsigned(v)
	if !ok || u > math.MaxUint32 {
		return 0, false
	}
	return uint32(u), true
}

// ToUint64 accepts any non-negative integral value. Strings are not
// numbers.
func ToUint64(v any) (uint64, bool) {
	return unsigned(v)
}

// signed normalises integral values to int64.
func signed(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		i, err := n.Int64()
		return i, err == nil
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		// Only whole floats, as produced by JSON decoders without UseNumber
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// unsigned normalises non-negative integral values to uint64.
func unsigned(v any) (uint64, bool) {
	if n, ok := v.(json.Number); ok {
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, false
		}
		return uint64(f), true
	}
	return 0, false
}

// Parse converts text into a value of the given kind.
func Parse(kind Kind, s string) (any, error) {
	switch kind {
	case KindString:
		return s, nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to bool: %w", s, err)
		}
		return b, nil
	case KindUint32:
		u, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to uint32: %w", s, err)
		}
		return uint32(u), nil
	case KindInt32:
		i, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int32: %w", s, err)
		}
		return int32(i), nil
	case KindUint64:
		u, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to uint64: %w", s, err)
		}
		return u, nil
	case KindInt64:
		i, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int64: %w", s, err)
		}
		return i, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

// Format renders one of the six value types as text.
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprintf("%v", v)
}
