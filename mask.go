package configtree

import (
	"fmt"
	"log/slog"
)

// RedactionPlaceholder replaces masked values in logs and dumps.
const RedactionPlaceholder = "[REDACTED]"

// Redact formats v for display, or returns RedactionPlaceholder when masked.
func Redact(v any, masked bool) string {
	if masked {
		return RedactionPlaceholder
	}
	return fmt.Sprint(v)
}

// Masked wraps v for structured logging. A masked value never reaches the
// log handler in cleartext.
func Masked(v any, masked bool) slog.LogValuer {
	return maskedValue{v: v, masked: masked}
}

type maskedValue struct {
	v      any
	masked bool
}

func (m maskedValue) LogValue() slog.Value {
	if m.masked {
		return slog.StringValue(RedactionPlaceholder)
	}
	return slog.AnyValue(m.v)
}

func (m maskedValue) String() string {
	return Redact(m.v, m.masked)
}
