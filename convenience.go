// File: lixenwraith/configtree/convenience.go
package configtree

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Quick builds a Config on the platform default backend for app and opens it.
// Callers own the returned Config and must Close it.
func Quick(app string, dontRead bool) (*Config, error) {
	cfg, err := NewBuilder().WithApp(app).Build()
	if err != nil {
		return nil, err
	}
	if err := cfg.Open(dontRead); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustQuick is like Quick but panics on error
func MustQuick(app string, dontRead bool) *Config {
	cfg, err := Quick(app, dontRead)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Dump writes every stored key to w as a flat TOML table. Values of
// maskedKeys are written as RedactionPlaceholder.
func (c *Config) Dump(w io.Writer, maskedKeys ...string) error {
	snapshot, err := c.snapshot()
	if err != nil {
		return err
	}

	masked := make(map[string]bool, len(maskedKeys))
	for _, k := range maskedKeys {
		masked[k] = true
	}

	out := make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		if x, ok := v.(uint64); ok && x > math.MaxInt64 {
			v = strconv.FormatUint(x, 10)
		}
		if masked[k] {
			v = RedactionPlaceholder
		}
		out[k] = v
	}

	return toml.NewEncoder(w).Encode(out)
}
