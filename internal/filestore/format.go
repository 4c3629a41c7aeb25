package filestore

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a file encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name; "auto" and "" select detection.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "auto" {
		return FormatAuto, true
	}
	if f == FormatAuto || f.valid() {
		return f, true
	}
	return FormatAuto, false
}

func (f Format) valid() bool {
	return f == FormatTOML || f == FormatJSON || f == FormatYAML
}

// resolveFormat picks a format from the file extension, then from content,
// then falls back to TOML.
func resolveFormat(path string, content []byte) Format {
	if f := detectFileFormat(path); f != FormatAuto {
		return f
	}
	if len(bytes.TrimSpace(content)) > 0 {
		if f := detectFormatFromContent(content); f != FormatAuto {
			return f
		}
	}
	return FormatTOML
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) Format {
	// JSON first, it is the strictest
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: "key = value" lines are valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return FormatAuto
}

func decode(format Format, raw []byte) (map[string]any, error) {
	data := make(map[string]any)
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&data); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		if data == nil {
			data = make(map[string]any)
		}
	}
	return data, nil
}

func encode(format Format, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return nil, err
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(tomlValues(data)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// tomlValues adapts values to what TOML can hold: integers are signed
// 64-bit, so larger uint64 values are kept as decimal text.
func tomlValues(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch x := v.(type) {
		case uint64:
			if x > math.MaxInt64 {
				out[k] = strconv.FormatUint(x, 10)
				continue
			}
			out[k] = int64(x)
		case uint32:
			out[k] = int64(x)
		case int32:
			out[k] = int64(x)
		default:
			out[k] = v
		}
	}
	return out
}

// fromTOMLValues reverses tomlValues: text holding a number above
// MaxInt64 can only have been written as a uint64.
func fromTOMLValues(data map[string]any) map[string]any {
	for k, v := range data {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil && u > math.MaxInt64 {
			data[k] = u
		}
	}
	return data
}
