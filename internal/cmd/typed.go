package cmd

import (
	"fmt"

	"github.com/lixenwraith/configtree"
	"github.com/lixenwraith/configtree/internal/convert"
)

// readText reads key as kind and formats the value as text.
func readText(cfg *configtree.Config, kind configtree.Kind, key string, masked bool) (string, error) {
	switch kind {
	case configtree.KindString:
		return readAs[string](cfg, key, masked)
	case configtree.KindBool:
		return readAs[bool](cfg, key, masked)
	case configtree.KindUint32:
		return readAs[uint32](cfg, key, masked)
	case configtree.KindInt32:
		return readAs[int32](cfg, key, masked)
	case configtree.KindUint64:
		return readAs[uint64](cfg, key, masked)
	case configtree.KindInt64:
		return readAs[int64](cfg, key, masked)
	}
	return "", fmt.Errorf("unsupported value type %s", kind)
}

func readAs[T configtree.Value](cfg *configtree.Config, key string, masked bool) (string, error) {
	var v T
	if err := configtree.Read(cfg, key, &v, masked); err != nil {
		return "", err
	}
	return convert.Format(v), nil
}

// writeText parses text as kind and stores it at key.
func writeText(cfg *configtree.Config, kind configtree.Kind, key, text string, masked bool) error {
	parsed, err := convert.Parse(kind, text)
	if err != nil {
		return err
	}
	switch v := parsed.(type) {
	case string:
		return configtree.Write(cfg, key, v, masked)
	case bool:
		return configtree.Write(cfg, key, v, masked)
	case uint32:
		return configtree.Write(cfg, key, v, masked)
	case int32:
		return configtree.Write(cfg, key, v, masked)
	case uint64:
		return configtree.Write(cfg, key, v, masked)
	case int64:
		return configtree.Write(cfg, key, v, masked)
	}
	return fmt.Errorf("unsupported value type %s", kind)
}

// hasKey reports whether key holds a value of kind.
func hasKey(cfg *configtree.Config, kind configtree.Kind, key string) (bool, error) {
	switch kind {
	case configtree.KindString:
		return configtree.HasKey[string](cfg, key)
	case configtree.KindBool:
		return configtree.HasKey[bool](cfg, key)
	case configtree.KindUint32:
		return configtree.HasKey[uint32](cfg, key)
	case configtree.KindInt32:
		return configtree.HasKey[int32](cfg, key)
	case configtree.KindUint64:
		return configtree.HasKey[uint64](cfg, key)
	case configtree.KindInt64:
		return configtree.HasKey[int64](cfg, key)
	}
	return false, fmt.Errorf("unsupported value type %s", kind)
}
