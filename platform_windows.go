//go:build windows

package configtree

import (
	"fmt"
	"os"
)

// On Windows the embedded bolt database stands in for a registry hive.
const platformDefaultKind = BackendBolt

func configDir() (string, error) {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("APPDATA not set: %w", err)
	}
	return dir, nil
}
