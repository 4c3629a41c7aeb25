//go:build !windows

package configtree

import (
	"fmt"
	"os"
	"path/filepath"
)

const platformDefaultKind = BackendFile

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory unknown: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}
