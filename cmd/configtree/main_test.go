package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExitStatus(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")

	exec := func(args ...string) (int, string, string) {
		var out, errOut bytes.Buffer
		code := run(append([]string{"--file", file}, args...), strings.NewReader(""), &out, &errOut)
		return code, out.String(), errOut.String()
	}

	t.Run("Success", func(t *testing.T) {
		code, _, _ := exec("set", "name", "svc")
		assert.Equal(t, 0, code)

		code, out, _ := exec("get", "name")
		assert.Equal(t, 0, code)
		assert.Equal(t, "svc\n", out)
	})

	t.Run("MissingKey", func(t *testing.T) {
		code, _, errOut := exec("get", "absent")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "config key not found")
	})

	t.Run("EnforcedMissingKey", func(t *testing.T) {
		code, out, errOut := exec("--enforce", "get", "required")
		assert.Equal(t, 2, code)
		assert.Empty(t, out)
		assert.Contains(t, errOut, `required config key "required"`)
	})

	t.Run("EnforcedHitSucceeds", func(t *testing.T) {
		code, out, _ := exec("--enforce", "get", "name")
		assert.Equal(t, 0, code)
		assert.Equal(t, "svc\n", out)
	})
}
