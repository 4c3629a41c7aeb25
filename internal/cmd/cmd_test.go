package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/configtree"
	"github.com/lixenwraith/configtree/internal/memstore"
)

// execute runs the root command with a fresh provider.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	provider := &AppProvider{
		Out: &out,
		Err: &errOut,
		In:  strings.NewReader(stdin),
	}
	root := newRootCmd(provider)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestSetGetRoundTrip(t *testing.T) {
	for _, ext := range []string{"toml", "json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "settings."+ext)

			_, _, err := execute(t, "", "--file", file, "set", "server.host", "localhost")
			require.NoError(t, err)
			_, _, err = execute(t, "", "--file", file, "--type", "uint32", "set", "server.port", "0x1F90")
			require.NoError(t, err)

			out, _, err := execute(t, "", "--file", file, "get", "server.host")
			require.NoError(t, err)
			assert.Equal(t, "localhost\n", out)

			out, _, err = execute(t, "", "--file", file, "-t", "uint32", "get", "server.port")
			require.NoError(t, err)
			assert.Equal(t, "8080\n", out)
		})
	}
}

func TestBackends(t *testing.T) {
	for _, backend := range []string{"bolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "store."+backend)

			_, _, err := execute(t, "", "--backend", backend, "--file", file, "--type", "bool", "set", "flag", "true")
			require.NoError(t, err)

			out, _, err := execute(t, "", "--backend", backend, "--file", file, "--type", "bool", "has", "flag")
			require.NoError(t, err)
			assert.Equal(t, "true\n", out)

			out, _, err = execute(t, "", "--backend", backend, "--file", file, "list")
			require.NoError(t, err)
			assert.Equal(t, "flag\n", out)
		})
	}
}

func TestEnvironmentDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "env.db")
	t.Setenv(envFile, file)
	t.Setenv(envBackend, "bolt")

	_, _, err := execute(t, "", "--type", "int64", "set", "offset", "-5")
	require.NoError(t, err)

	out, _, err := execute(t, "", "--type", "int64", "get", "offset")
	require.NoError(t, err)
	assert.Equal(t, "-5\n", out)
	assert.FileExists(t, file)
}

func TestDiscoversExistingFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(envFile, "")
	t.Setenv(envBackend, "")
	t.Setenv("DISCO_CONFIG", "")
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "disco"), 0755))
	found := filepath.Join(xdg, "disco", "config.json")
	require.NoError(t, os.WriteFile(found, []byte(`{"greeting": "hello"}`), 0644))

	out, _, err := execute(t, "", "--app", "disco", "get", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.NoFileExists(t, filepath.Join(xdg, "disco", "config.toml"))
}

func TestGetMissing(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")

	_, _, err := execute(t, "", "--file", file, "get", "absent")
	assert.ErrorIs(t, err, configtree.ErrKeyNotFound)

	out, _, err := execute(t, "", "--file", file, "has", "absent")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestGetEnforced(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")

	assert.Panics(t, func() {
		_, _, _ = execute(t, "", "--file", file, "--enforce", "get", "required")
	})
}

func TestSetMaskedPrompt(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")

	_, logs, err := execute(t, "pr1vate-token\n", "--file", file, "--masked", "--log-level", "debug", "set", "token")
	require.NoError(t, err)
	assert.NotContains(t, logs, "pr1vate-token")
	assert.Contains(t, logs, configtree.RedactionPlaceholder)

	out, _, err := execute(t, "", "--file", file, "get", "token")
	require.NoError(t, err)
	assert.Equal(t, "pr1vate-token\n", out)

	t.Run("NoValueUnmasked", func(t *testing.T) {
		_, _, err := execute(t, "", "--file", file, "set", "token")
		assert.Error(t, err)
	})

	t.Run("EmptyStdin", func(t *testing.T) {
		_, _, err := execute(t, "", "--file", file, "--masked", "set", "token")
		assert.Error(t, err)
	})
}

func TestSetInvalidValue(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")
	_, _, err := execute(t, "", "--file", file, "--type", "int32", "set", "n", "not-a-number")
	assert.Error(t, err)

	_, _, err = execute(t, "", "--file", file, "--type", "float", "set", "n", "1")
	assert.Error(t, err)
}

func TestDeleteAndDump(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"secret", "xyzzy"}} {
		_, _, err := execute(t, "", "--file", file, "set", kv[0], kv[1])
		require.NoError(t, err)
	}

	_, _, err := execute(t, "", "--file", file, "delete", "a", "missing")
	require.NoError(t, err)

	out, _, err := execute(t, "", "--file", file, "dump", "--mask", "secret")
	require.NoError(t, err)
	assert.NotContains(t, out, "xyzzy")
	assert.Contains(t, out, `b = "2"`)
	assert.Contains(t, out, `secret = "[REDACTED]"`)
	assert.NotContains(t, out, "a =")
}

func TestTestProvider(t *testing.T) {
	var out bytes.Buffer
	cfg := configtree.New(memstore.New())
	app := &App{Config: cfg, Kind: configtree.KindUint64, Out: &out, Err: &out}

	cmd := newSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"big", "18446744073709551615"})
	require.NoError(t, cmd.Execute())

	cmd = newGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"big"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "18446744073709551615\n", out.String())
}
