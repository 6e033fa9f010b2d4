package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandStructure(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "taskflow", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	for _, keyword := range []string{"MCP", "interview", "GitHub"} {
		assert.Contains(t, cmd.Long, keyword)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"serve", "serve-http", "cleanup", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag, "root command should have --config persistent flag")
	assert.Equal(t, "C", configFlag.Shorthand)
	assert.Empty(t, configFlag.DefValue)
	assert.Contains(t, configFlag.Usage, "$HOME/.config/taskflow")

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag, "root command should have --verbose persistent flag")
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestServeHTTPAddrFlag(t *testing.T) {
	cmd := newRootCmd()
	sub, _, err := cmd.Find([]string{"serve-http"})
	require.NoError(t, err)

	addr := sub.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Empty(t, addr.DefValue)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "taskflow v"), "got %q", out.String())
}

// writeConfig creates an isolated environment with a file-backed store.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("GITHUB_TOKEN", "")

	path := filepath.Join(dir, "config.yaml")
	body := "data_dir: " + filepath.Join(dir, "data") + "\n" +
		"store:\n  backend: file\n" +
		"log:\n  file: " + filepath.Join(dir, "taskflow.log") + "\n" +
		extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCleanupCommand_RetentionDisabled(t *testing.T) {
	cfgPath := writeConfig(t, "interview:\n  retention: 0s\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "cleanup"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Retention is disabled")
}

func TestCleanupCommand_NothingToRemove(t *testing.T) {
	cfgPath := writeConfig(t, "interview:\n  retention: 24h\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-C", cfgPath, "-v", "cleanup"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Removed 0 completed interview(s) older than 24h0m0s.")
}

func TestCleanupCommand_MissingConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "nope.yaml"), "cleanup"})

	assert.Error(t, cmd.Execute())
}
