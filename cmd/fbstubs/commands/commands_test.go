package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fbstubs/am"
)

// testCommand builds a fresh command so flag state never leaks between tests.
func testCommand(use string, run func(*cobra.Command, []string) error, bind func(*cobra.Command)) *cobra.Command {
	cmd := &cobra.Command{Use: use, RunE: run, SilenceUsage: true, SilenceErrors: true}
	cmd.PersistentFlags().StringP("config", "c", "", "")
	if bind != nil {
		bind(cmd)
	}
	return cmd
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// workspace isolates the user config and the working directory and returns
// the absolute path of the test snapshot.
func workspace(t *testing.T) (dir, snapshot string) {
	t.Helper()
	snapshot, err := filepath.Abs(filepath.Join("..", "..", "..", "stub", "pipeline", "testdata", "pyfbsdk.yaml"))
	require.NoError(t, err)

	dir = t.TempDir()
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir, snapshot
}

func generateArgs(snapshot, out string) []string {
	return []string{"--snapshot", snapshot, "--no-docs", "--output", out, "--additions", ""}
}

func TestGenerateWritesStub(t *testing.T) {
	dir, snapshot := workspace(t)
	out := filepath.Join(dir, "stubs")

	cmd := testCommand("fbstubs", RunGenerate, BindGenerateFlags)
	require.NoError(t, execute(t, cmd, generateArgs(snapshot, out)...))

	content, err := os.ReadFile(filepath.Join(out, "2024", "pyfbsdk.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "class FBModel(FBComponent):")
	assert.Contains(t, string(content), "def Add(a: int, b: int) -> int:")
}

func TestCheck(t *testing.T) {
	dir, snapshot := workspace(t)
	out := filepath.Join(dir, "stubs")
	args := generateArgs(snapshot, out)

	err := execute(t, testCommand("check", runCheck, BindGenerateFlags), args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	require.NoError(t, execute(t, testCommand("fbstubs", RunGenerate, BindGenerateFlags), args...))
	require.NoError(t, execute(t, testCommand("check", runCheck, BindGenerateFlags), args...))

	path := filepath.Join(out, "2024", "pyfbsdk.pyi")
	require.NoError(t, os.WriteFile(path, []byte("from __future__ import annotations\n# edited\n"), 0o644))

	err = execute(t, testCommand("check", runCheck, BindGenerateFlags), args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is stale (first difference at line 2)")
}

func TestLoadConfigRejectsBadOverride(t *testing.T) {
	workspace(t)

	cmd := testCommand("fbstubs", RunGenerate, BindGenerateFlags)
	err := execute(t, cmd, "--cache-backend", "redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command-line override")
}

func TestLoadConfigMarksFlags(t *testing.T) {
	workspace(t)

	var loaded *am.Loaded
	cmd := testCommand("fbstubs", func(cmd *cobra.Command, args []string) error {
		var err error
		loaded, err = loadConfig(cmd)
		return err
	}, BindGenerateFlags)
	require.NoError(t, execute(t, cmd, "--no-docs", "--output", "elsewhere"))

	assert.False(t, loaded.Config.Docs.Enabled)
	assert.Equal(t, "elsewhere", loaded.Config.Output.Dir)
	assert.Equal(t, am.SourceFlag, loaded.Sources["docs.enabled"].Source)
	assert.Equal(t, "--output", loaded.Sources["output.dir"].Path)
	_, marked := loaded.Sources["cache.backend"]
	assert.False(t, marked)
}

func TestConfigInitAndSet(t *testing.T) {
	dir, _ := workspace(t)

	bindInit := func(cmd *cobra.Command) {
		cmd.Flags().BoolVarP(&configForce, "force", "f", false, "")
		cmd.Flags().BoolVar(&configUser, "user", false, "")
	}
	bindSet := func(cmd *cobra.Command) {
		cmd.Flags().BoolVar(&configUser, "user", false, "")
	}

	require.NoError(t, execute(t, testCommand("init [path]", runConfigInit, bindInit)))
	path := filepath.Join(dir, am.ProjectConfigFile)
	require.FileExists(t, path)

	err := execute(t, testCommand("init [path]", runConfigInit, bindInit))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, execute(t, testCommand("set <key> <value>", runConfigSet, bindSet), "docs.concurrency", "8"))

	cfg, err := am.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Docs.Concurrency)
	assert.Equal(t, "pyfbsdk.yaml", cfg.Module.Snapshot)

	err = execute(t, testCommand("set <key> <value>", runConfigSet, bindSet), "docs.nope", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration key")
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		a, b string
		line int
		diff bool
	}{
		{"a\nb\n", "a\nb\n", 0, false},
		{"a\nb\n", "a\nc\n", 2, true},
		{"a\n", "a", 2, true},
		{"", "x", 1, true},
	}

	for _, tt := range tests {
		line, diff := firstDifference(tt.a, tt.b)
		assert.Equal(t, tt.diff, diff, "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.line, line, "%q vs %q", tt.a, tt.b)
	}
}

func TestCacheLocation(t *testing.T) {
	assert.Equal(t, "/var/cache/fb", cacheLocation(am.CacheBackendFS, "/var/cache/fb"))
	assert.Equal(t, filepath.Join("/var/cache/fb", "cache.db"), cacheLocation(am.CacheBackendSQLite, "/var/cache/fb"))
	assert.NotEmpty(t, cacheLocation(am.CacheBackendFS, ""))
}
