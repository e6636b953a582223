package am

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// isolate points HOME at an empty directory and moves into another one so
// that no real user or project config is read.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "pyfbsdk.yaml", cfg.Module.Snapshot)
	assert.Equal(t, "enum", cfg.Module.EnumBase)
	assert.True(t, cfg.Docs.Enabled)
	assert.Contains(t, cfg.Docs.TocURL, VersionPlaceholder)
	assert.Equal(t, "FB", cfg.Docs.ProjectPrefix)
	assert.Equal(t, 30, cfg.Docs.TimeoutSeconds)
	assert.Equal(t, 8.0, cfg.Docs.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Docs.Concurrency)
	assert.Equal(t, CacheBackendFS, cfg.Cache.Backend)
	assert.Equal(t, "stubs", cfg.Output.Dir)
	assert.Equal(t, "additions.py", cfg.Output.Additions)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProjectFileAndEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `
[module]
snapshot = "dump/pyfbsdk.json"

[docs]
concurrency = 2
project_prefix = "FBX"
`)
	t.Setenv("FBSTUBS_DOCS_CONCURRENCY", "6")

	loaded, err := Load("")
	require.NoError(t, err)

	cfg := loaded.Config
	assert.Equal(t, "dump/pyfbsdk.json", cfg.Module.Snapshot)
	assert.Equal(t, "FBX", cfg.Docs.ProjectPrefix)
	assert.Equal(t, 6, cfg.Docs.Concurrency, "environment wins over files")
	assert.True(t, cfg.Docs.Enabled, "unset keys keep their defaults")
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, SourceProject, loaded.Sources["docs.project_prefix"].Source)
}

func TestLoad_UserThenProject(t *testing.T) {
	dir := isolate(t)
	home := os.Getenv("HOME")
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
[cache]
backend = "sqlite"
dir = "/var/cache/fbstubs"

[output]
dir = "user-stubs"
`)
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `
[output]
dir = "project-stubs"
`)

	loaded, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, CacheBackendSQLite, loaded.Config.Cache.Backend)
	assert.Equal(t, "/var/cache/fbstubs", loaded.Config.Cache.Dir, "sibling keys of an overridden table survive")
	assert.Equal(t, "project-stubs", loaded.Config.Output.Dir)
	assert.Equal(t, SourceUser, loaded.Sources["cache.backend"].Source)
	assert.Equal(t, SourceProject, loaded.Sources["output.dir"].Source)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `[output]
dir = "ignored"
`)
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, explicit, `[output]
dir = "explicit"
`)

	loaded, err := Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "explicit", loaded.Config.Output.Dir)
	assert.Equal(t, SourceExplicit, loaded.Sources["output.dir"].Source)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `[cache]
backend = "redis"
`)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backend")
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Empty(t, FindProjectConfig(nested))

	writeFile(t, filepath.Join(root, "a", ProjectConfigFile), "")
	assert.Equal(t, filepath.Join(root, "a", ProjectConfigFile), FindProjectConfig(nested))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		errPart string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"no snapshot", func(c *Config) { c.Module.Snapshot = "" }, "module.snapshot"},
		{"no enum base", func(c *Config) { c.Module.EnumBase = "" }, "module.enum_base"},
		{"no toc url", func(c *Config) { c.Docs.TocURL = "" }, "docs.toc_url"},
		{"relative toc url", func(c *Config) { c.Docs.TocURL = "toctree.json" }, "http(s)"},
		{"docs disabled ignores urls", func(c *Config) { c.Docs = DocsConfig{} }, ""},
		{"zero timeout", func(c *Config) { c.Docs.TimeoutSeconds = 0 }, "docs.timeout_seconds"},
		{"unlimited rate", func(c *Config) { c.Docs.RequestsPerSecond = 0 }, ""},
		{"negative rate", func(c *Config) { c.Docs.RequestsPerSecond = -1 }, "docs.requests_per_second"},
		{"zero concurrency", func(c *Config) { c.Docs.Concurrency = 0 }, "docs.concurrency"},
		{"sqlite backend", func(c *Config) { c.Cache.Backend = CacheBackendSQLite }, ""},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "s3" }, "cache.backend"},
		{"no output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errPart == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestForVersion(t *testing.T) {
	d := DocsConfig{
		TocURL:     "https://docs.test/{version}/toctree.json",
		BaseURL:    "https://docs.test/{version}/",
		ModulePage: "pyfbsdk",
	}
	got := d.ForVersion("2024")

	assert.Equal(t, "https://docs.test/2024/toctree.json", got.TocURL)
	assert.Equal(t, "https://docs.test/2024/", got.BaseURL)
	assert.Equal(t, "pyfbsdk", got.ModulePage)
	assert.Contains(t, d.TocURL, VersionPlaceholder, "receiver unchanged")
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigFile)
	cfg := DefaultConfig()
	cfg.Docs.Concurrency = 9

	require.NoError(t, WriteConfig(path, cfg, false))
	back, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	err = WriteConfig(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg.Docs.Concurrency = 3
	require.NoError(t, WriteConfig(path, cfg, true))
	assert.FileExists(t, path+".back1")
	back, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Docs.Concurrency)
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigFile)
	writeFile(t, path, `[output]
dir = "keep"
`)

	require.NoError(t, SetValue(path, "docs.concurrency", ParseValue("8")))
	require.NoError(t, SetValue(path, "docs.enabled", ParseValue("false")))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Docs.Concurrency)
	assert.False(t, cfg.Docs.Enabled)
	assert.Equal(t, "keep", cfg.Output.Dir)
	assert.FileExists(t, path+".back1")
	assert.FileExists(t, path+".back2")

	err = SetValue(path, "docs.nope", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration key")
}

func TestCreateBackupRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	for i := 0; i < 5; i++ {
		writeFile(t, path, string(rune('a'+i)))
		require.NoError(t, createBackup(path))
	}

	for n, want := range map[int]string{1: "e", 2: "d", 3: "c"} {
		data, err := os.ReadFile(backupPath(path, n))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
	assert.NoFileExists(t, backupPath(path, 4))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, int64(1), ParseValue("1"))
	assert.Equal(t, 2.5, ParseValue("2.5"))
	assert.Equal(t, "sqlite", ParseValue("sqlite"))
}

func TestSettings(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `[docs]
concurrency = 2
`)
	t.Setenv("FBSTUBS_OUTPUT_DIR", "from-env")

	loaded, err := Load("")
	require.NoError(t, err)
	loaded.MarkFlag("module.snapshot", "snapshot")

	byKey := make(map[string]SettingInfo)
	var keys []string
	for _, s := range loaded.Settings() {
		byKey[s.Key] = s
		keys = append(keys, s.Key)
	}

	assert.IsIncreasing(t, keys)
	assert.Equal(t, SourceProject, byKey["docs.concurrency"].Source)
	assert.Equal(t, SourceEnvironment, byKey["output.dir"].Source)
	assert.Equal(t, "FBSTUBS_OUTPUT_DIR", byKey["output.dir"].SourcePath)
	assert.Equal(t, SourceFlag, byKey["module.snapshot"].Source)
	assert.Equal(t, SourceDefault, byKey["cache.backend"].Source)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "pyfbsdk.yaml")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, watched, "module: pyfbsdk\n")

	w, err := NewWatcher([]string{watched, ""}, 50*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { calls.Add(1) })
	}()

	writeFile(t, other, "ignored")
	writeFile(t, watched, "module: pyfbsdk\nversion: \"2024\"\n")
	writeFile(t, watched, "module: pyfbsdk\nversion: \"2025\"\n")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst coalesced into one call")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
