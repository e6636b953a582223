// Package am holds fbstubs configuration: which module snapshot to read, where
// the vendor reference lives, how fetched pages are cached and where stubs
// are written.
//
// Precedence (lowest to highest): built-in defaults < ~/.fbstubs/am.toml <
// project fbstubs.toml (or --config) < FBSTUBS_* environment variables.
package am

// Config represents the fbstubs configuration
type Config struct {
	Module ModuleConfig `mapstructure:"module" toml:"module"`
	Docs   DocsConfig   `mapstructure:"docs" toml:"docs"`
	Cache  CacheConfig  `mapstructure:"cache" toml:"cache"`
	Output OutputConfig `mapstructure:"output" toml:"output"`
}

// ModuleConfig locates the module snapshot
type ModuleConfig struct {
	Snapshot string `mapstructure:"snapshot" toml:"snapshot"`   // YAML/JSON dump written inside the host runtime
	Name     string `mapstructure:"name" toml:"name"`           // overrides the snapshot's module name (empty = keep)
	EnumBase string `mapstructure:"enum_base" toml:"enum_base"` // runtime base class marking enum-like classes
}

// DocsConfig locates the vendor HTML reference. URLs may contain {version},
// replaced by the runtime major version.
type DocsConfig struct {
	Enabled           bool    `mapstructure:"enabled" toml:"enabled"`
	TocURL            string  `mapstructure:"toc_url" toml:"toc_url"`
	BaseURL           string  `mapstructure:"base_url" toml:"base_url"`             // relative ToC links resolve against this
	ProjectPrefix     string  `mapstructure:"project_prefix" toml:"project_prefix"` // tried when an exact name is not in the ToC
	ModulePage        string  `mapstructure:"module_page" toml:"module_page"`       // ToC name or URL of the free-function page
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"` // 0 = unlimited
	Concurrency       int     `mapstructure:"concurrency" toml:"concurrency"`                 // parallel page prefetches
}

// CacheConfig selects the blob store for fetched pages
type CacheConfig struct {
	Backend string `mapstructure:"backend" toml:"backend"` // fs or sqlite
	Dir     string `mapstructure:"dir" toml:"dir"`         // empty = <tmp>/fbstubs-cache
}

// OutputConfig controls where the stub is written
type OutputConfig struct {
	Dir       string `mapstructure:"dir" toml:"dir"`             // stubs land in <dir>/<major version>/<module>.pyi
	Additions string `mapstructure:"additions" toml:"additions"` // prelude prepended verbatim
}

// Cache backends
const (
	CacheBackendFS     = "fs"
	CacheBackendSQLite = "sqlite"
)

// Configuration file locations
const (
	ProjectConfigFile = "fbstubs.toml"
	UserConfigDir     = ".fbstubs"
	UserConfigFile    = "am.toml"
	EnvPrefix         = "FBSTUBS"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
