package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/fbstubs/errors"
)

// Loaded is a resolved configuration together with where each value came from.
type Loaded struct {
	Config  *Config
	Viper   *viper.Viper
	Sources map[string]SourceInfo
	Files   []string // merged config files, lowest precedence first
}

// Load reads and validates the configuration. An explicit configPath replaces
// the project file search and must exist.
func Load(configPath string) (*Loaded, error) {
	v, sources, files, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Loaded{Config: cfg, Viper: v, Sources: sources, Files: files}, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of the
// defaults, ignoring user files and the environment
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// newViper initializes Viper with defaults, config files and environment binding
func newViper(configPath string) (*viper.Viper, map[string]SourceInfo, []string, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	var paths []sourcePath
	if dir := UserConfigPath(); dir != "" {
		paths = append(paths, sourcePath{SourceUser, dir})
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "config file %s", configPath)
		}
		paths = append(paths, sourcePath{SourceExplicit, configPath})
	} else if cwd, err := os.Getwd(); err == nil {
		if project := FindProjectConfig(cwd); project != "" {
			paths = append(paths, sourcePath{SourceProject, project})
		}
	}

	sources := make(map[string]SourceInfo)
	var files []string
	for _, p := range paths {
		if _, err := os.Stat(p.path); err != nil {
			continue
		}
		if err := mergeConfigFile(v, p, sources); err != nil {
			return nil, nil, nil, err
		}
		files = append(files, p.path)
	}
	return v, sources, files, nil
}

type sourcePath struct {
	source ConfigSource
	path   string
}

// mergeConfigFile merges one TOML file into v and records the keys it set
func mergeConfigFile(v *viper.Viper, p sourcePath, sources map[string]SourceInfo) error {
	file := viper.New()
	file.SetConfigFile(p.path)
	file.SetConfigType("toml")
	if err := file.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", p.path)
	}

	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", p.path)
	}
	for _, key := range file.AllKeys() {
		sources[key] = SourceInfo{Source: p.source, Path: p.path}
	}
	return nil
}

// UserConfigPath returns ~/.fbstubs/am.toml, or "" when there is no home directory
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// FindProjectConfig searches for fbstubs.toml by walking up from dir.
// Returns the path to the first file found, or empty string if none found
func FindProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
