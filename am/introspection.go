package am

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceUser        ConfigSource = "user"        // ~/.fbstubs/am.toml
	SourceProject     ConfigSource = "project"     // fbstubs.toml found upward from cwd
	SourceExplicit    ConfigSource = "explicit"    // --config
	SourceEnvironment ConfigSource = "environment" // FBSTUBS_* env vars
	SourceFlag        ConfigSource = "flag"        // command-line override
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // File path, environment variable or flag name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// Settings lists every effective setting, sorted by key, with its source.
func (l *Loaded) Settings() []SettingInfo {
	return settingsWithSources(l.Viper, l.Sources)
}

// MarkFlag records that a command-line flag overrode key.
func (l *Loaded) MarkFlag(key, flag string) {
	l.Sources[key] = SourceInfo{Source: SourceFlag, Path: "--" + flag}
}

// EnvVar returns the environment variable overriding key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func settingsWithSources(v *viper.Viper, sourceMap map[string]SourceInfo) []SettingInfo {
	// Sort keys for deterministic iteration
	keys := v.AllKeys()
	sort.Strings(keys)

	settings := make([]SettingInfo, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sourceMap[key]; ok {
			info = si
		}

		// Environment overrides files, flags override everything
		if info.Source != SourceFlag {
			if env := EnvVar(key); os.Getenv(env) != "" {
				info = SourceInfo{Source: SourceEnvironment, Path: env}
			}
		}

		settings = append(settings, SettingInfo{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
