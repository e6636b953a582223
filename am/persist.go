package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/fbstubs/errors"
)

// backupCount is how many rotated copies (.back1 .. .back3) are kept
const backupCount = 3

// DefaultConfig returns the built-in defaults as a Config.
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always unmarshal
		panic(err)
	}
	return cfg
}

// WriteConfig writes cfg as TOML to path. An existing file is only replaced
// when force is set, after rotating backups.
func WriteConfig(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.WithHint(
				errors.Newf("%s already exists", path),
				"use --force to overwrite it (a .back1 copy is kept)",
			)
		}
		if err := createBackup(path); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfigFile(path, data)
}

// SetValue updates one dotted key in the TOML file at path, creating the file
// and intermediate tables as needed. Other content is preserved.
func SetValue(path, key string, value interface{}) error {
	if _, ok := knownKeys()[key]; !ok {
		return errors.Newf("unknown configuration key %q", key)
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", path)
		}
		if err := createBackup(path); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	parts := strings.Split(key, ".")
	table := config
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			table[part] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfigFile(path, data)
}

func knownKeys() map[string]bool {
	v := viper.New()
	SetDefaults(v)
	keys := make(map[string]bool)
	for _, k := range v.AllKeys() {
		keys[k] = true
	}
	return keys
}

func writeConfigFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup rotates backups (.back1 newest) before a config file is modified
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	oldest := backupPath(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", oldest)
	}
	for i := backupCount - 1; i >= 1; i-- {
		from := backupPath(configPath, i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupPath(configPath, i+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", from)
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupPath(configPath string, n int) string {
	return configPath + ".back" + strconv.Itoa(n)
}

// ParseValue converts a command-line value to the TOML type it denotes:
// bool, integer, float, else string.
func ParseValue(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
