package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/am"
	"github.com/teranos/fbstubs/errors"
)

// Generation flags shared by the root command and check.
var (
	snapshotPath string
	noDocs       bool
	outputDir    string
	additions    string
	cacheBackend string
	cacheDir     string
)

// BindGenerateFlags adds the flags that override generation settings.
func BindGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Module snapshot file (overrides module.snapshot)")
	cmd.Flags().BoolVar(&noDocs, "no-docs", false, "Skip the HTML reference and use docstrings only")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides output.dir)")
	cmd.Flags().StringVar(&additions, "additions", "", "Prelude file prepended to the stub (overrides output.additions)")
	cmd.Flags().StringVar(&cacheBackend, "cache-backend", "", "Page cache backend: fs or sqlite")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Page cache directory")
}

// configPath returns the --config persistent flag.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// loadConfig loads the configuration and applies the generation flags that
// were set on cmd. Flag overrides are validated like file values.
func loadConfig(cmd *cobra.Command) (*am.Loaded, error) {
	loaded, err := am.Load(configPath(cmd))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag  string
		key   string
		value interface{}
	}{
		{"snapshot", "module.snapshot", snapshotPath},
		{"no-docs", "docs.enabled", !noDocs},
		{"output", "output.dir", outputDir},
		{"additions", "output.additions", additions},
		{"cache-backend", "cache.backend", cacheBackend},
		{"cache-dir", "cache.dir", cacheDir},
	}

	changed := false
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		loaded.Viper.Set(o.key, o.value)
		loaded.MarkFlag(o.key, o.flag)
		changed = true
	}
	if !changed {
		return loaded, nil
	}

	cfg, err := am.LoadWithViper(loaded.Viper)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command-line override")
	}
	loaded.Config = cfg
	return loaded, nil
}
