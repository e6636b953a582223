package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/fbstubs/am"
	"github.com/teranos/fbstubs/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fbstubs configuration",
	Long: `Display and manage fbstubs configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (FBSTUBS_* prefix)
3. Project config (./fbstubs.toml, searched upward) or --config
4. User config (~/.fbstubs/am.toml)
5. Default values

Examples:
  fbstubs config show                      # Show current configuration
  fbstubs config show --format json        # Show configuration in JSON format
  fbstubs config where                     # Show where each value comes from
  fbstubs config init                      # Write ./fbstubs.toml with the defaults
  fbstubs config set docs.concurrency 8    # Change one value in ./fbstubs.toml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration merged from all sources",
	RunE:  runConfigShow,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show every setting together with the source that provided it.

Sources are the built-in defaults, the user file, the project file (or the
file given with --config), FBSTUBS_* environment variables and flags.`,
	RunE: runConfigWhere,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the defaults",
	Long: `Write the built-in defaults as TOML.

The file defaults to ./fbstubs.toml, or ~/.fbstubs/am.toml with --user.
An existing file is only replaced with --force, after keeping a backup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one value using dot notation (e.g. docs.concurrency, output.dir).

The project file is edited unless --user or --config is given. Other keys in
the file are preserved and a backup of the previous version is kept.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runConfigValidate,
}

var (
	configFormat string
	configForce  bool
	configUser   bool
)

func init() {
	// Add flags
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configUser, "user", false, "Write the user file instead of the project file")
	configSetCmd.Flags().BoolVar(&configUser, "user", false, "Edit the user file instead of the project file")

	// Add subcommands
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configSetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loaded, err := am.Load(configPath(cmd))
	if err != nil {
		return err
	}
	cfg := loaded.Config

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# fbstubs configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# fbstubs configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	loaded, err := am.Load(configPath(cmd))
	if err != nil {
		return err
	}

	if len(loaded.Files) == 0 {
		pterm.Info.Println("No configuration files found, using defaults")
	} else {
		pterm.Info.Println("Configuration files (later overrides earlier):")
		for _, f := range loaded.Files {
			pterm.Printfln("  %s", f)
		}
	}
	pterm.Println()

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range loaded.Settings() {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// targetFile picks the file init and set write to.
func targetFile(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if path := configPath(cmd); path != "" {
		return path, nil
	}
	if configUser {
		path := am.UserConfigPath()
		if path == "" {
			return "", errors.New("cannot locate the home directory")
		}
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	if path := am.FindProjectConfig(cwd); path != "" && cmd.Name() == "set" {
		return path, nil
	}
	return filepath.Join(cwd, am.ProjectConfigFile), nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := targetFile(cmd, args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := am.WriteConfig(path, am.DefaultConfig(), configForce); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := targetFile(cmd, nil)
	if err != nil {
		return err
	}
	key, value := args[0], am.ParseValue(args[1])
	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := am.SetValue(path, key, value); err != nil {
		return err
	}

	// Warn about values the generator would refuse at its next run.
	if _, err := am.Load(configPath(cmd)); err != nil {
		pterm.Warning.Printfln("%s now holds an invalid configuration: %v", path, err)
	}
	pterm.Success.Printfln("Set %s = %v in %s", key, value, path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(configPath(cmd)); err != nil {
		return err
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
