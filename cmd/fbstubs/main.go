package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/cmd/fbstubs/commands"
	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fbstubs",
	Short: "fbstubs - Python stub generator for native-bound scripting modules",
	Long: `fbstubs - Python stub generator for native-bound scripting modules.

Reads a snapshot of the live module, parses the signature docstrings of every
callable, enriches them from the vendor's HTML reference and writes one .pyi
file to <output>/<major version>/<module>.pyi.

Available commands:
  check   - Check that the stub on disk is up to date
  cache   - Manage the documentation page cache
  config  - Manage fbstubs configuration
  version - Show version information

Examples:
  fbstubs                                 # Generate with ./fbstubs.toml
  fbstubs --snapshot pyfbsdk.yaml --no-docs
  fbstubs --watch -v                      # Regenerate on every input change
  fbstubs check                           # Fail when the stub is stale`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	RunE: commands.RunGenerate,
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs and summaries as JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: fbstubs.toml searched upward)")

	commands.BindGenerateFlags(rootCmd)
	commands.BindWatchFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()
	if err != nil {
		commands.PrintError(err)
		os.Exit(1)
	}
}
