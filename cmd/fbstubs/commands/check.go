package commands

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub/pipeline"
)

// CheckCmd regenerates in memory and compares with the file on disk.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the stub file on disk is up to date",
	Long: `Generate the stub without writing it and compare the result with the
existing file under the output directory.

Exits non-zero when the file is missing or differs, which makes the command
usable as a CI gate.

Examples:
  fbstubs check
  fbstubs check --no-docs --snapshot pyfbsdk-2025.yaml`,
	RunE: runCheck,
}

func init() {
	BindGenerateFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Generate(cmd.Context(), pipeline.Options{Config: loaded.Config}, logger.ComponentLogger("pipeline"))
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(res.Path)
	if os.IsNotExist(err) {
		return errors.WithHint(
			errors.Newf("%s does not exist", res.Path),
			"run fbstubs to generate it",
		)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", res.Path)
	}

	if line, ok := firstDifference(string(existing), res.Content); ok {
		return errors.WithHint(
			errors.Newf("%s is stale (first difference at line %d)", res.Path, line),
			"run fbstubs to regenerate it",
		)
	}

	pterm.Success.Printfln("%s is up to date", res.Path)
	return nil
}

// firstDifference returns the 1-based line at which a and b first differ.
func firstDifference(a, b string) (int, bool) {
	if a == b {
		return 0, false
	}
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")
	for i := 0; i < len(al) && i < len(bl); i++ {
		if al[i] != bl[i] {
			return i + 1, true
		}
	}
	return min(len(al), len(bl)) + 1, true
}
