package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/am"
	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub/introspect"
	"github.com/teranos/fbstubs/stub/pipeline"
)

var (
	watch         bool
	watchDebounce time.Duration
)

// BindWatchFlags adds --watch to the generating command.
func BindWatchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Regenerate whenever the config, snapshot or additions file changes")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", am.DefaultDebounce, "Quiet period before regenerating in watch mode")
}

// RunGenerate generates the stub file and prints a summary.
func RunGenerate(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if watch {
		return watchAndGenerate(cmd, loaded)
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Options{Config: loaded.Config}, logger.ComponentLogger("pipeline"))
	if err != nil {
		return err
	}
	return printSummary(res)
}

// watchAndGenerate runs one generation, then one more per burst of input
// changes until interrupted. Failed regenerations are reported and watching
// continues.
func watchAndGenerate(cmd *cobra.Command, loaded *am.Loaded) error {
	ctx := cmd.Context()
	log := logger.ComponentLogger("watch")

	generate := func(cfg *am.Config) {
		res, err := pipeline.Run(ctx, pipeline.Options{Config: cfg}, logger.ComponentLogger("pipeline"))
		if err != nil {
			PrintError(err)
			return
		}
		if err := printSummary(res); err != nil {
			PrintError(err)
		}
	}
	generate(loaded.Config)

	paths := append([]string{}, loaded.Files...)
	if !introspect.IsRemoteSource(loaded.Config.Module.Snapshot) {
		paths = append(paths, loaded.Config.Module.Snapshot)
	}
	paths = append(paths, loaded.Config.Output.Additions)
	w, err := am.NewWatcher(paths, watchDebounce, log)
	if err != nil {
		return err
	}
	defer w.Close()

	pterm.Info.Printfln("Watching %d files, press Ctrl+C to stop", len(paths))
	err = w.Run(ctx, func() {
		reloaded, err := loadConfig(cmd)
		if err != nil {
			PrintError(err)
			return
		}
		generate(reloaded.Config)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type summary struct {
	RunID        string `json:"run_id"`
	Module       string `json:"module"`
	Version      string `json:"version"`
	Path         string `json:"path"`
	Enums        int    `json:"enums"`
	Classes      int    `json:"classes"`
	Functions    int    `json:"functions"`
	Methods      int    `json:"methods"`
	Enriched     int    `json:"enriched"`
	Undocumented int    `json:"undocumented"`
	Skipped      int    `json:"skipped"`
	Fallbacks    int    `json:"fallbacks"`
	Warnings     int64  `json:"warnings"`
	DurationMS   int64  `json:"duration_ms"`
}

func newSummary(res *pipeline.Result) summary {
	return summary{
		RunID:        res.RunID,
		Module:       res.Module,
		Version:      res.Version,
		Path:         res.Path,
		Enums:        res.Model.Enums,
		Classes:      res.Model.Classes,
		Functions:    res.Model.Functions,
		Methods:      res.Model.Methods,
		Enriched:     res.Docs.Enriched,
		Undocumented: res.Docs.Undocumented,
		Skipped:      res.Docs.Skipped,
		Fallbacks:    res.Fallbacks,
		Warnings:     logger.WarningCount(),
		DurationMS:   res.Duration.Milliseconds(),
	}
}

func printSummary(res *pipeline.Result) error {
	s := newSummary(res)

	if logger.JSONOutput {
		output, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to format summary")
		}
		fmt.Println(string(output))
		return nil
	}

	pterm.Success.Printfln("Wrote %s (%s %s)", s.Path, s.Module, s.Version)
	pterm.Printfln("  Declarations: %d enums, %d classes, %d functions, %d methods", s.Enums, s.Classes, s.Functions, s.Methods)
	pterm.Printfln("  Documentation: %d enriched, %d undocumented, %d skipped", s.Enriched, s.Undocumented, s.Skipped)
	pterm.Printfln("  Fallback signatures: %d", s.Fallbacks)
	pterm.Printfln("  Processing time: %s", res.Duration.Round(time.Millisecond))
	if s.Warnings > 0 {
		pterm.Warning.Printfln("%d warnings logged", s.Warnings)
	}
	return nil
}

// PrintError reports err on one line, followed by any hints.
func PrintError(err error) {
	pterm.Error.Println(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		pterm.Info.Println(hint)
	}
}
