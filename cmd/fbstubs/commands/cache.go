package commands

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/am"
	"github.com/teranos/fbstubs/cache"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub/pipeline"
)

// CacheCmd groups page cache maintenance.
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the documentation page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached documentation page",
	Long: `Remove every cached documentation page from the configured backend.

The next generation fetches the reference again.`,
	RunE: runCacheClear,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the page cache location",
	RunE:  runCachePath,
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheBackend, "cache-backend", "", "Page cache backend: fs or sqlite")
	cacheClearCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Page cache directory")
	cachePathCmd.Flags().StringVar(&cacheBackend, "cache-backend", "", "Page cache backend: fs or sqlite")
	cachePathCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Page cache directory")

	CacheCmd.AddCommand(cacheClearCmd)
	CacheCmd.AddCommand(cachePathCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := pipeline.OpenStore(loaded.Config.Cache, logger.ComponentLogger("cache"))
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Removed %d cached pages from %s", n, cacheLocation(loaded.Config.Cache.Backend, loaded.Config.Cache.Dir))
	return nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pterm.Println(cacheLocation(loaded.Config.Cache.Backend, loaded.Config.Cache.Dir))
	return nil
}

// cacheLocation names where the backend keeps its data.
func cacheLocation(backend, dir string) string {
	if dir == "" {
		dir = cache.DefaultDir()
	}
	if backend == am.CacheBackendSQLite {
		return filepath.Join(dir, cache.SQLiteFile)
	}
	return dir
}
