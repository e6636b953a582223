package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show fbstubs version information",
	Long:  `Display version, build time, commit hash, and platform information for the fbstubs binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if logger.JSONOutput {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to format version info")
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Println(info.String())
		fmt.Printf("Platform: %s\n", info.Platform)
		fmt.Printf("Go: %s\n", info.GoVersion)
		return nil
	},
}
