package cli

import (
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying configuration and results",
	Long:  `The 'show' command groups subcommands that display the effective configuration or previously written result files.`,
}

func init() {
	rootCmd.AddCommand(showCmd)
}
