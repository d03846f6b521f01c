package cli

import (
	"github.com/spf13/cobra"
)

// listCmd groups commands that enumerate things.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing experiments and commands",
}

func init() {
	rootCmd.AddCommand(listCmd)
}
