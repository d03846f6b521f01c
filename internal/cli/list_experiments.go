package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ellipse/internal/experiment"
	"github.com/spf13/cobra"
)

var scenarioStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)

// experimentsCmd lists the experiments batch would process.
var experimentsCmd = &cobra.Command{
	Use:   "experiments <scenario_name>",
	Short: "List experiments with both delay and throughput series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := GetConfig().OutputRootPath()
		exps, err := experiment.Discover(root, args[0], experiment.Filter{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, scenarioStyle.Render(args[0]+":"))
		for _, e := range exps {
			fmt.Fprintf(out, "  >>> EXPT-%s %s dir=%s\n", e.Number, e.TCP, e.Direction)
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(experimentsCmd)
}
