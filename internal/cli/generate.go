package cli

import (
	"encoding/json"
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/mwiater/ellipse/internal/experiment"
	"github.com/spf13/cobra"
)

var generateSummary bool

// generateCmd averages one experiment's delay and throughput series.
var generateCmd = &cobra.Command{
	Use:   "generate <scenario_name> <tcp_name> <expt_num> <direction>",
	Short: "Write the ellipse input rows for one experiment",
	Long: `Read <tcp>_qdel<dir>.dat and <tcp>_throughput<dir>.dat from
<outputRoot>/<scenario>/EXPT-<n>/, average both series per bucket and write
<tcp>_result<dir>.dat next to them.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, experimentFromArgs(args), generateSummary)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateSummary, "summary", false, "print the run summary as JSON")
	rootCmd.AddCommand(generateCmd)
}

func experimentFromArgs(args []string) experiment.Experiment {
	return experiment.Experiment{
		Scenario:  args[0],
		TCP:       args[1],
		Number:    args[2],
		Direction: args[3],
	}
}

func runGenerate(cmd *cobra.Command, e experiment.Experiment, summary bool) error {
	cfg := GetConfig()
	res, err := experiment.Generate(cfg.OutputRootPath(), e, cfg.AveragerOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	status := out
	if summary {
		status = cmd.ErrOrStderr()
	}
	fmt.Fprintf(status, "Wrote %d rows to %s\n", res.Rows, res.Paths.Result)

	if summary {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("unable to marshal summary: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}
	if DebugEnabled() {
		pp.Fprintln(status, res.Summary)
	}
	return nil
}
