package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/fatih/color"
	"github.com/mwiater/ellipse/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	batchTCP        []string
	batchDirections []string
)

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
)

// batchCmd runs generate for every experiment found under a scenario.
var batchCmd = &cobra.Command{
	Use:   "batch <scenario_name>",
	Short: "Write ellipse input rows for every experiment of a scenario",
	Long: `Scan <outputRoot>/<scenario>/EXPT-*/ for delay series that have a matching
throughput series and write a result file for each. Failing experiments are
reported and skipped; the command exits non-zero if any failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		root := cfg.OutputRootPath()
		filter := experiment.Filter{TCP: batchTCP, Directions: batchDirections}

		exps, err := experiment.Discover(root, args[0], filter)
		if err != nil {
			return err
		}
		if len(exps) == 0 {
			return fmt.Errorf("no experiments found for scenario %q under %s", args[0], root)
		}

		out := cmd.OutOrStdout()
		report := newBatchReporter(out, len(exps))
		err = experiment.Batch(cmd.Context(), root, exps, cfg.AveragerOptions(), report.line)
		fmt.Fprintf(out, "%d of %d experiments written\n", report.ok, len(exps))
		return err
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchTCP, "tcp", nil, "only process these tcp names")
	batchCmd.Flags().StringSliceVar(&batchDirections, "direction", nil, "only process these directions")
	rootCmd.AddCommand(batchCmd)
}

// batchReporter prints one status line per experiment behind a progress bar.
type batchReporter struct {
	out   io.Writer
	total int
	ok    int
	bar   progress.Model
}

func newBatchReporter(out io.Writer, total int) *batchReporter {
	return &batchReporter{
		out:   out,
		total: total,
		bar:   progress.New(progress.WithWidth(24), progress.WithoutPercentage()),
	}
}

func (r *batchReporter) line(i int, res experiment.Result, err error) {
	bar := r.bar.ViewAs(float64(i+1) / float64(r.total))
	if err != nil {
		fmt.Fprintf(r.out, "%s %s %s: %v\n", bar, failLabel("FAIL"), res.Experiment, err)
		return
	}
	r.ok++
	fmt.Fprintf(r.out, "%s %s %s (%d rows)\n", bar, okLabel("OK"), res.Experiment, res.Rows)
}
