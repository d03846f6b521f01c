// Package experiment maps evaluation runs onto the on-disk layout of the
// TCP evaluation suite and drives the averager over them.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/ellipse/internal/ellipse"
	"github.com/mwiater/ellipse/internal/logging"
	"github.com/mwiater/ellipse/internal/series"
)

// DefaultRoot is the directory the simulation scenarios write into.
const DefaultRoot = "tcp-eval-output"

// Experiment identifies one (scenario, tcp, experiment, direction) run.
type Experiment struct {
	Scenario  string `json:"scenario"`
	TCP       string `json:"tcp"`
	Number    string `json:"expt"`
	Direction string `json:"direction"`
}

func (e Experiment) String() string {
	return fmt.Sprintf("%s/EXPT-%s/%s dir=%s", e.Scenario, e.Number, e.TCP, e.Direction)
}

// Paths holds the files belonging to one experiment.
type Paths struct {
	Delay      string `json:"delay"`
	Throughput string `json:"throughput"`
	Result     string `json:"result"`
}

// Dir returns <root>/<scenario>/EXPT-<n>.
func (e Experiment) Dir(root string) string {
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, e.Scenario, "EXPT-"+e.Number)
}

// Paths derives the delay, throughput and result file names under root.
func (e Experiment) Paths(root string) Paths {
	dir := e.Dir(root)
	return Paths{
		Delay:      filepath.Join(dir, e.TCP+"_qdel"+e.Direction+".dat"),
		Throughput: filepath.Join(dir, e.TCP+"_throughput"+e.Direction+".dat"),
		Result:     filepath.Join(dir, e.TCP+"_result"+e.Direction+".dat"),
	}
}

// Result reports a finished run.
type Result struct {
	Experiment Experiment      `json:"experiment"`
	Paths      Paths           `json:"paths"`
	Summary    ellipse.Summary `json:"summary"`
	Rows       int             `json:"rows"`
}

// Generate averages one experiment and writes its result file. Both inputs
// and the output are opened up front; the output is truncated even if the
// inputs turn out to be malformed. Rows written before a failing bucket stay
// in the file.
func Generate(root string, e Experiment, opts ellipse.Options) (res Result, err error) {
	res = Result{Experiment: e, Paths: e.Paths(root)}
	logging.LogRun("start", e.Scenario, e.TCP, e.Number, e.Direction, res.Paths)

	defer func() {
		if err != nil {
			logging.LogRun("failed", e.Scenario, e.TCP, e.Number, e.Direction, err)
		}
	}()

	delayFile, err := os.Open(res.Paths.Delay)
	if err != nil {
		return res, fmt.Errorf("open delay series: %w", err)
	}
	defer delayFile.Close()

	tputFile, err := os.Open(res.Paths.Throughput)
	if err != nil {
		return res, fmt.Errorf("open throughput series: %w", err)
	}
	defer tputFile.Close()

	out, err := os.Create(res.Paths.Result)
	if err != nil {
		return res, fmt.Errorf("create result file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close result file: %w", cerr)
		}
	}()

	delay, err := series.Read(delayFile, res.Paths.Delay)
	if err != nil {
		return res, err
	}
	tput, err := series.Read(tputFile, res.Paths.Throughput)
	if err != nil {
		return res, err
	}

	w := ellipse.NewWriter(out)
	summary, runErr := ellipse.Run(delay, tput, opts, w.Write)
	res.Summary = summary
	res.Rows = w.Rows()
	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("write %s: %w", res.Paths.Result, err)
	}
	if runErr != nil {
		return res, runErr
	}

	logging.LogRun("done", e.Scenario, e.TCP, e.Number, e.Direction, summary)
	return res, nil
}
