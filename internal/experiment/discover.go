package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mwiater/ellipse/internal/ellipse"
	"github.com/mwiater/ellipse/internal/logging"
)

const (
	exptPrefix   = "EXPT-"
	delayMarker  = "_qdel"
	datExtension = ".dat"
)

// Filter narrows discovery. Empty fields match everything.
type Filter struct {
	TCP        []string
	Directions []string
}

func (f Filter) match(e Experiment) bool {
	return matchAny(f.TCP, e.TCP) && matchAny(f.Directions, e.Direction)
}

func matchAny(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Discover lists every experiment under <root>/<scenario> that has both a
// delay and a throughput series, ordered by experiment number, tcp name and
// direction.
func Discover(root, scenario string, filter Filter) ([]Experiment, error) {
	if root == "" {
		root = DefaultRoot
	}
	scenarioDir := filepath.Join(root, scenario)
	entries, err := os.ReadDir(scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", scenarioDir, err)
	}

	var found []Experiment
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), exptPrefix) {
			continue
		}
		number := strings.TrimPrefix(entry.Name(), exptPrefix)
		files, err := os.ReadDir(filepath.Join(scenarioDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read experiment %s: %w", entry.Name(), err)
		}

		names := make(map[string]bool, len(files))
		for _, f := range files {
			if !f.IsDir() {
				names[f.Name()] = true
			}
		}

		for _, f := range files {
			tcp, dir, ok := splitDelayName(f.Name())
			if !ok || !names[tcp+"_throughput"+dir+datExtension] {
				continue
			}
			e := Experiment{Scenario: scenario, TCP: tcp, Number: number, Direction: dir}
			if filter.match(e) {
				found = append(found, e)
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.Number != b.Number {
			return lessNumber(a.Number, b.Number)
		}
		if a.TCP != b.TCP {
			return a.TCP < b.TCP
		}
		return a.Direction < b.Direction
	})
	return found, nil
}

// splitDelayName parses "<tcp>_qdel<dir>.dat".
func splitDelayName(name string) (tcp, dir string, ok bool) {
	if !strings.HasSuffix(name, datExtension) {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, datExtension)
	idx := strings.LastIndex(stem, delayMarker)
	if idx <= 0 {
		return "", "", false
	}
	return stem[:idx], stem[idx+len(delayMarker):], true
}

// lessNumber orders numeric experiment names numerically ahead of all
// non-numeric names, which compare as strings.
func lessNumber(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// Batch runs Generate for each experiment in order. Failures do not stop the
// batch; they are collected and returned together. report, when set, is
// called after every run with its index.
func Batch(ctx context.Context, root string, exps []Experiment, opts ellipse.Options, report func(int, Result, error)) error {
	logging.LogEvent("[BATCH] root=%s experiments=%d", root, len(exps))

	var merr *multierror.Error
	ok, failed := 0, 0
	for i, e := range exps {
		if err := ctx.Err(); err != nil {
			logging.LogEvent("[BATCH] stopped before %s: %v", e, err)
			merr = multierror.Append(merr, fmt.Errorf("batch stopped before %s: %w", e, err))
			break
		}
		res, err := Generate(root, e, opts)
		if report != nil {
			report(i, res, err)
		}
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", e, err))
			failed++
			continue
		}
		ok++
	}

	logging.LogEvent("[BATCH] done ok=%d failed=%d skipped=%d", ok, failed, len(exps)-ok-failed)
	return merr.ErrorOrNil()
}
