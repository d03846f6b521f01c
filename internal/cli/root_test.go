package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/ellipse/internal/ellipse"
	"github.com/mwiater/ellipse/internal/experiment"
	"github.com/mwiater/ellipse/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// execute runs the root command with a throwaway config, log file and output
// root, returning stdout and stderr combined.
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	b := new(bytes.Buffer)
	err := run(t, b, b, append([]string{"--outputRoot", root}, args...)...)
	return b.String(), err
}

// run executes the root command with a missing config file and a temp log
// file unless args override them.
func run(t *testing.T, out, errOut io.Writer, args ...string) error {
	t.Helper()
	tmp := t.TempDir()
	base := []string{
		"--config", filepath.Join(tmp, "missing.json"),
		"--logFile", filepath.Join(tmp, "ellipse.log"),
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(append(base, args...))
	t.Cleanup(func() {
		_ = logging.Close()
		resetFlags()
		generateSummary = false
		batchTCP, batchDirections = nil, nil
	})

	_, err := rootCmd.ExecuteC()
	return err
}

// resetFlags puts the persistent flags back to their defaults so one test's
// overrides do not leak into the next.
func resetFlags() {
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func seed(t *testing.T, root string, e experiment.Experiment, delay, tput string) experiment.Paths {
	t.Helper()
	p := e.Paths(root)
	if err := os.MkdirAll(filepath.Dir(p.Delay), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p.Delay, []byte(delay), 0o644); err != nil {
		t.Fatalf("write delay: %v", err)
	}
	if err := os.WriteFile(p.Throughput, []byte(tput), 0o644); err != nil {
		t.Fatalf("write throughput: %v", err)
	}
	return p
}

// TestRootCmd verifies running the root command with an invalid subcommand reports an error.
func TestRootCmd(t *testing.T) {
	out, err := execute(t, t.TempDir(), "nonexistent")
	if err == nil {
		t.Error("Expected an error for a nonexistent command, but got none")
	}

	expected := "unknown command \"nonexistent\" for \"ellipse\""
	if !strings.Contains(out, expected) {
		t.Errorf("Expected output to contain '%s', but got '%s'", expected, out)
	}
}

func TestGenerateCommand(t *testing.T) {
	root := t.TempDir()
	e := experiment.Experiment{Scenario: "dumbbell", TCP: "cubic", Number: "1", Direction: "0"}
	p := seed(t, root, e, "0.01 2\n0.15 4\n", "0.01 10\n0.12 30\n")

	out, err := execute(t, root, "generate", "dumbbell", "cubic", "1", "0", "--summary")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote 2 rows to "+p.Result) {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"throughputDrained": 1`) {
		t.Fatalf("expected summary JSON, got: %s", out)
	}

	data, err := os.ReadFile(p.Result)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != "2.0 10.0\n4.0 30.0\n" {
		t.Fatalf("unexpected result file: %q", data)
	}
}

func TestGenerateCommandDropBoundarySample(t *testing.T) {
	root := t.TempDir()
	e := experiment.Experiment{Scenario: "dumbbell", TCP: "cubic", Number: "1", Direction: "0"}
	p := seed(t, root, e, "0.01 2\n0.15 4\n", "0.01 10\n0.12 30\n")

	if out, err := execute(t, root, "--dropBoundarySample", "generate", "dumbbell", "cubic", "1", "0"); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(p.Result)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != "2.0 10.0\n" {
		t.Fatalf("unexpected result file: %q", data)
	}
}

func TestGenerateCommandArgs(t *testing.T) {
	out, err := execute(t, t.TempDir(), "generate", "dumbbell", "cubic", "1")
	if err == nil {
		t.Fatal("expected an error for missing direction argument")
	}
	if !strings.Contains(out, "accepts 4 arg(s), received 3") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGenerateCommandEmptyWindow(t *testing.T) {
	root := t.TempDir()
	e := experiment.Experiment{Scenario: "dumbbell", TCP: "reno", Number: "2", Direction: "1"}
	seed(t, root, e, "0.01 1\n0.21 2\n", "0.5 10\n")

	out, err := execute(t, root, "generate", "dumbbell", "reno", "2", "1")
	if err == nil {
		t.Fatal("expected empty window error")
	}
	if !strings.Contains(out, ellipse.ErrEmptyWindow.Error()) {
		t.Fatalf("expected error in output, got: %s", out)
	}
}

func TestBatchCommand(t *testing.T) {
	root := t.TempDir()
	seed(t, root, experiment.Experiment{Scenario: "s", TCP: "cubic", Number: "1", Direction: "0"}, "0.01 1\n", "0.01 5\n")
	seed(t, root, experiment.Experiment{Scenario: "s", TCP: "reno", Number: "1", Direction: "0"}, "0.01 1\n0.3 1\n", "0.9 5\n")

	out, err := execute(t, root, "batch", "s")
	if err == nil {
		t.Fatal("expected batch to report the failing experiment")
	}
	for _, want := range []string{"OK s/EXPT-1/cubic dir=0 (1 rows)", "FAIL s/EXPT-1/reno dir=0", "1 of 2 experiments written"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got: %s", want, out)
		}
	}

	out, err = execute(t, root, "batch", "s", "--tcp", "cubic")
	if err != nil {
		t.Fatalf("filtered batch failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 of 1 experiments written") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestBatchCommandNoExperiments(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := execute(t, root, "batch", "empty"); err == nil || !strings.Contains(err.Error(), "no experiments found") {
		t.Fatalf("expected no experiments error, got %v", err)
	}
}

func TestShowResultCommand(t *testing.T) {
	root := t.TempDir()
	e := experiment.Experiment{Scenario: "s", TCP: "cubic", Number: "1", Direction: "0"}
	p := e.Paths(root)
	if err := os.MkdirAll(filepath.Dir(p.Result), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p.Result, []byte("2.0 10.0\n4.0 30.5\n"), 0o644); err != nil {
		t.Fatalf("write result: %v", err)
	}

	out, err := execute(t, root, "show", "result", "s", "cubic", "1", "0")
	if err != nil {
		t.Fatalf("show result failed: %v\n%s", err, out)
	}
	for _, want := range []string{"s/EXPT-1/cubic dir=0", "avg delay", "30.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestShowConfigCommand(t *testing.T) {
	root := t.TempDir()
	out, err := execute(t, root, "show", "config", "--bucketsPerSecond", "20")
	if err != nil {
		t.Fatalf("show config failed: %v", err)
	}
	if !strings.Contains(out, "Buckets Per Second:   20") {
		t.Fatalf("expected flag override in output, got: %s", out)
	}
	if !strings.Contains(out, "Output Root:          "+root) {
		t.Fatalf("expected output root in output, got: %s", out)
	}
}

func TestConfigFileValidation(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"bucketsPerSecond": "ten"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := execute(t, tmp, "--config", cfgPath, "show", "config")
	if err == nil || !strings.Contains(err.Error(), "config failed validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderRows(t *testing.T) {
	got := renderRows([]ellipse.Row{{Delay: 2, Throughput: 10}, {Delay: 4, Throughput: 30}})
	for _, want := range []string{"avg throughput", "2.0", "10.0", "30.0"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in table, got:\n%s", want, got)
		}
	}
}

func TestListCommands(t *testing.T) {
	var b bytes.Buffer
	runListCommands(&b, rootCmd)
	out := b.String()
	for _, want := range []string{"ellipse generate", "ellipse batch", "ellipse show result", "ellipse list experiments"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in command list, got:\n%s", want, out)
		}
	}
}

func TestGenerateSummaryKeepsStdoutJSON(t *testing.T) {
	root := t.TempDir()
	e := experiment.Experiment{Scenario: "dumbbell", TCP: "cubic", Number: "1", Direction: "0"}
	seed(t, root, e, "0.01 2\n0.15 4\n", "0.01 10\n0.12 30\n")

	var stdout, stderr bytes.Buffer
	if err := run(t, &stdout, &stderr, "--outputRoot", root, "generate", "dumbbell", "cubic", "1", "0", "--summary"); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr.String())
	}

	var res experiment.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("stdout is not a JSON summary: %v\n%s", err, stdout.String())
	}
	if res.Rows != 2 || res.Summary.Buckets != 2 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if !strings.Contains(stderr.String(), "Wrote 2 rows") {
		t.Fatalf("expected status line on stderr, got: %s", stderr.String())
	}
}

func TestLegacyConfigFallback(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "ellipse.json"), []byte(`{"outputRoot": "legacy-out", "bucketsPerSecond": 20}`), 0o644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}
	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write empty config: %v", err)
	}

	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldCwd)
		viper.SetConfigFile(empty)
		_ = viper.ReadInConfig()
	})

	var out bytes.Buffer
	if err := run(t, &out, &out, "--config", "config/config.json", "show", "config"); err != nil {
		t.Fatalf("show config failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Config file: ellipse.json", "Output Root:          legacy-out", "Buckets Per Second:   20"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output, got: %s", want, out.String())
		}
	}
}
