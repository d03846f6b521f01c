// Package series reads the two-column "timestamp value" sample files written
// by the TCP evaluation suite.
package series

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Sample is one line of a delay or throughput file.
type Sample struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// ParseError reports a line that could not be read as a sample.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid sample %q: %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read parses every sample from r in input order. Blank lines are skipped;
// any other line must carry at least two numeric fields. Fields past the
// second are ignored.
func Read(r io.Reader, source string) ([]Sample, error) {
	var samples []Sample

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sample, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Source: source, Line: lineNo, Text: line, Err: err}
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return samples, nil
}

// Load opens path and reads all of its samples.
func Load(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return Read(file, path)
}

func parseLine(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Sample{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("timestamp: %w", err)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("value: %w", err)
	}
	return Sample{Time: t, Value: v}, nil
}
