package ellipse

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mwiater/ellipse/internal/series"
)

// FormatFloat renders v the way the plotting scripts expect: the shortest
// representation that round-trips, always with a fractional part in plain
// notation ("6.0"), and in exponent notation only below 1e-4 or from 1e16 up.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return e
	}

	f := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(f, ".") {
		f += ".0"
	}
	return f
}

// FormatRow returns the output line for r, without the trailing newline.
func FormatRow(r Row) string {
	return FormatFloat(r.Delay) + " " + FormatFloat(r.Throughput)
}

// Writer writes rows in the "<avg_delay> <avg_throughput>" line format.
type Writer struct {
	w    *bufio.Writer
	rows int
}

// NewWriter returns a Writer buffering into w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one row.
func (w *Writer) Write(r Row) error {
	if _, err := fmt.Fprintln(w.w, FormatRow(r)); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns how many rows have been written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// LoadRows reads a previously written result file. Bucket keys and sample
// counts are not part of the file and are left zero.
func LoadRows(path string) ([]Row, error) {
	pairs, err := series.Load(path)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, Row{Delay: p.Time, Throughput: p.Value})
	}
	return rows, nil
}
