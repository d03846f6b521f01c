// Package ellipse pairs per-bucket queueing delay averages with the
// throughput measured over the same interval. The rows it produces are the
// input to the delay/throughput ellipse plots of the evaluation suite.
package ellipse

import (
	"errors"
	"fmt"
	"math"

	"github.com/mwiater/ellipse/internal/series"
)

// DefaultResolution is the number of buckets per time unit (100 ms buckets).
const DefaultResolution = 10

// ErrEmptyWindow is returned when a bucket closes without any throughput
// sample to average.
var ErrEmptyWindow = errors.New("empty throughput window")

// WindowError identifies the bucket whose throughput window was empty.
type WindowError struct {
	Bucket float64
	Final  bool
}

func (e *WindowError) Error() string {
	if e.Final {
		return fmt.Sprintf("final bucket %s: %v", FormatFloat(e.Bucket), ErrEmptyWindow)
	}
	return fmt.Sprintf("bucket %s: %v", FormatFloat(e.Bucket), ErrEmptyWindow)
}

func (e *WindowError) Unwrap() error { return ErrEmptyWindow }

// Options tunes the averager. The zero value reproduces the reference
// behavior.
type Options struct {
	// Resolution is the number of buckets per time unit. Values <= 0 use
	// DefaultResolution.
	Resolution int `json:"resolution"`
	// DropBoundarySample discards the delay sample that crosses into a new
	// bucket instead of accumulating it, as the first generation of the
	// post-processing scripts did.
	DropBoundarySample bool `json:"dropBoundarySample"`
}

func (o Options) resolution() int {
	if o.Resolution <= 0 {
		return DefaultResolution
	}
	return o.Resolution
}

// Row is one closed bucket.
type Row struct {
	Bucket            float64 `json:"bucket"`
	Delay             float64 `json:"avgDelay"`
	Throughput        float64 `json:"avgThroughput"`
	DelaySamples      int     `json:"delaySamples"`
	ThroughputSamples int     `json:"throughputSamples"`
}

// Summary describes one pass over a pair of series.
type Summary struct {
	Buckets            int `json:"buckets"`
	DelaySamples       int `json:"delaySamples"`
	DelayDropped       int `json:"delayDropped"`
	ThroughputSamples  int `json:"throughputSamples"`
	ThroughputConsumed int `json:"throughputConsumed"`
	ThroughputDrained  int `json:"throughputDrained"`
}

// BucketKey truncates t to the bucket grid: floor(t*resolution)/resolution.
func BucketKey(t float64, resolution int) float64 {
	r := float64(resolution)
	return math.Floor(t*r) / r
}

// state is the running accumulator threaded through the delay pass.
type state struct {
	bucket     float64
	delaySum   float64
	delayCount int
	tputSum    float64
	tputCount  int
	cursor     int
}

// Run walks delay once, closing a bucket each time the bucket key changes,
// and hands every closed bucket to emit in order. A bucket closed inside the
// loop takes the unconsumed throughput samples strictly before the new
// bucket's key; the last bucket takes every remaining throughput sample.
//
// Rows emitted before an error are not retracted.
func Run(delay, throughput []series.Sample, opts Options, emit func(Row) error) (Summary, error) {
	res := opts.resolution()
	sum := Summary{
		DelaySamples:      len(delay),
		ThroughputSamples: len(throughput),
	}

	var st state
	for _, sample := range delay {
		key := BucketKey(sample.Time, res)
		if key == st.bucket {
			st.addDelay(sample.Value)
			continue
		}

		if st.delayCount > 0 {
			row, n, err := st.close(throughput, key, false)
			if err != nil {
				return sum, err
			}
			sum.ThroughputConsumed += n
			sum.Buckets++
			if err := emit(row); err != nil {
				return sum, err
			}
		}

		st.bucket = key
		if opts.DropBoundarySample {
			sum.DelayDropped++
			continue
		}
		st.addDelay(sample.Value)
	}

	if st.delayCount > 0 {
		row, n, err := st.close(throughput, 0, true)
		if err != nil {
			return sum, err
		}
		sum.ThroughputDrained += n
		sum.Buckets++
		if err := emit(row); err != nil {
			return sum, err
		}
	}

	return sum, nil
}

func (st *state) addDelay(v float64) {
	st.delaySum += v
	st.delayCount++
}

// close averages the current bucket. Throughput samples are consumed from
// the cursor while their timestamp is below boundary, or all of them when
// drain is set. It returns the number of throughput samples consumed.
func (st *state) close(throughput []series.Sample, boundary float64, drain bool) (Row, int, error) {
	start := st.cursor
	for st.cursor < len(throughput) {
		s := throughput[st.cursor]
		if !drain && s.Time >= boundary {
			break
		}
		st.tputSum += s.Value
		st.tputCount++
		st.cursor++
	}

	if st.tputCount == 0 {
		return Row{}, 0, &WindowError{Bucket: st.bucket, Final: drain}
	}

	row := Row{
		Bucket:            st.bucket,
		Delay:             st.delaySum / float64(st.delayCount),
		Throughput:        st.tputSum / float64(st.tputCount),
		DelaySamples:      st.delayCount,
		ThroughputSamples: st.tputCount,
	}

	st.delaySum, st.delayCount = 0, 0
	st.tputSum, st.tputCount = 0, 0
	return row, st.cursor - start, nil
}
