package http

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range: 1 microsecond to 1 hour, 3 significant figures
const (
	histogramMin     = int64(1)
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// Recorder collects call latencies into an HDR histogram. Install it with
// WithRecorder; the client records every completed call's total time.
// Recorder is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewRecorder creates an empty latency recorder
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one call latency to the histogram
func (r *Recorder) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.hist.RecordValue(d.Microseconds())
}

// Reset discards all recorded latencies
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist.Reset()
}

// Stats is a point-in-time summary of recorded latencies
type Stats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Snapshot summarizes the recorded latencies so far
func (r *Recorder) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.hist.TotalCount()
	if count == 0 {
		return Stats{}
	}

	return Stats{
		Count: count,
		Min:   time.Duration(r.hist.Min()) * time.Microsecond,
		Max:   time.Duration(r.hist.Max()) * time.Microsecond,
		Mean:  time.Duration(r.hist.Mean()) * time.Microsecond,
		P50:   time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:   time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:   time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond,
	}
}
