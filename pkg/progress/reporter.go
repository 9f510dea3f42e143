// Package progress reports transfer progress to the log at a throttled
// interval.
package progress

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rget/rget/pkg/logging"
)

const defaultInterval = 500 * time.Millisecond

// Reporter accumulates written byte counts and periodically logs them.
// Safe for use from the transfer goroutine while the ticker goroutine
// reads.
type Reporter struct {
	total    int64
	interval time.Duration

	written   atomic.Int64
	startTime time.Time

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewReporter returns a Reporter for a transfer of total bytes; pass a
// non-positive total when the size is unknown.
func NewReporter(total int64) *Reporter {
	return &Reporter{
		total:    total,
		interval: defaultInterval,
	}
}

// Add records n more bytes written. Implements the download package's
// ProgressSink.
func (r *Reporter) Add(n int64) {
	r.written.Add(n)
}

// Start begins periodic reporting. Calling Start on a running Reporter is
// a no-op.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.startTime = time.Now()
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.loop(r.stopCh, r.doneCh)
}

// Stop halts reporting and waits for the ticker goroutine to exit.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	doneCh := r.doneCh
	r.mu.Unlock()
	<-doneCh
}

// Written returns the bytes recorded so far.
func (r *Reporter) Written() int64 {
	return r.written.Load()
}

func (r *Reporter) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	logger := logging.GetLogger()
	written := r.written.Load()
	elapsed := time.Since(r.startTime).Seconds()
	rate := "0 B/s"
	if elapsed > 0 {
		rate = fmt.Sprintf("%s/s", humanize.Bytes(uint64(float64(written)/elapsed)))
	}
	event := logger.Info().
		Str("downloaded", humanize.Bytes(uint64(written))).
		Str("rate", rate)
	if r.total > 0 {
		event = event.
			Str("total", humanize.Bytes(uint64(r.total))).
			Str("percent", fmt.Sprintf("%.1f%%", float64(written)/float64(r.total)*100))
	}
	event.Msg("Progress")
}
