package api

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
)

// Metrics counts bucket checks across the HTTP handlers and the background
// watcher. Counters only — no per-request results are retained.
type Metrics struct {
	checksTotal   atomic.Int64
	checkFailures atomic.Int64
}

// NewMetrics creates an empty Metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordCheck counts one completed bucket check.
func (m *Metrics) RecordCheck(ok bool) {
	m.checksTotal.Add(1)
	if !ok {
		m.checkFailures.Add(1)
	}
}

// ChecksTotal returns the number of checks run since process start.
func (m *Metrics) ChecksTotal() int64 { return m.checksTotal.Load() }

// CheckFailures returns the number of failed checks since process start.
func (m *Metrics) CheckFailures() int64 { return m.checkFailures.Load() }

// HandleMetrics returns application metrics in Prometheus text exposition
// format, lightweight enough to scrape without a client library.
func (s *Server) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP bucketwatchd_info Build information about bucketwatchd.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_info gauge\n")
	fmt.Fprintf(w, "bucketwatchd_info{version=%q,git_commit=%q,go_version=%q} 1\n", Version, GitCommit, runtime.Version())

	fmt.Fprintf(w, "# HELP bucketwatchd_checks_total Total number of bucket checks run.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_checks_total counter\n")
	fmt.Fprintf(w, "bucketwatchd_checks_total %d\n", s.Metrics.ChecksTotal())

	fmt.Fprintf(w, "# HELP bucketwatchd_check_failures_total Total number of failed bucket checks.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_check_failures_total counter\n")
	fmt.Fprintf(w, "bucketwatchd_check_failures_total %d\n", s.Metrics.CheckFailures())

	fmt.Fprintf(w, "# HELP bucketwatchd_goroutines Number of goroutines.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_goroutines gauge\n")
	fmt.Fprintf(w, "bucketwatchd_goroutines %d\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP bucketwatchd_memory_alloc_bytes Current memory allocation in bytes.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_memory_alloc_bytes gauge\n")
	fmt.Fprintf(w, "bucketwatchd_memory_alloc_bytes %d\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP bucketwatchd_gc_completed_total Total number of completed GC cycles.\n")
	fmt.Fprintf(w, "# TYPE bucketwatchd_gc_completed_total counter\n")
	fmt.Fprintf(w, "bucketwatchd_gc_completed_total %d\n", memStats.NumGC)
}
