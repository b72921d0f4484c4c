// Package watch runs the configured bucket probes on a cron schedule.
// It runs as a background goroutine inside bucketwatchd, logging each
// probe's outcome and feeding the check counters; results are never cached
// or served by the HTTP check endpoints.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bucketwatch/bucketwatch/internal/api"
	"github.com/bucketwatch/bucketwatch/internal/config"
	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// probeTimeout bounds one bucket's freshness + usage probe pair.
const probeTimeout = 60 * time.Second

// Watcher fires the configured probes whenever the cron schedule is due.
type Watcher struct {
	checker api.BucketChecker
	probes  []config.Probe
	sched   cron.Schedule
	metrics *api.Metrics
	now     func() time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Watcher from the watch config block. The cron expression is
// the standard five-field form (minute hour dom month dow).
func New(checker api.BucketChecker, cfg *config.WatchConfig, metrics *api.Metrics) (*Watcher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse watch schedule %q: %w", cfg.Schedule, err)
	}
	return &Watcher{
		checker: checker,
		probes:  cfg.Probes,
		sched:   sched,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start begins the background probe goroutine.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		for {
			next := w.sched.Next(w.now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

// Stop cancels the background goroutine and waits for it to finish.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
}

// RunOnce runs every configured probe once. Each bucket gets a freshness
// check (against its max_age, when set) and a usage check; failures are
// logged and counted but never abort the remaining probes.
func (w *Watcher) RunOnce(ctx context.Context) {
	for _, p := range w.probes {
		if ctx.Err() != nil {
			return
		}
		w.probe(ctx, p)
	}
}

func (w *Watcher) probe(ctx context.Context, p config.Probe) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	fres, err := w.checker.CheckFreshness(ctx, p.Bucket, p.MaxAge)
	w.metrics.RecordCheck(err == nil)
	if err != nil {
		slog.Error("watch: freshness probe failed",
			"bucket", p.Bucket, "kind", inspect.KindOf(err).String(), "error", err)
	} else {
		slog.Info("watch: freshness probe ok",
			"bucket", p.Bucket, "newest_key", fres.Newest.Key, "age_seconds", fres.AgeSeconds)
	}

	ures, err := w.checker.CheckUsage(ctx, p.Bucket)
	w.metrics.RecordCheck(err == nil)
	if err != nil {
		slog.Error("watch: usage probe failed",
			"bucket", p.Bucket, "kind", inspect.KindOf(err).String(), "error", err)
	} else {
		slog.Info("watch: usage probe ok",
			"bucket", p.Bucket, "object_count", ures.ObjectCount, "total_size", ures.TotalSizeFormatted)
	}
}
