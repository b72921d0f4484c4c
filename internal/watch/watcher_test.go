package watch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketwatch/bucketwatch/internal/api"
	"github.com/bucketwatch/bucketwatch/internal/config"
	"github.com/bucketwatch/bucketwatch/internal/inspect"
	"github.com/bucketwatch/bucketwatch/internal/watch"
)

// recordingChecker records which buckets were probed.
type recordingChecker struct {
	mu        sync.Mutex
	freshness []string
	usage     []string
	err       error
}

func (c *recordingChecker) CheckFreshness(_ context.Context, bucket, _ string) (*inspect.FreshnessResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freshness = append(c.freshness, bucket)
	if c.err != nil {
		return nil, c.err
	}
	return &inspect.FreshnessResult{
		Newest:     inspect.ObjectSummary{Key: "latest", LastModified: time.Now()},
		AgeSeconds: 1,
	}, nil
}

func (c *recordingChecker) CheckUsage(_ context.Context, bucket string) (*inspect.UsageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = append(c.usage, bucket)
	if c.err != nil {
		return nil, c.err
	}
	return &inspect.UsageResult{ObjectCount: 1, TotalSizeBytes: 10, TotalSizeFormatted: "10 B"}, nil
}

func TestNew_InvalidSchedule_Fails(t *testing.T) {
	_, err := watch.New(&recordingChecker{}, &config.WatchConfig{
		Schedule: "not a cron expression",
		Probes:   []config.Probe{{Bucket: "backups"}},
	}, api.NewMetrics())
	require.Error(t, err)
}

func TestRunOnce_ProbesEveryBucket(t *testing.T) {
	checker := &recordingChecker{}
	w, err := watch.New(checker, &config.WatchConfig{
		Schedule: "*/5 * * * *",
		Probes: []config.Probe{
			{Bucket: "backups", MaxAge: "24h"},
			{Bucket: "exports"},
		},
	}, api.NewMetrics())
	require.NoError(t, err)

	w.RunOnce(context.Background())

	assert.Equal(t, []string{"backups", "exports"}, checker.freshness)
	assert.Equal(t, []string{"backups", "exports"}, checker.usage)
}

func TestRunOnce_CountsOutcomesIntoMetrics(t *testing.T) {
	metrics := api.NewMetrics()
	checker := &recordingChecker{
		err: inspect.NewError(inspect.KindStorageUnavailable, "backups", "unreachable", nil),
	}
	w, err := watch.New(checker, &config.WatchConfig{
		Schedule: "*/5 * * * *",
		Probes:   []config.Probe{{Bucket: "backups"}},
	}, metrics)
	require.NoError(t, err)

	w.RunOnce(context.Background())

	// One freshness probe + one usage probe, both failed.
	assert.Equal(t, int64(2), metrics.ChecksTotal())
	assert.Equal(t, int64(2), metrics.CheckFailures())
}

func TestRunOnce_FailureDoesNotAbortRemainingProbes(t *testing.T) {
	checker := &recordingChecker{
		err: inspect.NewError(inspect.KindBucketNotFound, "backups", "not found", nil),
	}
	w, err := watch.New(checker, &config.WatchConfig{
		Schedule: "0 * * * *",
		Probes: []config.Probe{
			{Bucket: "backups"},
			{Bucket: "exports"},
		},
	}, api.NewMetrics())
	require.NoError(t, err)

	w.RunOnce(context.Background())

	assert.Equal(t, []string{"backups", "exports"}, checker.freshness)
}

func TestStartStop_TerminatesCleanly(t *testing.T) {
	w, err := watch.New(&recordingChecker{}, &config.WatchConfig{
		Schedule: "0 0 1 1 *", // far in the future; the loop just waits
		Probes:   []config.Probe{{Bucket: "backups"}},
	}, api.NewMetrics())
	require.NoError(t, err)

	w.Start(context.Background())
	w.Stop() // must not hang
}
