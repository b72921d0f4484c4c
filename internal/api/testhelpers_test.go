package api_test

import (
	"context"
	"time"

	"github.com/bucketwatch/bucketwatch/internal/api"
	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// testNow is the fixed clock used by the handler tests.
var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// memoryLister is an in-memory object lister backing a real inspector, so
// handler tests exercise the actual check semantics end to end.
type memoryLister struct {
	objects map[string][]inspect.ObjectSummary
	err     error
}

func (m *memoryLister) List(_ context.Context, bucket string) ([]inspect.ObjectSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.objects[bucket], nil
}

// newTestServer builds a Server whose checker sees the given listing.
func newTestServer(lister *memoryLister) *api.Server {
	return &api.Server{
		Checker: inspect.NewWithClock(lister, func() time.Time { return testNow }),
		Metrics: api.NewMetrics(),
	}
}

func object(key string, age time.Duration, size int64) inspect.ObjectSummary {
	return inspect.ObjectSummary{
		Key:          key,
		LastModified: testNow.Add(-age),
		SizeBytes:    size,
	}
}

// mockHealthChecker implements api.HealthChecker for readiness tests.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(_ context.Context) error {
	return m.err
}
