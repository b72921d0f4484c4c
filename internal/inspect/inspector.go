// Package inspect implements the bucket health checks: whether the newest
// object in a bucket is fresh enough, and how much storage the bucket uses.
// It reduces a single object listing per check and returns either a result
// or an Error from the check taxonomy; it never mutates bucket contents.
package inspect

import (
	"context"
	"fmt"
	"time"
)

// ObjectSummary describes one stored object as returned by a listing.
type ObjectSummary struct {
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
	SizeBytes    int64     `json:"size_bytes"`
}

// ObjectLister is the storage capability the inspector depends on.
// List returns every object in the bucket — implementations must exhaust
// pagination before returning, since both checks require the complete
// listing. It fails with a KindBucketNotFound or KindStorageUnavailable
// Error.
type ObjectLister interface {
	List(ctx context.Context, bucket string) ([]ObjectSummary, error)
}

// FreshnessResult reports the newest object in a bucket and its age.
type FreshnessResult struct {
	Newest     ObjectSummary
	AgeSeconds int64
}

// UsageResult reports aggregate storage usage for a bucket.
type UsageResult struct {
	ObjectCount        int64
	TotalSizeBytes     int64
	TotalSizeFormatted string
}

// Inspector runs freshness and usage checks against an ObjectLister.
// It is stateless per check and safe for concurrent use.
type Inspector struct {
	lister ObjectLister
	now    func() time.Time
}

// New creates an Inspector backed by the given lister.
func New(lister ObjectLister) *Inspector {
	return &Inspector{lister: lister, now: time.Now}
}

// NewWithClock creates an Inspector with an injected clock, for tests.
func NewWithClock(lister ObjectLister, now func() time.Time) *Inspector {
	return &Inspector{lister: lister, now: now}
}

// CheckFreshness finds the newest object in the bucket and computes its age.
// Timestamp ties are broken by the lexicographically greatest key, so the
// result is deterministic. An empty bucket is a failure (KindEmptyBucket):
// there is no newest object to report.
//
// maxAge is an optional compact duration string ("24h", "30m", "1d"). When
// empty, the check succeeds regardless of age — success means "check ran",
// not "threshold satisfied". When set, it is parsed before the listing call
// (KindInvalidDuration on malformed input), and an age above the threshold
// fails with KindStaleObject carrying the newest object and its age.
func (in *Inspector) CheckFreshness(ctx context.Context, bucket, maxAge string) (*FreshnessResult, error) {
	var threshold time.Duration
	if maxAge != "" {
		var err error
		threshold, err = ParseDuration(maxAge)
		if err != nil {
			return nil, err
		}
	}

	objects, err := in.lister.List(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, &Error{
			Kind:    KindEmptyBucket,
			Bucket:  bucket,
			Message: fmt.Sprintf("bucket %q is empty", bucket),
		}
	}

	newest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(newest.LastModified) {
			newest = obj
			continue
		}
		if obj.LastModified.Equal(newest.LastModified) && obj.Key > newest.Key {
			newest = obj
		}
	}

	// Clock skew between us and the storage backend can put LastModified in
	// the future; clamp to zero rather than report a negative age.
	ageSeconds := int64(in.now().Sub(newest.LastModified) / time.Second)
	if ageSeconds < 0 {
		ageSeconds = 0
	}

	if maxAge != "" && ageSeconds > int64(threshold/time.Second) {
		newestCopy := newest
		return nil, &Error{
			Kind:   KindStaleObject,
			Bucket: bucket,
			Message: fmt.Sprintf("newest object in bucket %q is too old (%d seconds, max age: %d seconds)",
				bucket, ageSeconds, int64(threshold/time.Second)),
			Newest:     &newestCopy,
			AgeSeconds: ageSeconds,
		}
	}

	return &FreshnessResult{Newest: newest, AgeSeconds: ageSeconds}, nil
}

// CheckUsage reduces the bucket's listing to an object count and a total
// byte size in one pass. An empty bucket is a valid zero-valued result here,
// unlike freshness.
func (in *Inspector) CheckUsage(ctx context.Context, bucket string) (*UsageResult, error) {
	objects, err := in.lister.List(ctx, bucket)
	if err != nil {
		return nil, err
	}

	var totalSize int64
	for _, obj := range objects {
		totalSize += obj.SizeBytes
	}

	return &UsageResult{
		ObjectCount:        int64(len(objects)),
		TotalSizeBytes:     totalSize,
		TotalSizeFormatted: FormatBytes(totalSize),
	}, nil
}
