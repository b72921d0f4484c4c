// Package storage implements inspect.ObjectLister backed by S3-compatible
// object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// DefaultListTimeout bounds a single complete bucket listing, including all
// pagination round-trips. A timeout surfaces as storage_unavailable rather
// than hanging the request.
const DefaultListTimeout = 30 * time.Second

// S3Config holds connection and timeout settings for the storage backend.
type S3Config struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	UseSSL    bool

	// ListTimeout is the context timeout for one complete listing call.
	// Defaults to 30s if zero.
	ListTimeout time.Duration
}

// S3Gateway lists bucket contents via MinIO / S3-compatible storage.
// It is read-only: listing is the only operation the checks require.
type S3Gateway struct {
	client      *minio.Client
	listTimeout time.Duration
}

// NewS3Gateway creates a gateway connected to the configured endpoint.
// It configures the underlying HTTP transport with connection and TLS
// timeouts, and applies a per-listing context timeout to every List call.
func NewS3Gateway(cfg S3Config) (*S3Gateway, error) {
	listTimeout := cfg.ListTimeout
	if listTimeout == 0 {
		listTimeout = DefaultListTimeout
	}

	// Custom transport with explicit dial and TLS timeouts.
	// ResponseHeaderTimeout bounds the wait for the server to start
	// replying to each listing page, not the whole listing.
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &S3Gateway{client: client, listTimeout: listTimeout}, nil
}

// List returns metadata for every object in the bucket. The minio client
// drains pagination internally, so the returned slice is the complete
// listing. Returns an empty slice (never nil) for an empty bucket; failures
// carry inspect.KindBucketNotFound or inspect.KindStorageUnavailable.
func (g *S3Gateway) List(ctx context.Context, bucket string) ([]inspect.ObjectSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, g.listTimeout)
	defer cancel()

	opts := minio.ListObjectsOptions{Recursive: true}

	objects := make([]inspect.ObjectSummary, 0)
	for obj := range g.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapListError(bucket, obj.Err)
		}
		objects = append(objects, inspect.ObjectSummary{
			Key:          obj.Key,
			LastModified: obj.LastModified,
			SizeBytes:    obj.Size,
		})
	}

	return objects, nil
}

// mapListError translates a MinIO SDK error into the check error taxonomy.
// A missing bucket is the only kind distinguished from general storage
// failure; timeouts, auth failures, and connectivity problems all mean the
// check could not run.
func mapListError(bucket string, err error) *inspect.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return inspect.NewError(inspect.KindStorageUnavailable, bucket,
			fmt.Sprintf("listing bucket %q timed out", bucket), err)
	}

	// The SDK exposes a typed ErrorResponse for S3-protocol errors.
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		if resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound {
			return inspect.NewError(inspect.KindBucketNotFound, bucket,
				fmt.Sprintf("bucket %q not found", bucket), err)
		}
	}

	return inspect.NewError(inspect.KindStorageUnavailable, bucket,
		fmt.Sprintf("error accessing bucket %q", bucket), err)
}
