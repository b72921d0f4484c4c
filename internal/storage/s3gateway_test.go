package storage_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketwatch/bucketwatch/internal/inspect"
	"github.com/bucketwatch/bucketwatch/internal/storage"
)

const testBucket = "bucketwatch-test"

// testGateway returns an S3Gateway connected to a test MinIO instance.
// It skips the test if S3_ENDPOINT is not set (so plain `go test` stays
// fast), and recreates the test bucket with the given objects.
func testGateway(t *testing.T, objects map[string][]byte) *storage.S3Gateway {
	t.Helper()

	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_ENDPOINT not set, skipping integration test")
	}
	accessKey := os.Getenv("S3_KEY")
	if accessKey == "" {
		t.Skip("S3_KEY not set, skipping integration test")
	}
	secretKey := os.Getenv("S3_SECRET")
	if secretKey == "" {
		t.Skip("S3_SECRET not set, skipping integration test")
	}

	ctx := context.Background()

	// Raw client for test setup — the gateway itself is list-only.
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
	})
	require.NoError(t, err)

	exists, err := client.BucketExists(ctx, testBucket)
	require.NoError(t, err)
	if exists {
		for obj := range client.ListObjects(ctx, testBucket, minio.ListObjectsOptions{Recursive: true}) {
			require.NoError(t, obj.Err)
			require.NoError(t, client.RemoveObject(ctx, testBucket, obj.Key, minio.RemoveObjectOptions{}))
		}
	} else {
		require.NoError(t, client.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{}))
	}

	for key, content := range objects {
		_, err := client.PutObject(ctx, testBucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
		require.NoError(t, err)
	}

	gw, err := storage.NewS3Gateway(storage.S3Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
	require.NoError(t, err)
	return gw
}

func TestS3Gateway_List(t *testing.T) {
	gw := testGateway(t, map[string][]byte{
		"daily/a.tar": []byte("aaaa"),
		"daily/b.tar": []byte("bb"),
	})

	objects, err := gw.List(context.Background(), testBucket)
	require.NoError(t, err)
	require.Len(t, objects, 2)

	byKey := make(map[string]inspect.ObjectSummary)
	for _, o := range objects {
		byKey[o.Key] = o
		assert.False(t, o.LastModified.IsZero())
	}
	assert.Equal(t, int64(4), byKey["daily/a.tar"].SizeBytes)
	assert.Equal(t, int64(2), byKey["daily/b.tar"].SizeBytes)
}

func TestS3Gateway_ListEmptyBucket_ReturnsEmptySlice(t *testing.T) {
	gw := testGateway(t, nil)

	objects, err := gw.List(context.Background(), testBucket)
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Len(t, objects, 0)
}

func TestS3Gateway_ListMissingBucket_BucketNotFound(t *testing.T) {
	gw := testGateway(t, nil)

	_, err := gw.List(context.Background(), "bucketwatch-does-not-exist")
	require.Error(t, err)
	assert.True(t, inspect.IsBucketNotFound(err))
}

func TestS3Gateway_ListTimeout_StorageUnavailable(t *testing.T) {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_ENDPOINT not set, skipping integration test")
	}

	gw, err := storage.NewS3Gateway(storage.S3Config{
		Endpoint:    endpoint,
		AccessKey:   os.Getenv("S3_KEY"),
		SecretKey:   os.Getenv("S3_SECRET"),
		ListTimeout: time.Nanosecond,
	})
	require.NoError(t, err)

	_, err = gw.List(context.Background(), testBucket)
	require.Error(t, err)
	assert.True(t, inspect.IsStorageUnavailable(err))
}
