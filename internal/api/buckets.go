package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// NewestObject describes the most recently modified object in a bucket.
type NewestObject struct {
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
	AgeSeconds   int64     `json:"age_seconds"`
}

// FreshnessResponse is the success body for GET /buckets/{bucket}/freshness.
// Status "ok" means the check ran successfully; when no max_age is supplied
// it carries no judgement about the age.
type FreshnessResponse struct {
	Status       string       `json:"status"`
	NewestObject NewestObject `json:"newest_object"`
}

// UsageResponse is the success body for GET /buckets/{bucket}/usage.
type UsageResponse struct {
	Status string      `json:"status"`
	Bucket string      `json:"bucket"`
	Usage  BucketUsage `json:"usage"`
}

// BucketUsage holds the aggregate storage figures for one bucket.
type BucketUsage struct {
	ObjectCount        int64  `json:"object_count"`
	TotalSizeBytes     int64  `json:"total_size_bytes"`
	TotalSizeFormatted string `json:"total_size_formatted"`
}

// HandleFreshness checks the age of the newest object in a bucket.
// The optional max_age query param ("24h", "30m", "1d") turns the report
// into a pass/fail check.
func (s *Server) HandleFreshness(w http.ResponseWriter, r *http.Request) {
	bucket := strings.TrimSpace(chi.URLParam(r, "bucket"))
	if bucket == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Reason: "bucket name must not be empty"})
		return
	}
	maxAge := r.URL.Query().Get("max_age")

	res, err := s.Checker.CheckFreshness(r.Context(), bucket, maxAge)
	s.Metrics.RecordCheck(err == nil)
	if err != nil {
		LoggerFromContext(r.Context()).Warn("freshness check failed",
			"bucket", bucket, "kind", inspect.KindOf(err).String(), "error", err)
		checkErrorJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FreshnessResponse{
		Status: "ok",
		NewestObject: NewestObject{
			Key:          res.Newest.Key,
			LastModified: res.Newest.LastModified,
			AgeSeconds:   res.AgeSeconds,
		},
	})
}

// HandleUsage reports object count and total size for a bucket.
// An empty bucket is a valid zero-valued result, not a failure.
func (s *Server) HandleUsage(w http.ResponseWriter, r *http.Request) {
	bucket := strings.TrimSpace(chi.URLParam(r, "bucket"))
	if bucket == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Reason: "bucket name must not be empty"})
		return
	}

	res, err := s.Checker.CheckUsage(r.Context(), bucket)
	s.Metrics.RecordCheck(err == nil)
	if err != nil {
		LoggerFromContext(r.Context()).Warn("usage check failed",
			"bucket", bucket, "kind", inspect.KindOf(err).String(), "error", err)
		checkErrorJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UsageResponse{
		Status: "ok",
		Bucket: bucket,
		Usage: BucketUsage{
			ObjectCount:        res.ObjectCount,
			TotalSizeBytes:     res.TotalSizeBytes,
			TotalSizeFormatted: res.TotalSizeFormatted,
		},
	})
}
