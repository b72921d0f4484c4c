package inspect

import (
	"errors"
	"fmt"
)

// Kind categorises a failed bucket check. Every error surfaced by the
// inspector or the storage gateway carries exactly one Kind, so the HTTP
// layer can map kinds to status codes exhaustively instead of matching on
// message strings.
type Kind int

const (
	KindUnknown            Kind = iota
	KindInvalidDuration         // malformed max_age parameter from the caller
	KindEmptyBucket             // bucket exists but contains zero objects
	KindStaleObject             // newest object is older than the allowed max age
	KindBucketNotFound          // bucket does not exist
	KindStorageUnavailable      // storage unreachable, timed out, or refused access
)

func (k Kind) String() string {
	switch k {
	case KindInvalidDuration:
		return "invalid_duration"
	case KindEmptyBucket:
		return "empty_bucket"
	case KindStaleObject:
		return "stale_object"
	case KindBucketNotFound:
		return "bucket_not_found"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by bucket checks. The gateway
// produces it for storage failures; the inspector produces it for check
// failures. For KindStaleObject, Newest and AgeSeconds preserve what the
// newest object was, so callers can still report it even though the check
// failed.
type Error struct {
	Kind       Kind
	Bucket     string
	Message    string
	Newest     *ObjectSummary // set for KindStaleObject
	AgeSeconds int64          // set for KindStaleObject
	Cause      error          // original storage-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an *Error with the given kind, bucket, message, and an
// optional underlying cause. Used by the storage gateway to surface
// BucketNotFound / StorageUnavailable in the shared taxonomy.
func NewError(kind Kind, bucket, msg string, cause error) *Error {
	return &Error{Kind: kind, Bucket: bucket, Message: msg, Cause: cause}
}

// KindOf extracts the Kind from any error in the chain.
// Returns KindUnknown for nil and for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsInvalidDuration reports whether err was caused by a malformed max_age value.
func IsInvalidDuration(err error) bool {
	return KindOf(err) == KindInvalidDuration
}

// IsEmptyBucket reports whether err means the bucket contained zero objects.
func IsEmptyBucket(err error) bool {
	return KindOf(err) == KindEmptyBucket
}

// IsStaleObject reports whether err means the newest object exceeded the max age.
func IsStaleObject(err error) bool {
	return KindOf(err) == KindStaleObject
}

// IsBucketNotFound reports whether err means the bucket does not exist.
func IsBucketNotFound(err error) bool {
	return KindOf(err) == KindBucketNotFound
}

// IsStorageUnavailable reports whether err is a connectivity, timeout, or
// access failure against the storage backend.
func IsStorageUnavailable(err error) bool {
	return KindOf(err) == KindStorageUnavailable
}
