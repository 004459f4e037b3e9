package store

import "errors"

// Failure taxonomy of the content store. Operations wrap these sentinels so
// callers can classify with errors.Is; every failure is terminal for the
// triggering call and nothing is retried internally.
var (
	// ErrNotFound covers absent posts, comments, replies, and users.
	// Malformed identifiers are reported as not found, not as a format error.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is authenticated but is not the owner.
	ErrForbidden = errors.New("forbidden")

	// ErrPermissionDenied means a subscriber-gated feature was attempted by
	// a non-subscriber.
	ErrPermissionDenied = errors.New("subscription required")

	// ErrConflict means a uniqueness rule was violated, e.g. a second rating
	// on the same post by the same user.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument means the request itself is malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthenticated means the caller presented no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUpload surfaces a blob store failure as-is.
	ErrUpload = errors.New("upload failed")

	// ErrVerification surfaces a payment verifier failure as-is.
	ErrVerification = errors.New("verification failed")
)
