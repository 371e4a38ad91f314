package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrInvalidMessage   = fmt.Errorf("invalid message")
	ErrMissingRoom      = fmt.Errorf("room id is missing")
	ErrMissingSender    = fmt.Errorf("sender id is missing")
	ErrEmptyPayload     = fmt.Errorf("message has neither content nor image")
	ErrInvalidTimestamp = fmt.Errorf("created_at is not a valid RFC3339 timestamp")
	ErrInvalidPayload   = fmt.Errorf("frame payload cannot be decoded")

	ErrPersistence        = fmt.Errorf("message persistence failed")
	ErrPersistenceTimeout = fmt.Errorf("message persistence timed out")
	ErrMessageNotFound    = fmt.Errorf("message not found")

	ErrIdentityMismatch = fmt.Errorf("user id does not match the authenticated identity")
	ErrUnauthenticated  = fmt.Errorf("missing or invalid token")
	ErrRoomFull         = fmt.Errorf("room has reached its member limit")
	ErrSinkClosed       = fmt.Errorf("sink is closed")

	ErrUnsupportedMedia = fmt.Errorf("only image uploads are accepted")
	ErrFileTooLarge     = fmt.Errorf("uploaded file exceeds the size limit")
)

// Wire codes carried by error and send_failed frames and mapped to HTTP statuses.
const (
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeUnavailable       = "UNAVAILABLE"
	CodeDeadlineExceeded  = "DEADLINE_EXCEEDED"
	CodeNotFound          = "NOT_FOUND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeResourceExhausted = "RESOURCE_EXHAUSTED"
	CodeInternal          = "INTERNAL"
)

// Code returns the wire code of err, INTERNAL when err is not one of ours.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPersistenceTimeout):
		return CodeDeadlineExceeded
	case errors.Is(err, ErrPersistence):
		return CodeUnavailable
	case errors.Is(err, ErrInvalidMessage),
		errors.Is(err, ErrMissingRoom),
		errors.Is(err, ErrMissingSender),
		errors.Is(err, ErrEmptyPayload),
		errors.Is(err, ErrInvalidTimestamp),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrUnsupportedMedia):
		return CodeInvalidArgument
	case errors.Is(err, ErrMessageNotFound):
		return CodeNotFound
	case errors.Is(err, ErrIdentityMismatch):
		return CodePermissionDenied
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrFileTooLarge):
		return CodeResourceExhausted
	default:
		return CodeInternal
	}
}

// Retryable reports whether the client may resend the same frame unchanged.
func Retryable(err error) bool {
	switch Code(err) {
	case CodeUnavailable, CodeDeadlineExceeded:
		return true
	default:
		return false
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
