package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode_MapsSentinelsToWireCodes(t *testing.T) {
	req := require.New(t)

	req.Equal("", Code(nil))
	req.Equal(CodeInvalidArgument, Code(fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingRoom)))
	req.Equal(CodeInvalidArgument, Code(ErrUnsupportedMedia))
	req.Equal(CodeUnavailable, Code(fmt.Errorf("%w: disk full", ErrPersistence)))
	req.Equal(CodeDeadlineExceeded, Code(fmt.Errorf("%w: context deadline exceeded", ErrPersistenceTimeout)))
	req.Equal(CodeNotFound, Code(ErrMessageNotFound))
	req.Equal(CodePermissionDenied, Code(ErrIdentityMismatch))
	req.Equal(CodeUnauthenticated, Code(ErrUnauthenticated))
	req.Equal(CodeResourceExhausted, Code(ErrRoomFull))
	req.Equal(CodeResourceExhausted, Code(ErrFileTooLarge))
	req.Equal(CodeInternal, Code(fmt.Errorf("boom")))
}

func TestRetryable_OnlyForStorageFailures(t *testing.T) {
	req := require.New(t)

	req.True(Retryable(fmt.Errorf("%w: io", ErrPersistence)))
	req.True(Retryable(ErrPersistenceTimeout))
	req.False(Retryable(ErrEmptyPayload))
	req.False(Retryable(ErrIdentityMismatch))
}
