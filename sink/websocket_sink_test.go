package sink

import (
	"context"
	"couple-chat/domain/event"
	"couple-chat/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWebsocketSink_ConsumeBuffersEvents(t *testing.T) {
	req := require.New(t)
	s := NewWebsocketSink(slog.Default(), 2)
	evt := event.MessageReceived{Room: "room42", Payload: []byte(`{"content":"hi"}`)}

	req.NoError(s.Consume(context.Background(), evt))

	select {
	case got := <-s.ConnectedUserEvent:
		req.Equal(evt, got)
	default:
		req.Fail("event should be buffered")
	}
}

func TestWebsocketSink_FullBufferRespectsDeadline(t *testing.T) {
	req := require.New(t)
	s := NewWebsocketSink(slog.Default(), 1)
	req.NoError(s.Consume(context.Background(), event.MessageReceived{Room: "room42"}))

	// Given a full buffer nobody drains
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Consume(ctx, event.MessageReceived{Room: "room42"})

	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestWebsocketSink_ClosedSinkRejects(t *testing.T) {
	req := require.New(t)
	s := NewWebsocketSink(slog.Default(), 1)

	s.Close()
	s.Close()

	req.ErrorIs(s.Consume(context.Background(), event.MessageReceived{Room: "room42"}), errors.ErrSinkClosed)
	select {
	case <-s.Done():
	default:
		req.Fail("done should be closed")
	}
}
