package sink

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain/event"
	"couple-chat/errors"
	"log/slog"
	"sync"
)

// WebsocketSink is the outbound buffer of one websocket connection.
// The fanout pushes events in; the connection's writer drains them.
type WebsocketSink struct {
	log                *slog.Logger
	ConnectedUserEvent chan event.DomainEvent
	done               chan struct{}
	once               sync.Once
}

var _ contract.EventSink = (*WebsocketSink)(nil)

func NewWebsocketSink(log *slog.Logger, bufferSize int) *WebsocketSink {
	return &WebsocketSink{
		log:                log,
		ConnectedUserEvent: make(chan event.DomainEvent, bufferSize),
		done:               make(chan struct{}),
	}
}

// Consume is called by fanout
// Redirect the event through the concerned owner of the channel
// The websocket writer will take it from now
func (s *WebsocketSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.ConnectedUserEvent <- e:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		s.log.Warn("Backpressure on connection, event not delivered", "room_id", e.RoomID(), "buffered", len(s.ConnectedUserEvent))
		return ctx.Err()
	}
}

// Done is closed once the sink stops accepting events.
func (s *WebsocketSink) Done() <-chan struct{} {
	return s.done
}

// Close is safe to call more than once. The event channel is left open
// so a concurrent Consume can never panic.
func (s *WebsocketSink) Close() {
	s.once.Do(func() { close(s.done) })
}
