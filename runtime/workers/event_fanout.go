package workers

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"log/slog"
	"time"
)

// EventFanout delivers a domain event to every sink joined to the event's
// room, except the connection it came from.
//
// Delivery is best-effort: a slow or closed sink is skipped after
// sinkTimeout and never blocks the others for longer than that.
// Sinks are served one after another so a room sees events in the order
// they were fanned out.
type EventFanout struct {
	log         *slog.Logger
	membership  contract.IRoomMembership
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, membership contract.IRoomMembership, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, membership: membership, sinkTimeout: sinkTimeout}
}

// Fanout returns how many sinks accepted the event.
func (w EventFanout) Fanout(ctx context.Context, evt event.DomainEvent, origin domain.ConnectionID) int {
	delivered := 0
	for _, sink := range w.membership.GetSinksForRoom(evt.RoomID(), origin) {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		err := sink.Consume(sinkCtx, evt)
		cancel()
		if err != nil {
			w.log.Warn("Sink did not accept event", "room_id", evt.RoomID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}
