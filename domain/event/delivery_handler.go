package event

import (
	"couple-chat/errors"
	"log/slog"
	"sync"
)

// DeliveryHandler counts the outcome of every send_message.
// It is triggered once per message, whether it was delivered, failed
// to persist or dropped by validation.
type DeliveryHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewDeliveryHandler(log *slog.Logger, counter *Counter) *DeliveryHandler {
	return &DeliveryHandler{log: log, counter: counter}
}

func (p *DeliveryHandler) Handle(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Type {
	case MessageDeliveredType:
		payload, ok := event.Payload.(MessageDelivered)
		if !ok {
			p.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		p.counter.Increment(MessageDeliveredType)
		if payload.Recipients == 0 {
			p.log.Debug("Message stored without online recipient", "room_id", payload.Room, "user_id", payload.SenderID)
		}
	case SendFailedType:
		payload, ok := event.Payload.(SendFailed)
		if !ok {
			p.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		p.counter.Increment(SendFailedType)
		p.log.Warn("Message not delivered", "room_id", payload.Room, "user_id", payload.SenderID, "reason", payload.Reason)
	case SendDroppedType:
		if _, ok := event.Payload.(SendDropped); !ok {
			p.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		p.counter.Increment(SendDroppedType)
	}
}
