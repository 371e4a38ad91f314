// Package projection builds local timelines from stored bundles and observed events.
// Handles ordering and flattening.
// Does not emit events or interact with transport directly.
package projection

import (
	"context"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"sync"

	"github.com/samber/lo"
)

// Flatten turns per-sender bundles into one history ordered by creation time.
// Messages created at the same instant keep the bundle iteration order.
func Flatten(bundles []domain.Bundle) []domain.Message {
	messages := lo.FlatMap(bundles, func(b domain.Bundle, _ int) []domain.Message {
		return b.ToMessages()
	})
	domain.SortMessages(messages)
	return messages
}

// Timeline holds a simple local timeline of the messages seen by one connection.
type Timeline struct {
	mu       sync.Mutex
	Owner    domain.ConnectionID
	messages []domain.Message
	payloads [][]byte
}

func NewTimeline(owner domain.ConnectionID) *Timeline {
	return &Timeline{Owner: owner}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.MessageReceived:
		t.messages = append(t.messages, evt.Message)
		t.payloads = append(t.payloads, evt.Payload)
	}
	return nil
}

func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages...)
}

// Payloads returns the raw bytes received, in arrival order.
func (t *Timeline) Payloads() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.payloads...)
}
