package projection

import (
	"context"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeline_Consume_MessageReceived(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("conn-b")
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	evt1 := event.MessageReceived{
		Room:    "room42",
		Message: domain.Message{SenderID: "alice", Content: "Hello Bob", CreatedAt: at},
		Payload: []byte(`{"content":"Hello Bob"}`),
	}
	evt2 := event.MessageReceived{
		Room:    "room42",
		Message: domain.Message{SenderID: "clara", Content: "Hi Bob", CreatedAt: at.Add(time.Second)},
		Payload: []byte(`{"content":"Hi Bob"}`),
	}

	req.NoError(timeline.Consume(ctx, evt1))
	req.NoError(timeline.Consume(ctx, evt2))

	req.Len(timeline.Messages(), 2)
	req.Equal(domain.UserID("alice"), timeline.Messages()[0].SenderID)
	req.Equal(domain.UserID("clara"), timeline.Messages()[1].SenderID)
	req.Equal(`{"content":"Hi Bob"}`, string(timeline.Payloads()[1]))
}

func TestFlatten_OrdersAcrossSenders(t *testing.T) {
	req := require.New(t)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Given two bundles whose entries interleave in time
	bundles := []domain.Bundle{
		{RoomID: "room42", SenderID: "alice", Messages: []domain.BundleEntry{
			{Content: "a1", CreatedAt: t0},
			{Content: "a2", CreatedAt: t0.Add(2 * time.Minute)},
		}},
		{RoomID: "room42", SenderID: "bob", Messages: []domain.BundleEntry{
			{Content: "b1", CreatedAt: t0.Add(time.Minute)},
		}},
	}

	// When flattening
	messages := Flatten(bundles)

	// Then the history is chronological and keeps the sender of each message
	req.Len(messages, 3)
	req.Equal("a1", messages[0].Content)
	req.Equal("b1", messages[1].Content)
	req.Equal(domain.UserID("bob"), messages[1].SenderID)
	req.Equal("a2", messages[2].Content)
}

func TestFlatten_Empty(t *testing.T) {
	messages := Flatten(nil)

	require.NotNil(t, messages)
	require.Empty(t, messages)
}
