package observability

import (
	"couple-chat/domain/event"
	"couple-chat/mocks"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMonitoringManager_Refresh(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIConnectionRegistry(ctrl)
	membership := mocks.NewMockIRoomMembership(ctrl)
	counter := event.NewCounter()

	// Given two connected users in one room and three delivered messages
	registry.EXPECT().Len().Return(2)
	membership.EXPECT().Len().Return(1)
	counter.Increment(event.MessageDeliveredType)
	counter.Increment(event.MessageDeliveredType)
	counter.Increment(event.MessageDeliveredType)
	counter.Increment(event.SendFailedType)

	mm := NewMonitoringManager(slog.Default(), time.Second, registry, membership, counter)

	// When the snapshot is refreshed
	mm.Refresh()

	// Then it reflects the chat state
	stats := mm.GetLatest()
	req.Equal(2, stats.Connections)
	req.Equal(1, stats.Rooms)
	req.Equal(uint64(3), stats.Delivered)
	req.Equal(uint64(1), stats.Failed)
	req.Equal(uint64(0), stats.Dropped)
	req.NotEmpty(stats.UpdatedAt)
	req.Positive(stats.NumGoroutine)
}

func TestMonitoringManager_KeepsRecentDeliveries(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mm := NewMonitoringManager(slog.Default(), time.Second,
		mocks.NewMockIConnectionRegistry(ctrl), mocks.NewMockIRoomMembership(ctrl), event.NewCounter())

	for i := 0; i < maxRecentDeliveries+5; i++ {
		mm.Handle(event.Event{
			Type:      event.MessageDeliveredType,
			CreatedAt: time.Now(),
			Payload:   event.MessageDelivered{Room: "room42", SenderID: "alice", Recipients: i},
		})
	}
	mm.Handle(event.Event{Type: event.SendFailedType, CreatedAt: time.Now(), Payload: event.SendFailed{Room: "room42", SenderID: "bob", Reason: "timeout"}})
	mm.Handle(event.Event{Type: event.ChannelCapacityType, CreatedAt: time.Now(), Payload: event.ChannelCapacity{}})

	recent := mm.GetLatest().RecentDeliveries
	req.Len(recent, maxRecentDeliveries)
	req.Equal("failed", recent[0].Status)
	req.Equal("timeout", recent[0].Reason)
	req.Equal(fmt.Sprint(maxRecentDeliveries+4), fmt.Sprint(recent[1].Recipients))
}
