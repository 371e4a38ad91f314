package workers

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"couple-chat/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Fanout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockMembership := mocks.NewMockIRoomMembership(ctrl)
	mockSink1 := mocks.NewMockEventSink(ctrl)
	mockSink2 := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockMembership, time.Second)
	evt := event.MessageReceived{Room: "room42", Origin: "conn-a", Payload: []byte(`{"content":"hi"}`)}

	// Given two other members joined the room
	mockMembership.EXPECT().
		GetSinksForRoom(domain.RoomID("room42"), domain.ConnectionID("conn-a")).
		Return([]contract.EventSink{mockSink1, mockSink2}).
		Times(1)
	// Then each sink consumes the event once
	mockSink1.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	mockSink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	// When the event is fanned out
	delivered := fanout.Fanout(context.Background(), evt, "conn-a")

	req.Equal(2, delivered)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockMembership := mocks.NewMockIRoomMembership(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, mockMembership, sinkTimeout)
	evt := event.MessageReceived{Room: "room42", Origin: "conn-a"}

	mockMembership.EXPECT().
		GetSinksForRoom(gomock.Any(), gomock.Any()).
		Return([]contract.EventSink{slowSink, fastSink}).
		Times(1)
	// Given a sink that never accepts the event
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).
		Times(1)
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	start := time.Now()
	delivered := fanout.Fanout(context.Background(), evt, "conn-a")

	// Then the slow sink is skipped and the other one still gets the event
	req.Equal(1, delivered)
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_EmptyRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockMembership := mocks.NewMockIRoomMembership(ctrl)
	mockMembership.EXPECT().GetSinksForRoom(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout := NewEventFanout(slog.Default(), mockMembership, time.Second)

	require.Equal(t, 0, fanout.Fanout(context.Background(), event.MessageReceived{Room: "room42"}, "conn-a"))
}
