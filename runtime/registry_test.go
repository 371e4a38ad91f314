package runtime

import (
	"couple-chat/domain"
	"couple-chat/errors"
	"couple-chat/projection"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomMembership_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	membership := NewRoomMembership(slog.Default(), 0)
	roomID := domain.RoomID("room42")
	sink := projection.NewTimeline("conn-a")

	// Given no connection joined any room
	req.Equal(0, membership.Len())

	// When a connection joins a room
	req.NoError(membership.Subscribe("conn-a", roomID, sink))

	// Then the room has one member, visible to anyone but itself
	req.Equal(1, membership.Len())
	req.Equal(1, membership.Count(roomID))
	req.Len(membership.GetSinksForRoom(roomID, "conn-b"), 1)
	req.Contains(membership.GetSinksForRoom(roomID, "conn-b"), sink)
	req.Empty(membership.GetSinksForRoom(roomID, "conn-a"))
}

func TestRoomMembership_Subscribe_IsIdempotent(t *testing.T) {
	req := require.New(t)
	membership := NewRoomMembership(slog.Default(), 2)
	sink := projection.NewTimeline("conn-a")

	req.NoError(membership.Subscribe("conn-a", "room42", sink))
	req.NoError(membership.Subscribe("conn-a", "room42", sink))
	req.NoError(membership.Subscribe("conn-a", "room42", sink))

	req.Equal(1, membership.Count("room42"))
	req.Len(membership.GetSinksForRoom("room42", ""), 1)
}

func TestRoomMembership_Subscribe_RoomFull(t *testing.T) {
	req := require.New(t)
	membership := NewRoomMembership(slog.Default(), 2)

	req.NoError(membership.Subscribe("conn-a", "room42", projection.NewTimeline("conn-a")))
	req.NoError(membership.Subscribe("conn-b", "room42", projection.NewTimeline("conn-b")))

	// A third connection is refused, members already in can rejoin
	err := membership.Subscribe("conn-c", "room42", projection.NewTimeline("conn-c"))
	req.ErrorIs(err, errors.ErrRoomFull)
	req.NoError(membership.Subscribe("conn-a", "room42", projection.NewTimeline("conn-a")))
	req.Equal(2, membership.Count("room42"))

	// And the refused connection holds no membership
	req.Empty(membership.UnsubscribeAll("conn-c"))
	req.Len(membership.GetSinksForRoom("room42", ""), 2)
}

func TestRoomMembership_UnsubscribeAll(t *testing.T) {
	req := require.New(t)
	membership := NewRoomMembership(slog.Default(), 0)
	sinkA := projection.NewTimeline("conn-a")
	sinkB := projection.NewTimeline("conn-b")

	// Given conn-a joined two rooms and shares one with conn-b
	req.NoError(membership.Subscribe("conn-a", "room42", sinkA))
	req.NoError(membership.Subscribe("conn-a", "room7", sinkA))
	req.NoError(membership.Subscribe("conn-b", "room42", sinkB))

	// When conn-a goes away
	left := membership.UnsubscribeAll("conn-a")

	// Then it left both rooms and the empty one is gone
	req.ElementsMatch([]domain.RoomID{"room42", "room7"}, left)
	req.Equal(1, membership.Len())
	req.Equal(0, membership.Count("room7"))
	req.Nil(membership.GetSinksForRoom("room7", ""))
	req.Equal([]any{sinkB}, toAny(membership.GetSinksForRoom("room42", "")))

	// And a second call is harmless
	req.Empty(membership.UnsubscribeAll("conn-a"))
}

func toAny[T any](items []T) []any {
	res := make([]any, 0, len(items))
	for _, item := range items {
		res = append(res, item)
	}
	return res
}
