package runtime

import (
	"couple-chat/contract"
	"couple-chat/domain"
	"couple-chat/errors"
	"log/slog"
	"sync"
)

type Set[K comparable] map[K]struct{}

// RoomMembership knows which connections are joined to which rooms and
// holds the sink of every joined connection.
type RoomMembership struct {
	mu              sync.RWMutex
	log             *slog.Logger
	maxMembers      int
	sessions        map[domain.ConnectionID]contract.EventSink // map connection -> Sink
	roomMembers     map[domain.RoomID]Set[domain.ConnectionID] // map room to connections
	connectionRooms map[domain.ConnectionID]Set[domain.RoomID] // reverse index used on disconnect
}

var _ contract.IRoomMembership = (*RoomMembership)(nil)

// NewRoomMembership builds an empty membership. A maxMembers of zero or less
// means rooms are unbounded.
func NewRoomMembership(log *slog.Logger, maxMembers int) *RoomMembership {
	return &RoomMembership{
		log:             log,
		maxMembers:      maxMembers,
		sessions:        make(map[domain.ConnectionID]contract.EventSink),
		roomMembers:     make(map[domain.RoomID]Set[domain.ConnectionID]),
		connectionRooms: make(map[domain.ConnectionID]Set[domain.RoomID]),
	}
}

// GetSinksForRoom retrieves the sinks of every connection joined to the room,
// leaving out the except connection. It performs a two-step lookup:
// 1. Identifies connection IDs associated with the room via roomMembers.
// 2. Resolves those IDs into actual EventSinks using the sessions map.
// Returns nil if the room doesn't exist or has no other members.
func (r *RoomMembership) GetSinksForRoom(roomID domain.RoomID, except domain.ConnectionID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connectionID := range members {
		if connectionID == except {
			continue
		}
		if sink, exists := r.sessions[connectionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe joins a connection to a room. Joining twice is a no-op.
// If the room does not yet exist, it is initialized on the fly.
func (r *RoomMembership) Subscribe(connectionID domain.ConnectionID, roomID domain.RoomID, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		members = make(Set[domain.ConnectionID])
		r.roomMembers[roomID] = members
	}
	if _, joined := members[connectionID]; !joined && r.maxMembers > 0 && len(members) >= r.maxMembers {
		return errors.ErrRoomFull
	}

	r.sessions[connectionID] = sink
	members[connectionID] = struct{}{}

	rooms, ok := r.connectionRooms[connectionID]
	if !ok {
		rooms = make(Set[domain.RoomID])
		r.connectionRooms[connectionID] = rooms
	}
	rooms[roomID] = struct{}{}
	return nil
}

// UnsubscribeAll removes the connection from every room it joined and
// returns those rooms. It ensures no empty sets are left in the room map
// to prevent memory leaks over time.
func (r *RoomMembership) UnsubscribeAll(connectionID domain.ConnectionID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connectionID)

	var left []domain.RoomID
	for roomID := range r.connectionRooms[connectionID] {
		left = append(left, roomID)
		if members, ok := r.roomMembers[roomID]; ok {
			delete(members, connectionID)

			// If no one is left in the room, remove the room entry entirely
			if len(members) == 0 {
				delete(r.roomMembers, roomID)
			}
		}
	}
	delete(r.connectionRooms, connectionID)
	return left
}

// Count returns the number of connections joined to the room.
func (r *RoomMembership) Count(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers[roomID])
}

// Len returns the number of rooms with at least one member.
func (r *RoomMembership) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers)
}
