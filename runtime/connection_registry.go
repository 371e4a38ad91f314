package runtime

import (
	"couple-chat/contract"
	"couple-chat/domain"
	"log/slog"
	"sync"
)

// ConnectionRegistry maps each user to the connection currently serving them.
// A user has at most one entry; registering again from another connection
// replaces it.
type ConnectionRegistry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	connections map[domain.UserID]domain.ConnectionID
}

var _ contract.IConnectionRegistry = (*ConnectionRegistry)(nil)

func NewConnectionRegistry(log *slog.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		log:         log,
		connections: make(map[domain.UserID]domain.ConnectionID),
	}
}

// Register links userID to connectionID and reports whether the mapping changed.
func (r *ConnectionRegistry) Register(userID domain.UserID, connectionID domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.connections[userID]
	if ok && previous == connectionID {
		return false
	}
	r.connections[userID] = connectionID
	if ok {
		r.log.Info("User moved to a new connection", "user_id", userID, "connection_id", connectionID, "previous_connection_id", previous)
	} else {
		r.log.Info("User registered", "user_id", userID, "connection_id", connectionID)
	}
	return true
}

func (r *ConnectionRegistry) Lookup(userID domain.UserID) (domain.ConnectionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connectionID, ok := r.connections[userID]
	return connectionID, ok
}

// RemoveByConnection drops every user mapped to connectionID.
// A user who already moved to another connection is left alone.
func (r *ConnectionRegistry) RemoveByConnection(connectionID domain.ConnectionID) []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []domain.UserID
	for userID, current := range r.connections {
		if current != connectionID {
			continue
		}
		delete(r.connections, userID)
		removed = append(removed, userID)
		r.log.Info("User unregistered", "user_id", userID, "connection_id", connectionID)
	}
	return removed
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
