//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the outbound side of one connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IConnectionRegistry maps user ids to the connection currently serving them.
type IConnectionRegistry interface {
	Register(userID domain.UserID, connectionID domain.ConnectionID) bool
	Lookup(userID domain.UserID) (domain.ConnectionID, bool)
	RemoveByConnection(connectionID domain.ConnectionID) []domain.UserID
	Len() int
}

// IRoomMembership tracks which connections are joined to which rooms.
type IRoomMembership interface {
	Subscribe(connectionID domain.ConnectionID, roomID domain.RoomID, sink EventSink) error
	GetSinksForRoom(roomID domain.RoomID, except domain.ConnectionID) []EventSink
	UnsubscribeAll(connectionID domain.ConnectionID) []domain.RoomID
	Count(roomID domain.RoomID) int
	Len() int
}
