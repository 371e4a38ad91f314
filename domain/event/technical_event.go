package event

import (
	"couple-chat/domain"
	"time"
)

type Type string

const (
	MessageDeliveredType    Type = "MESSAGE_DELIVERED"
	SendFailedType          Type = "SEND_FAILED"
	SendDroppedType         Type = "SEND_DROPPED"
	PersistLatencyType      Type = "PERSIST_LATENCY"
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
)

// Event is a technical event flowing through the telemetry channel.
// It never reaches clients.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type MessageDelivered struct {
	Room       domain.RoomID
	SenderID   domain.UserID
	Recipients int
}

type SendFailed struct {
	Room     domain.RoomID
	SenderID domain.UserID
	Reason   string
}

type SendDropped struct {
	Room   domain.RoomID
	Reason string
}

type PersistLatency struct {
	Room     domain.RoomID
	Duration time.Duration
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}
