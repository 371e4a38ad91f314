package server

import (
	"encoding/json"
	"time"
)

// Frame types exchanged over the websocket.
const (
	FrameRegisterUser   = "register_user"
	FrameJoinChat       = "join_chat"
	FrameSendMessage    = "send_message"
	FrameReceiveMessage = "receive_message"
	FrameSendFailed     = "send_failed"
	FrameError          = "error"
	FrameAck            = "ack"
)

const (
	AckRegistered = "registered"
	AckJoined     = "joined"
	AckDelivered  = "delivered"
)

// Frame is the envelope of every websocket message, in both directions.
type Frame struct {
	Type      string          `json:"type" validate:"required,max=32"`
	RequestID string          `json:"request_id,omitempty" validate:"max=128"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type registerPayload struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

type joinPayload struct {
	UserID string `json:"userId" validate:"max=128"`
	RoomID string `json:"roomId" validate:"required,max=128"`
}

// sendPayload keeps the message raw: receivers get exactly what was sent.
type sendPayload struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

// MessagePayload is the message shape clients exchange and history returns.
type MessagePayload struct {
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl,omitempty"`
	SenderID  string `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type AckPayload struct {
	Status string `json:"status"`
}

// withCreatedAt adds created_at to a raw message object, leaving every other
// field as the client wrote it.
func withCreatedAt(raw json.RawMessage, at time.Time) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	stamp, err := json.Marshal(at.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	fields["created_at"] = stamp
	return json.Marshal(fields)
}
