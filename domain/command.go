package domain

import (
	"couple-chat/errors"
	"fmt"
	"time"
)

type Command interface {
	RoomID() RoomID
}

type RegisterCommand struct {
	ConnectionID ConnectionID
	UserID       UserID
}

type JoinCommand struct {
	ConnectionID ConnectionID
	UserID       UserID
	Room         RoomID
}

func (c JoinCommand) RoomID() RoomID {
	return c.Room
}

// SendMessageCommand carries a message along with the exact bytes the client
// sent, so recipients get the payload untouched.
type SendMessageCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
	Message      Message
	Payload      []byte
}

func (c SendMessageCommand) RoomID() RoomID {
	return c.Room
}

// Validate checks that the message can be persisted and delivered.
func (c SendMessageCommand) Validate() error {
	switch {
	case c.Room == "":
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingRoom)
	case c.Message.SenderID == "":
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingSender)
	case !c.Message.HasPayload():
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrEmptyPayload)
	}
	return nil
}

type DeleteMessageCommand struct {
	Room      RoomID
	SenderID  UserID
	CreatedAt time.Time
}

func (c DeleteMessageCommand) RoomID() RoomID {
	return c.Room
}

type GetMessagesQuery struct {
	Room RoomID
}

// SearchQuery looks for Terms in one room. Sender, when set, keeps only
// that partner's messages.
type SearchQuery struct {
	Room   RoomID
	Terms  string
	Sender UserID
	Limit  int
}
