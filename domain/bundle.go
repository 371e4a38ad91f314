package domain

import (
	"sort"
	"time"
)

// BundleEntry is one message inside a bundle. The sender and the room
// are carried by the bundle itself.
type BundleEntry struct {
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// Bundle is the persistent aggregate of every message a sender posted in a room.
// There is at most one bundle per (room, sender) pair.
type Bundle struct {
	RoomID   RoomID
	SenderID UserID
	Messages []BundleEntry
}

func NewBundle(roomID RoomID, senderID UserID, first BundleEntry) Bundle {
	return Bundle{
		RoomID:   roomID,
		SenderID: senderID,
		Messages: []BundleEntry{first},
	}
}

func EntryFromMessage(m Message) BundleEntry {
	return BundleEntry{
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
}

// Append keeps insertion order, duplicates included.
func (b *Bundle) Append(entry BundleEntry) {
	b.Messages = append(b.Messages, entry)
}

// Remove deletes the first entry created at exactly createdAt.
func (b *Bundle) Remove(createdAt time.Time) bool {
	for i, m := range b.Messages {
		if m.CreatedAt.Equal(createdAt) {
			b.Messages = append(b.Messages[:i], b.Messages[i+1:]...)
			return true
		}
	}
	return false
}

func (b Bundle) IsEmpty() bool {
	return len(b.Messages) == 0
}

// ToMessages expands the bundle back into standalone messages, in insertion order.
func (b Bundle) ToMessages() []Message {
	messages := make([]Message, 0, len(b.Messages))
	for _, e := range b.Messages {
		messages = append(messages, Message{
			Content:   e.Content,
			ImageURL:  e.ImageURL,
			SenderID:  b.SenderID,
			CreatedAt: e.CreatedAt,
		})
	}
	return messages
}

// SortMessages orders messages by creation time. Ties keep their relative order.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
