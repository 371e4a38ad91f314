//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../../mocks/mock_message_index.go -package=mocks
package search

import (
	"context"
	"couple-chat/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
)

const (
	fieldRoomID    = "room_id"
	fieldSenderID  = "sender_id"
	fieldContent   = "content"
	fieldImageURL  = "image_url"
	fieldCreatedAt = "created_at"

	DefaultLimit = 20
)

// IMessageIndex is a full-text index over message contents.
// Badger stays the source of truth; the index can be rebuilt from it.
type IMessageIndex interface {
	Index(roomID domain.RoomID, message domain.Message) error
	Remove(roomID domain.RoomID, senderID domain.UserID, createdAt time.Time) error
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error)
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (i *MessageIndex) Index(roomID domain.RoomID, message domain.Message) error {
	doc := bluge.NewDocument(DocumentID(roomID, message.SenderID, message.CreatedAt)).
		AddField(bluge.NewKeywordField(fieldRoomID, string(roomID)).StoreValue()).
		AddField(bluge.NewKeywordField(fieldSenderID, string(message.SenderID)).StoreValue()).
		AddField(bluge.NewTextField(fieldContent, message.Content).StoreValue()).
		AddField(bluge.NewKeywordField(fieldImageURL, message.ImageURL).StoreValue()).
		AddField(bluge.NewDateTimeField(fieldCreatedAt, message.CreatedAt).StoreValue())

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("failed to index message: %w", err)
	}
	return nil
}

func (i *MessageIndex) Remove(roomID domain.RoomID, senderID domain.UserID, createdAt time.Time) error {
	if err := i.writer.Delete(bluge.Identifier(DocumentID(roomID, senderID, createdAt))); err != nil {
		return fmt.Errorf("failed to remove indexed message: %w", err)
	}
	return nil
}

// Search returns the best matches for the query terms inside one room, oldest first.
func (i *MessageIndex) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Message, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(string(q.Room)).SetField(fieldRoomID)).
		AddMust(bluge.NewMatchQuery(q.Terms).SetField(fieldContent))
	if q.Sender != "" {
		query.AddMust(bluge.NewTermQuery(string(q.Sender)).SetField(fieldSenderID))
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	var messages []domain.Message
	match, err := matches.Next()
	for err == nil && match != nil {
		var message domain.Message
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldSenderID:
				message.SenderID = domain.UserID(value)
			case fieldContent:
				message.Content = string(value)
			case fieldImageURL:
				message.ImageURL = string(value)
			case fieldCreatedAt:
				message.CreatedAt, visitErr = bluge.DecodeDateTime(value)
			}
			return visitErr == nil
		})
		if err == nil {
			err = visitErr
		}
		if err != nil {
			break
		}
		messages = append(messages, message)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	domain.SortMessages(messages)
	return messages, nil
}

// DocumentID is stable for a given message so re-indexing replaces it.
func DocumentID(roomID domain.RoomID, senderID domain.UserID, createdAt time.Time) string {
	return fmt.Sprintf("%s|%s|%d", roomID, senderID, createdAt.UnixNano())
}
