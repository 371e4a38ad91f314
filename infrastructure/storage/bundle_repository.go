//go:generate go run go.uber.org/mock/mockgen -source=bundle_repository.go -destination=../../mocks/mock_bundle_repository.go -package=mocks
package storage

import (
	"context"
	"couple-chat/domain"
	"couple-chat/projection"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const BundlePrefix = "bundle:"

// IBundleRepository stores one bundle per (room, sender) pair.
type IBundleRepository interface {
	AppendOrCreate(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, entry domain.BundleEntry) (domain.Bundle, error)
	ListBundles(ctx context.Context, roomID domain.RoomID) ([]domain.Bundle, error)
	ListByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, createdAt time.Time) (bool, error)
}

// DiskBundle is the JSON document stored under a bundle key.
type DiskBundle struct {
	RoomID   string      `json:"roomId"`
	SenderID string      `json:"sender_id"`
	Messages []DiskEntry `json:"messages"`
}

type DiskEntry struct {
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BundleRepository struct {
	db    *badger.DB
	log   *slog.Logger
	locks *KeyedMutex
}

func NewBundleRepository(db *badger.DB, log *slog.Logger) *BundleRepository {
	return &BundleRepository{
		db:    db,
		log:   log,
		locks: NewKeyedMutex(),
	}
}

// AppendOrCreate appends entry to the sender's bundle in the room, creating
// the bundle on first use. Calls for the same pair are serialized so two
// concurrent first messages can never produce two bundles.
func (r *BundleRepository) AppendOrCreate(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, entry domain.BundleEntry) (domain.Bundle, error) {
	key := BundleKey(roomID, senderID)
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, err
	}

	var bundle domain.Bundle
	err := r.db.Update(func(txn *badger.Txn) error {
		current, err := getBundle(txn, []byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			bundle = domain.NewBundle(roomID, senderID, entry)
			r.log.Debug("Creating chat bundle", "room_id", roomID, "user_id", senderID)
		case err != nil:
			return err
		default:
			bundle = current
			bundle.Append(entry)
		}
		return setBundle(txn, []byte(key), bundle)
	})
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("failed to store bundle %s: %w", key, err)
	}
	return bundle, nil
}

// ListBundles returns every bundle of the room, one per sender.
func (r *BundleRepository) ListBundles(ctx context.Context, roomID domain.RoomID) ([]domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var bundles []domain.Bundle
	prefix := []byte(RoomPrefix(roomID))

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				bundle, err := DecodeBundle(v)
				if err != nil {
					return err
				}
				bundles = append(bundles, bundle)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during bundle scan: %w", err)
	}
	return bundles, nil
}

// ListByRoom returns the room history as individual messages, oldest first.
func (r *BundleRepository) ListByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	bundles, err := r.ListBundles(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return projection.Flatten(bundles), nil
}

// DeleteMessage removes the entry created at exactly createdAt.
// A bundle left without entries is deleted.
func (r *BundleRepository) DeleteMessage(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, createdAt time.Time) (bool, error) {
	key := BundleKey(roomID, senderID)
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	removed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		bundle, err := getBundle(txn, []byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if removed = bundle.Remove(createdAt); !removed {
			return nil
		}
		if bundle.IsEmpty() {
			r.log.Debug("Deleting empty chat bundle", "room_id", roomID, "user_id", senderID)
			return txn.Delete([]byte(key))
		}
		return setBundle(txn, []byte(key), bundle)
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete message from %s: %w", key, err)
	}
	return removed, nil
}

// BundleKey escapes both ids so a ':' inside a room id cannot leak into
// another room's prefix.
func BundleKey(roomID domain.RoomID, senderID domain.UserID) string {
	return RoomPrefix(roomID) + url.QueryEscape(string(senderID))
}

func RoomPrefix(roomID domain.RoomID) string {
	return BundlePrefix + url.QueryEscape(string(roomID)) + ":"
}

// ParseBundleKey is the inverse of BundleKey.
func ParseBundleKey(key string) (domain.RoomID, domain.UserID, bool) {
	parts := strings.Split(strings.TrimPrefix(key, BundlePrefix), ":")
	if !strings.HasPrefix(key, BundlePrefix) || len(parts) != 2 {
		return "", "", false
	}
	room, err := url.QueryUnescape(parts[0])
	if err != nil {
		return "", "", false
	}
	sender, err := url.QueryUnescape(parts[1])
	if err != nil {
		return "", "", false
	}
	return domain.RoomID(room), domain.UserID(sender), true
}

func DecodeBundle(v []byte) (domain.Bundle, error) {
	var disk DiskBundle
	if err := json.Unmarshal(v, &disk); err != nil {
		return domain.Bundle{}, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}
	return fromDiskBundle(disk), nil
}

func getBundle(txn *badger.Txn, key []byte) (domain.Bundle, error) {
	item, err := txn.Get(key)
	if err != nil {
		return domain.Bundle{}, err
	}
	var bundle domain.Bundle
	err = item.Value(func(v []byte) error {
		bundle, err = DecodeBundle(v)
		return err
	})
	return bundle, err
}

func setBundle(txn *badger.Txn, key []byte, bundle domain.Bundle) error {
	data, err := json.Marshal(toDiskBundle(bundle))
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return txn.Set(key, data)
}

func fromDiskBundle(d DiskBundle) domain.Bundle {
	entries := make([]domain.BundleEntry, 0, len(d.Messages))
	for _, m := range d.Messages {
		entries = append(entries, domain.BundleEntry{
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			CreatedAt: m.CreatedAt,
		})
	}
	return domain.Bundle{
		RoomID:   domain.RoomID(d.RoomID),
		SenderID: domain.UserID(d.SenderID),
		Messages: entries,
	}
}

func toDiskBundle(b domain.Bundle) DiskBundle {
	entries := make([]DiskEntry, 0, len(b.Messages))
	for _, m := range b.Messages {
		entries = append(entries, DiskEntry{
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			CreatedAt: m.CreatedAt,
		})
	}
	return DiskBundle{
		RoomID:   string(b.RoomID),
		SenderID: string(b.SenderID),
		Messages: entries,
	}
}
