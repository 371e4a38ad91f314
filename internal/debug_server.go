package internal

import (
	"couple-chat/infrastructure/storage"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type InspectRow struct {
	Key      string    `json:"key"`
	RoomID   string    `json:"room_id"`
	SenderID string    `json:"sender_id"`
	Messages int       `json:"messages"`
	Last     time.Time `json:"last,omitempty"`
	Detail   string    `json:"detail"`
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() any

// StartDebugServer exposes the raw bundles under /inspect and the latest
// monitoring snapshot under /stats. It listens in the background; the
// caller owns the returned server and shuts it down.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           DebugHandler(db, mapper, statsProvider),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Debug server stopped", "error", err)
		}
	}()
	return srv
}

func DebugHandler(db *badger.DB, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	if mapper == nil {
		mapper = BundleMapper
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = storage.BundlePrefix
		}
		rows := make([]InspectRow, 0)
		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				key := string(item.KeyCopy(nil))
				if err := item.Value(func(val []byte) error {
					rows = append(rows, mapper(key, val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, _ *http.Request) {
		if statsProvider == nil {
			writeJSON(w, map[string]any{})
			return
		}
		writeJSON(w, statsProvider())
	})

	return mux
}

// BundleMapper decodes a bundle value. Keys outside the bundle layout are
// shown raw with their size.
func BundleMapper(key string, val []byte) InspectRow {
	row := InspectRow{Key: key, Detail: "Size: " + strconv.Itoa(len(val)) + " bytes"}
	roomID, senderID, ok := storage.ParseBundleKey(key)
	if !ok {
		return row
	}
	row.RoomID, row.SenderID = string(roomID), string(senderID)

	bundle, err := storage.DecodeBundle(val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	row.Messages = len(bundle.Messages)
	if row.Messages > 0 {
		last := bundle.Messages[row.Messages-1]
		row.Last = last.CreatedAt
		row.Detail = last.Content
	}
	return row
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
