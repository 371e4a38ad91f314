package storage

import (
	"context"
	"couple-chat/domain"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func setupBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBundleRepository_AppendOrCreate_CreatesThenAppends(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewBundleRepository(setupBadger(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Given a first message from alice in room42
	bundle, err := repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "hi", CreatedAt: t0})
	req.NoError(err)
	req.Len(bundle.Messages, 1)

	// When alice sends a second message
	bundle, err = repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "are you there?", CreatedAt: t0.Add(time.Minute)})
	req.NoError(err)

	// Then a single bundle holds both messages in insertion order
	req.Len(bundle.Messages, 2)
	bundles, err := repository.ListBundles(ctx, "room42")
	req.NoError(err)
	req.Len(bundles, 1)
	req.Equal(domain.UserID("alice"), bundles[0].SenderID)
	req.Equal("hi", bundles[0].Messages[0].Content)
	req.Equal("are you there?", bundles[0].Messages[1].Content)
}

func TestBundleRepository_OneBundlePerSender(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewBundleRepository(setupBadger(t), slog.Default())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "hi", CreatedAt: t0})
	req.NoError(err)
	_, err = repository.AppendOrCreate(ctx, "room42", "bob", domain.BundleEntry{Content: "hey", CreatedAt: t0.Add(time.Second)})
	req.NoError(err)
	_, err = repository.AppendOrCreate(ctx, "room7", "alice", domain.BundleEntry{Content: "other room", CreatedAt: t0})
	req.NoError(err)

	bundles, err := repository.ListBundles(ctx, "room42")
	req.NoError(err)
	req.Len(bundles, 2)

	messages, err := repository.ListByRoom(ctx, "room42")
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("hi", messages[0].Content)
	req.Equal("hey", messages[1].Content)
}

func TestBundleRepository_ConcurrentFirstMessagesShareOneBundle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewBundleRepository(setupBadger(t), slog.Default())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	const senders = 50

	// When many messages for the same pair arrive at once
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{
				Content:   fmt.Sprintf("msg %d", i),
				CreatedAt: t0.Add(time.Duration(i) * time.Second),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then no write is lost and there is still one bundle
	bundles, err := repository.ListBundles(ctx, "room42")
	req.NoError(err)
	req.Len(bundles, 1)
	req.Len(bundles[0].Messages, senders)
	req.Equal(0, repository.locks.Len())
}

func TestBundleRepository_RoomPrefixDoesNotLeak(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewBundleRepository(setupBadger(t), slog.Default())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := repository.AppendOrCreate(ctx, "room", "alice", domain.BundleEntry{Content: "a", CreatedAt: t0})
	req.NoError(err)
	_, err = repository.AppendOrCreate(ctx, "room:42", "bob", domain.BundleEntry{Content: "b", CreatedAt: t0})
	req.NoError(err)

	messages, err := repository.ListByRoom(ctx, "room")
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("a", messages[0].Content)
}

func TestBundleRepository_ListByRoom_UnknownRoomIsEmpty(t *testing.T) {
	req := require.New(t)
	repository := NewBundleRepository(setupBadger(t), slog.Default())

	messages, err := repository.ListByRoom(context.Background(), "nobody-here")

	req.NoError(err)
	req.Empty(messages)
}

func TestBundleRepository_DeleteMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewBundleRepository(setupBadger(t), slog.Default())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "one", CreatedAt: t0})
	req.NoError(err)
	_, err = repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "two", CreatedAt: t0.Add(time.Minute)})
	req.NoError(err)

	// Unknown instant or sender
	removed, err := repository.DeleteMessage(ctx, "room42", "alice", t0.Add(time.Hour))
	req.NoError(err)
	req.False(removed)
	removed, err = repository.DeleteMessage(ctx, "room42", "bob", t0)
	req.NoError(err)
	req.False(removed)

	// First entry goes, the bundle survives
	removed, err = repository.DeleteMessage(ctx, "room42", "alice", t0)
	req.NoError(err)
	req.True(removed)
	messages, err := repository.ListByRoom(ctx, "room42")
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("two", messages[0].Content)

	// Last entry goes, the bundle is removed
	removed, err = repository.DeleteMessage(ctx, "room42", "alice", t0.Add(time.Minute))
	req.NoError(err)
	req.True(removed)
	bundles, err := repository.ListBundles(ctx, "room42")
	req.NoError(err)
	req.Empty(bundles)
}

func TestBundleRepository_CanceledContext(t *testing.T) {
	req := require.New(t)
	repository := NewBundleRepository(setupBadger(t), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repository.AppendOrCreate(ctx, "room42", "alice", domain.BundleEntry{Content: "hi"})

	req.ErrorIs(err, context.Canceled)
}

func TestParseBundleKey(t *testing.T) {
	req := require.New(t)

	room, sender, ok := ParseBundleKey(BundleKey("room:42", "alice smith"))
	req.True(ok)
	req.Equal(domain.RoomID("room:42"), room)
	req.Equal(domain.UserID("alice smith"), sender)

	_, _, ok = ParseBundleKey("work:pending:1")
	req.False(ok)
}
