package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBundle_AppendKeepsInsertionOrderAndDuplicates(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Given a bundle created with one entry
	bundle := NewBundle("room42", "alice", BundleEntry{Content: "hi", CreatedAt: at})

	// When the same entry is appended again, then another
	bundle.Append(BundleEntry{Content: "hi", CreatedAt: at})
	bundle.Append(BundleEntry{ImageURL: "http://host/uploads/a.png", CreatedAt: at.Add(time.Second)})

	// Then nothing is deduplicated
	req.Len(bundle.Messages, 3)
	req.Equal("hi", bundle.Messages[1].Content)
	req.Equal("http://host/uploads/a.png", bundle.Messages[2].ImageURL)
}

func TestBundle_RemoveMatchesExactInstant(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	bundle := NewBundle("room42", "alice", BundleEntry{Content: "hi", CreatedAt: at})

	req.False(bundle.Remove(at.Add(time.Nanosecond)))
	req.True(bundle.Remove(at.In(time.FixedZone("CEST", 2*3600))))
	req.True(bundle.IsEmpty())
	req.False(bundle.Remove(at))
}

func TestBundle_ToMessagesCarriesSender(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	bundle := NewBundle("room42", "bob", BundleEntry{Content: "hey", CreatedAt: at})

	messages := bundle.ToMessages()

	req.Equal([]Message{{Content: "hey", SenderID: "bob", CreatedAt: at}}, messages)
}

func TestSortMessages_ByCreationTimeStable(t *testing.T) {
	req := require.New(t)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	messages := []Message{
		{Content: "third", CreatedAt: t0.Add(2 * time.Minute)},
		{Content: "first", CreatedAt: t0},
		{Content: "second-a", CreatedAt: t0.Add(time.Minute)},
		{Content: "second-b", CreatedAt: t0.Add(time.Minute)},
	}

	SortMessages(messages)

	req.Equal("first", messages[0].Content)
	req.Equal("second-a", messages[1].Content)
	req.Equal("second-b", messages[2].Content)
	req.Equal("third", messages[3].Content)
}
