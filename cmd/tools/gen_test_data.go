package main

import (
	"bytes"
	"context"
	"couple-chat/domain"
	"couple-chat/infrastructure/search"
	"couple-chat/infrastructure/storage"
	"couple-chat/internal"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

var conversation = []struct {
	sender  domain.UserID
	content string
}{
	{"alice", "Good morning ☀️"},
	{"bob", "Morning! Did you sleep well?"},
	{"alice", "Like a baby. Dinner tonight?"},
	{"bob", "Yes, the italian place at 8"},
	{"alice", ""},
	{"bob", "Love that picture"},
}

// Fills a room with a short conversation, indexes it and stores a picture,
// so the history, search and upload routes have something to show.
func main() {
	room := flag.String("room", "demo", "Room to seed")
	flag.Parse()

	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		log.Fatalf("Failed to open bluge writer: %v", err)
	}
	defer writer.Close()

	if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}
	uploads := storage.NewUploadStore(logger, config.UploadDir, config.BaseURL(), config.MaxUploadBytes)
	picture, err := uploads.Save(bytes.NewReader(genImage()))
	if err != nil {
		log.Fatalf("Failed to store picture: %v", err)
	}

	repository := storage.NewBundleRepository(db, logger)
	index := search.NewMessageIndex(writer, logger)
	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	for i, line := range conversation {
		message := domain.Message{
			Content:   line.content,
			SenderID:  line.sender,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		}
		if message.Content == "" {
			message.ImageURL = picture.URL
		}
		if _, err := repository.AppendOrCreate(context.Background(), domain.RoomID(*room), line.sender, domain.EntryFromMessage(message)); err != nil {
			log.Fatalf("Failed to store message %d: %v", i, err)
		}
		if err := index.Index(domain.RoomID(*room), message); err != nil {
			log.Fatalf("Failed to index message %d: %v", i, err)
		}
	}

	fmt.Printf("Seeded %d messages in room %q, picture at %s\n", len(conversation), *room, picture.URL)
}

// genImage draws a small gradient, enough for mimetype to sniff a PNG.
func genImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(fmt.Sprintf("png encoding failed: %v", err))
	}
	return buf.Bytes()
}
