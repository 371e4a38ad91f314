package main

import (
	"bufio"
	"context"
	"couple-chat/client"
	"couple-chat/infrastructure/server"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:5000/ws"`
	Token     string `env:"CHAT_TOKEN"`
	UserID    string `env:"CHAT_USER_ID,required=true"`
	RoomID    string `env:"CHAT_ROOM_ID,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins the configured room, prints what the partner writes and sends
// every line typed on stdin.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, config.ServerURL, config.Token)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()

	if _, err := c.Register(config.UserID); err != nil {
		return exitRuntime, err
	}
	if _, err := c.Join(config.UserID, config.RoomID); err != nil {
		return exitRuntime, err
	}
	log.Info("Connected, type a message and press enter (Ctrl+C to quit)",
		"server", config.ServerURL, "room_id", config.RoomID)

	go readInput(ctx, c, config, log.Error)

	for {
		frame, err := c.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		switch frame.Type {
		case server.FrameReceiveMessage:
			message, err := client.DecodeMessage(frame)
			if err != nil {
				log.Warn("Unreadable message", "error", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", clock(message.CreatedAt), message.SenderID, message.Content)
		case server.FrameSendFailed, server.FrameError:
			payload, err := client.DecodeError(frame)
			if err != nil {
				continue
			}
			log.Warn("Server refused a frame", "request_id", frame.RequestID, "code", payload.Code, "message", payload.Message)
		}
	}
}

func readInput(ctx context.Context, c *client.Client, config Config, logError func(msg string, args ...any)) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if _, err := c.Send(config.RoomID, server.MessagePayload{Content: line, SenderID: config.UserID}); err != nil {
			logError("Send failed", "error", err)
			return
		}
	}
}

func clock(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "--:--:--"
	}
	return t.Local().Format(time.TimeOnly)
}
