package e2e

import (
	"context"
	"couple-chat/auth"
	"couple-chat/client"
	"couple-chat/domain"
	"couple-chat/infrastructure/server"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

const stepTimeout = 10 * time.Second

type BaseWebsocketSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests.
// The whole suite is skipped when no server is configured.
func (s *BaseWebsocketSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ChatURL == "" {
		s.T().Skip("CHAT_URL not set, skipping end-to-end suite")
	}
}

func (s *BaseWebsocketSuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Connect dials the server as userID, minting a token when the server
// verifies identities.
func (s *BaseWebsocketSuite) Connect(name, userID string) *client.Client {
	s.header(s.T(), name)
	token := ""
	if s.Config.AuthSecret != "" {
		var err error
		token, err = auth.NewTokenAuthenticator(s.Config.AuthSecret, time.Hour).GenerateToken(domain.UserID(userID))
		s.Require().NoError(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	c, err := client.Dial(ctx, s.Config.ChatURL, token)
	s.Require().NoError(err, "Failed to connect to chat server at "+s.Config.ChatURL)
	return c
}

// Await waits for the reply to requestID and logs it.
func (s *BaseWebsocketSuite) Await(c *client.Client, requestID string) (server.Frame, []server.MessagePayload) {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	start := time.Now()
	frame, received, err := c.Await(ctx, requestID)
	s.Require().NoError(err)
	s.log(frame, time.Since(start))
	return frame, received
}

func (s *BaseWebsocketSuite) Next(c *client.Client) server.Frame {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	start := time.Now()
	frame, err := c.Next(ctx)
	s.Require().NoError(err)
	s.log(frame, time.Since(start))
	return frame
}

func (s *BaseWebsocketSuite) log(frame server.Frame, elapsed time.Duration) {
	line := fmt.Sprintf("WS %s [%s] in %v", frame.Type, frame.RequestID, elapsed)
	if s.Config.DebugJSON {
		body, _ := json.MarshalIndent(frame, "", "  ")
		line += "\n" + string(body)
	}
	s.T().Log(line)
}
