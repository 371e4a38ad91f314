package server

import (
	"couple-chat/auth"
	"couple-chat/domain"
	"couple-chat/runtime/workers"
	"couple-chat/services"
	"couple-chat/sink"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

const maxDecodeErrors = 3

type GatewayConfig struct {
	ConnectionBufferSize int
	PingPeriod           time.Duration
	PongWait             time.Duration
	WriteWait            time.Duration
	MaxFrameBytes        int64
}

// ChatServer upgrades HTTP requests to websockets and serves the chat
// events on each of them.
type ChatServer struct {
	log         *slog.Logger
	chatService services.IChatService
	cfg         GatewayConfig
	upgrader    websocket.Upgrader
	validate    *validator.Validate

	mu          sync.RWMutex
	connections map[domain.ConnectionID]*connection
}

var _ workers.ChannelSource = (*ChatServer)(nil)

func NewChatServer(log *slog.Logger, chatService services.IChatService, cfg GatewayConfig) *ChatServer {
	return &ChatServer{
		log:         log,
		chatService: chatService,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may connect; identity comes from the token, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		validate:    validator.New(),
		connections: make(map[domain.ConnectionID]*connection),
	}
}

// ServeHTTP establishes a long-lived websocket for real-time delivery.
// It blocks until the client disconnects or a network error occurs.
// Cleanup is deferred so a dropped connection never stays in a room.
func (s *ChatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied with an HTTP error.
		s.log.Warn("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	identity, _ := auth.UserIDFromContext(r.Context())
	c := &connection{
		id:       domain.NewConnectionID(),
		identity: identity,
		ws:       ws,
		sink:     sink.NewWebsocketSink(s.log, s.cfg.ConnectionBufferSize),
		server:   s,
	}
	c.userID = identity

	s.track(c)
	defer s.untrack(c)

	s.log.Info("Connection opened", "connection_id", c.id, "remote_addr", r.RemoteAddr, "user_id", identity)
	c.serve(r.Context())
	s.log.Info("Connection closed", "connection_id", c.id, "user_id", c.userID)
}

// Channels exposes the outbound buffer of every live connection.
func (s *ChatServer) Channels() []workers.NamedChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channels := make([]workers.NamedChannel, 0, len(s.connections))
	for id, c := range s.connections {
		channels = append(channels, workers.NamedChannel{
			Name:    fmt.Sprintf("sink:%s", id),
			Channel: c.sink.ConnectedUserEvent,
		})
	}
	return channels
}

// CloseAll sends a going-away close frame to every live connection.
func (s *ChatServer) CloseAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.connections {
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
	}
}

func (s *ChatServer) track(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[c.id] = c
}

func (s *ChatServer) untrack(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, c.id)
}
