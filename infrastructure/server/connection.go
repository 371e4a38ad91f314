package server

import (
	"context"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"couple-chat/errors"
	"couple-chat/sink"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connection serves one websocket. Inbound frames are handled one at a
// time, in arrival order, so a client's sends reach storage in the order
// it wrote them.
type connection struct {
	id       domain.ConnectionID
	identity domain.UserID // set when the handshake carried a valid token
	userID   domain.UserID // last id registered on this connection
	ws       *websocket.Conn
	sink     *sink.WebsocketSink
	server   *ChatServer
	writeMu  sync.Mutex
}

func (c *connection) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(ctx)
	}()

	c.readLoop(ctx)

	c.server.chatService.Disconnect(c.id)
	c.sink.Close()
	cancel()
	wg.Wait()
	_ = c.ws.Close()
}

func (c *connection) readLoop(ctx context.Context) {
	cfg := c.server.cfg
	if cfg.MaxFrameBytes > 0 {
		c.ws.SetReadLimit(cfg.MaxFrameBytes)
	}
	if cfg.PongWait > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
		c.ws.SetPongHandler(func(string) error {
			return c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
		})
	}

	decodeErrors := 0
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.server.log.Warn("Connection lost", "connection_id", c.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := c.decode(data, &frame); err != nil {
			decodeErrors++
			c.writeError(frame.RequestID, err)
			if decodeErrors >= maxDecodeErrors {
				c.server.log.Warn("Too many malformed frames, closing", "connection_id", c.id)
				c.closeWith(websocket.ClosePolicyViolation, "too many malformed frames")
				return
			}
			continue
		}
		decodeErrors = 0
		c.handle(ctx, frame)
	}
}

func (c *connection) decode(data []byte, frame *Frame) error {
	if err := json.Unmarshal(data, frame); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := c.server.validate.Struct(frame); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func (c *connection) handle(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameRegisterUser:
		c.handleRegister(frame)
	case FrameJoinChat:
		c.handleJoin(frame)
	case FrameSendMessage:
		c.handleSend(ctx, frame)
	default:
		c.writeError(frame.RequestID, fmt.Errorf("%w: unsupported frame type %q", errors.ErrInvalidPayload, frame.Type))
	}
}

func (c *connection) handleRegister(frame Frame) {
	var p registerPayload
	if err := c.decodePayload(frame.Payload, &p); err != nil {
		c.writeError(frame.RequestID, err)
		return
	}
	userID := domain.UserID(p.UserID)
	if c.identity != "" && userID != c.identity {
		c.server.log.Warn("Register refused", "connection_id", c.id, "user_id", userID, "authenticated_as", c.identity)
		c.writeError(frame.RequestID, errors.ErrIdentityMismatch)
		return
	}
	c.userID = userID
	c.server.chatService.RegisterUser(domain.RegisterCommand{ConnectionID: c.id, UserID: userID})
	c.ack(frame.RequestID, AckRegistered)
}

func (c *connection) handleJoin(frame Frame) {
	var p joinPayload
	if err := c.decodePayload(frame.Payload, &p); err != nil {
		c.writeError(frame.RequestID, err)
		return
	}
	userID := c.userID
	if p.UserID != "" {
		userID = domain.UserID(p.UserID)
	}
	if c.identity != "" && userID != c.identity {
		c.server.log.Warn("Join refused", "connection_id", c.id, "user_id", userID, "authenticated_as", c.identity)
		c.writeError(frame.RequestID, errors.ErrIdentityMismatch)
		return
	}
	err := c.server.chatService.JoinRoom(domain.JoinCommand{
		ConnectionID: c.id,
		UserID:       userID,
		Room:         domain.RoomID(p.RoomID),
	}, c.sink)
	if err != nil {
		c.writeError(frame.RequestID, err)
		return
	}
	c.ack(frame.RequestID, AckJoined)
}

// handleSend decodes the message, stamps created_at when missing and hands
// it to the delivery pipeline. Any refusal is reported to this connection
// only, as a send_failed frame.
func (c *connection) handleSend(ctx context.Context, frame Frame) {
	var p sendPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		c.sendFailed(frame.RequestID, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}

	var m MessagePayload
	raw := p.Message
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &m); err != nil {
			c.sendFailed(frame.RequestID, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
			return
		}
	}

	var createdAt time.Time
	if m.CreatedAt == "" {
		createdAt = time.Now().UTC()
		if len(raw) > 0 && string(raw) != "null" {
			stamped, err := withCreatedAt(raw, createdAt)
			if err != nil {
				c.sendFailed(frame.RequestID, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
				return
			}
			raw = stamped
		}
	} else {
		parsed, err := time.Parse(time.RFC3339, m.CreatedAt)
		if err != nil {
			c.sendFailed(frame.RequestID, fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrInvalidTimestamp))
			return
		}
		createdAt = parsed
	}

	senderID := domain.UserID(m.SenderID)
	if c.identity != "" && senderID != "" && senderID != c.identity {
		c.server.log.Warn("Send refused", "connection_id", c.id, "user_id", senderID, "authenticated_as", c.identity)
		c.sendFailed(frame.RequestID, errors.ErrIdentityMismatch)
		return
	}

	err := c.server.chatService.SendMessage(ctx, domain.SendMessageCommand{
		ConnectionID: c.id,
		Room:         domain.RoomID(p.RoomID),
		Message: domain.Message{
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			SenderID:  senderID,
			CreatedAt: createdAt,
		},
		Payload: raw,
	})
	if err != nil {
		c.sendFailed(frame.RequestID, err)
		return
	}
	c.ack(frame.RequestID, AckDelivered)
}

func (c *connection) decodePayload(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := c.server.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func (c *connection) writeLoop(ctx context.Context) {
	cfg := c.server.cfg
	var ping <-chan time.Time
	if cfg.PingPeriod > 0 {
		ticker := time.NewTicker(cfg.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.sink.Done():
			return
		case evt := <-c.sink.ConnectedUserEvent:
			switch e := evt.(type) {
			case event.MessageReceived:
				if err := c.write(Frame{Type: FrameReceiveMessage, Payload: e.Payload}); err != nil {
					c.server.log.Error("failed to push event to websocket",
						"connection_id", c.id,
						"room_id", e.Room,
						"error", err)
					_ = c.ws.Close()
					return
				}
			}
		case <-ping:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.WriteWait)); err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}

func (c *connection) write(frame Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.server.cfg.WriteWait > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.server.cfg.WriteWait))
	}
	return c.ws.WriteJSON(frame)
}

func (c *connection) writePayload(frameType, requestID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.server.log.Error("failed to encode frame", "type", frameType, "error", err)
		return
	}
	if err := c.write(Frame{Type: frameType, RequestID: requestID, Payload: data}); err != nil {
		c.server.log.Debug("failed to write frame", "connection_id", c.id, "type", frameType, "error", err)
	}
}

func (c *connection) ack(requestID, status string) {
	if requestID == "" {
		return
	}
	c.writePayload(FrameAck, requestID, AckPayload{Status: status})
}

func (c *connection) writeError(requestID string, err error) {
	c.writePayload(FrameError, requestID, toErrorPayload(err))
}

func (c *connection) sendFailed(requestID string, err error) {
	c.writePayload(FrameSendFailed, requestID, toErrorPayload(err))
}

func (c *connection) closeWith(code int, text string) {
	deadline := time.Now().Add(time.Second)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	_ = c.ws.Close()
}

func toErrorPayload(err error) ErrorPayload {
	return ErrorPayload{
		Code:      errors.Code(err),
		Message:   err.Error(),
		Retryable: errors.Retryable(err),
	}
}
