// Package client is a websocket client for the chat gateway. It is used by
// the command line client and by the end-to-end suite.
package client

import (
	"context"
	"couple-chat/infrastructure/server"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Client struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	seq     atomic.Uint64
}

// Dial opens a websocket to url (ws:// or wss://). The token, when not
// empty, is sent as a bearer token on the handshake.
func Dial(ctx context.Context, url, token string) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{ws: ws}, nil
}

// Register announces userID on this connection and returns the request id
// the server will acknowledge.
func (c *Client) Register(userID string) (string, error) {
	return c.send(server.FrameRegisterUser, map[string]string{"userId": userID})
}

func (c *Client) Join(userID, roomID string) (string, error) {
	return c.send(server.FrameJoinChat, map[string]string{"userId": userID, "roomId": roomID})
}

// Send posts a message to roomID. An empty CreatedAt is stamped by the server.
func (c *Client) Send(roomID string, message server.MessagePayload) (string, error) {
	return c.send(server.FrameSendMessage, map[string]any{"roomId": roomID, "message": message})
}

// Next blocks until the next frame arrives or ctx is done.
func (c *Client) Next(ctx context.Context) (server.Frame, error) {
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return server.Frame{}, err
	}

	type result struct {
		frame server.Frame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		var frame server.Frame
		err := c.ws.ReadJSON(&frame)
		done <- result{frame: frame, err: err}
	}()

	select {
	case r := <-done:
		return r.frame, r.err
	case <-ctx.Done():
		// Unblocks the pending read; the connection is unusable afterwards.
		_ = c.ws.SetReadDeadline(time.Now())
		<-done
		return server.Frame{}, ctx.Err()
	}
}

// Await reads frames until the reply to requestID arrives. Messages
// received meanwhile are returned alongside it.
func (c *Client) Await(ctx context.Context, requestID string) (server.Frame, []server.MessagePayload, error) {
	var received []server.MessagePayload
	for {
		frame, err := c.Next(ctx)
		if err != nil {
			return server.Frame{}, received, err
		}
		if frame.Type == server.FrameReceiveMessage {
			message, err := DecodeMessage(frame)
			if err != nil {
				return server.Frame{}, received, err
			}
			received = append(received, message)
			continue
		}
		if frame.RequestID == requestID {
			return frame, received, nil
		}
	}
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}

func (c *Client) send(frameType string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	requestID := strconv.FormatUint(c.seq.Add(1), 10)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(server.Frame{Type: frameType, RequestID: requestID, Payload: data}); err != nil {
		return "", fmt.Errorf("write %s: %w", frameType, err)
	}
	return requestID, nil
}

func DecodeMessage(frame server.Frame) (server.MessagePayload, error) {
	var message server.MessagePayload
	if err := json.Unmarshal(frame.Payload, &message); err != nil {
		return server.MessagePayload{}, fmt.Errorf("decode %s: %w", frame.Type, err)
	}
	return message, nil
}

// DecodeError reads the payload of an error or send_failed frame.
func DecodeError(frame server.Frame) (server.ErrorPayload, error) {
	var payload server.ErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		return server.ErrorPayload{}, fmt.Errorf("decode %s: %w", frame.Type, err)
	}
	return payload, nil
}
