package server

import (
	"bytes"
	"couple-chat/domain"
	"couple-chat/errors"
	"couple-chat/mocks"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func sendAndAck(t *testing.T, ts testServer, content, createdAt string) {
	t.Helper()
	ws := ts.dial(t, "")
	joinRoom42(t, ws, "alice")
	send(t, ws, FrameSendMessage, "m", map[string]any{"roomId": "room42", "message": map[string]string{
		"content": content, "sender_id": "alice", "created_at": createdAt,
	}})
	expectAck(t, ws, "m", AckDelivered)
}

func deleteMessage(t *testing.T, url string, body any) (*http.Response, deleteResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodDelete, url+"/chat/message", bytes.NewReader(data))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded deleteResponse
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestRouter_Up(t *testing.T) {
	ts := newTestServer(t, true)

	resp, err := http.Get(ts.httpServer.URL + "/up")

	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_HistoryOfUnknownRoomIsEmpty(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.httpServer.URL + "/chat/nobody")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.JSONEq(`[]`, string(body))
}

func TestRouter_DeleteMessage(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t, false)
	sendAndAck(t, ts, "oops", "2024-05-01T10:00:00Z")

	// When the exact message is deleted
	resp, body := deleteMessage(t, ts.httpServer.URL, deleteRequest{
		RoomID: "room42", SenderID: "alice", CreatedAt: "2024-05-01T10:00:00Z",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	req.True(body.Success)

	// Then deleting it again reports nothing to delete
	resp, body = deleteMessage(t, ts.httpServer.URL, deleteRequest{
		RoomID: "room42", SenderID: "alice", CreatedAt: "2024-05-01T10:00:00Z",
	})
	req.Equal(http.StatusNotFound, resp.StatusCode)
	req.False(body.Success)

	// And the history is empty
	history, err := http.Get(ts.httpServer.URL + "/chat/room42")
	req.NoError(err)
	defer history.Body.Close()
	var messages []MessagePayload
	req.NoError(json.NewDecoder(history.Body).Decode(&messages))
	req.Empty(messages)
}

func TestRouter_DeleteMessage_BadTimestamp(t *testing.T) {
	ts := newTestServer(t, false)

	resp, _ := deleteMessage(t, ts.httpServer.URL, deleteRequest{
		RoomID: "room42", SenderID: "alice", CreatedAt: "not a date",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_DeleteMessage_OnlyOwnMessages(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t, true)
	token, err := ts.authn.GenerateToken("bob")
	req.NoError(err)

	data, err := json.Marshal(deleteRequest{RoomID: "room42", SenderID: "alice", CreatedAt: "2024-05-01T10:00:00Z"})
	req.NoError(err)
	r, err := http.NewRequest(http.MethodDelete, ts.httpServer.URL+"/chat/message", bytes.NewReader(data))
	req.NoError(err)
	r.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestRouter_Upload(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t, false)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(uploadField, "cat.png")
	req.NoError(err)
	_, err = part.Write(pngHeader)
	req.NoError(err)
	req.NoError(form.Close())

	resp, err := http.Post(ts.httpServer.URL+"/chat/upload", form.FormDataContentType(), &body)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusCreated, resp.StatusCode)
	var uploaded uploadResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&uploaded))
	req.True(strings.HasPrefix(uploaded.ImageURL, "http://chat.test/uploads/"), uploaded.ImageURL)
	req.True(strings.HasSuffix(uploaded.ImageURL, ".png"), uploaded.ImageURL)

	// And the file is served back
	name := strings.TrimPrefix(uploaded.ImageURL, "http://chat.test/uploads/")
	_, err = os.Stat(filepath.Join(ts.uploadDir, name))
	req.NoError(err)
	served, err := http.Get(ts.httpServer.URL + "/uploads/" + name)
	req.NoError(err)
	defer served.Body.Close()
	req.Equal(http.StatusOK, served.StatusCode)
}

func TestRouter_Upload_RejectsNonImages(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t, false)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(uploadField, "notes.png")
	req.NoError(err)
	_, err = part.Write([]byte("just some text pretending to be a picture"))
	req.NoError(err)
	req.NoError(form.Close())

	resp, err := http.Post(ts.httpServer.URL+"/chat/upload", form.FormDataContentType(), &body)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
	var payload ErrorPayload
	req.NoError(json.NewDecoder(resp.Body).Decode(&payload))
	req.Equal(errors.CodeInvalidArgument, payload.Code)
}

func TestRouter_SearchRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.httpServer.URL + "/chat/room42/search?q=hi&limit=lots")

	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_SearchPassesQuery(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockIChatService(ctrl)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	chatService.EXPECT().
		SearchMessages(gomock.Any(), domain.SearchQuery{Room: "room42", Terms: "dinner", Sender: "bob", Limit: 5}).
		Return([]domain.Message{{Content: "dinner at 8?", SenderID: "bob", CreatedAt: at}}, nil)

	router := NewRouter(slog.Default(), chatService, nil, 1024)
	srv := httptest.NewServer(router.Handler(NewChatServer(slog.Default(), chatService, GatewayConfig{}), nil, ""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat/room42/search?q=dinner+--from+bob&limit=5")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	var results []MessagePayload
	req.NoError(json.NewDecoder(resp.Body).Decode(&results))
	req.Equal([]MessagePayload{{Content: "dinner at 8?", SenderID: "bob", CreatedAt: "2024-05-01T10:00:00Z"}}, results)
}

func TestRouter_StorageFailureIsUnavailable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockIChatService(ctrl)
	chatService.EXPECT().
		GetMessages(gomock.Any(), domain.GetMessagesQuery{Room: "room42"}).
		Return(nil, fmt.Errorf("%w: disk gone", errors.ErrPersistence))

	router := NewRouter(slog.Default(), chatService, nil, 1024)
	srv := httptest.NewServer(router.Handler(NewChatServer(slog.Default(), chatService, GatewayConfig{}), nil, ""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat/room42")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	var payload ErrorPayload
	req.NoError(json.NewDecoder(resp.Body).Decode(&payload))
	req.Equal(errors.CodeUnavailable, payload.Code)
	req.True(payload.Retryable)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"invalid":   {err: errors.ErrEmptyPayload, status: http.StatusBadRequest},
		"not found": {err: errors.ErrMessageNotFound, status: http.StatusNotFound},
		"identity":  {err: errors.ErrIdentityMismatch, status: http.StatusForbidden},
		"token":     {err: errors.ErrUnauthenticated, status: http.StatusUnauthorized},
		"too large": {err: errors.ErrFileTooLarge, status: http.StatusRequestEntityTooLarge},
		"storage":   {err: errors.ErrPersistence, status: http.StatusServiceUnavailable},
		"timeout":   {err: errors.ErrPersistenceTimeout, status: http.StatusGatewayTimeout},
		"other":     {err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}
