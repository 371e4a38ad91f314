package server

import (
	"couple-chat/auth"
	"couple-chat/domain"
	"couple-chat/errors"
	"couple-chat/infrastructure/storage"
	"couple-chat/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
)

const uploadField = "file"

// Router serves the websocket endpoint and the REST routes used by the
// chat page: history, deletion, search and image uploads.
type Router struct {
	log         *slog.Logger
	chatService services.IChatService
	uploads     storage.IUploadStore
	maxUpload   int64
}

func NewRouter(log *slog.Logger, chatService services.IChatService, uploads storage.IUploadStore, maxUpload int64) *Router {
	return &Router{log: log, chatService: chatService, uploads: uploads, maxUpload: maxUpload}
}

// Handler builds the mux. Everything but the liveness probe and static
// uploads goes through the authentication middleware.
func (rt *Router) Handler(chatServer *ChatServer, authenticator auth.Authenticator, uploadDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /ws", auth.Middleware(authenticator, chatServer))
	mux.Handle("GET /chat/{roomId}", auth.Middleware(authenticator, http.HandlerFunc(rt.getMessages)))
	mux.Handle("GET /chat/{roomId}/search", auth.Middleware(authenticator, http.HandlerFunc(rt.searchMessages)))
	mux.Handle("DELETE /chat/message", auth.Middleware(authenticator, http.HandlerFunc(rt.deleteMessage)))
	mux.Handle("POST /chat/upload", auth.Middleware(authenticator, http.HandlerFunc(rt.upload)))
	if uploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}
	return mux
}

func (rt *Router) getMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := rt.chatService.GetMessages(r.Context(), domain.GetMessagesQuery{
		Room: domain.RoomID(r.PathValue("roomId")),
	})
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, toMessagePayloads(messages))
}

// searchMessages accepts the search box input as q, flags included.
// An explicit limit parameter wins over a --limit flag.
func (rt *Router) searchMessages(w http.ResponseWriter, r *http.Request) {
	query := domain.ParseSearch(domain.RoomID(r.PathValue("roomId")), r.URL.Query().Get("q"))
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			rt.writeError(w, fmt.Errorf("%w: limit must be a positive integer", errors.ErrInvalidPayload))
			return
		}
		query.Limit = parsed
	}
	messages, err := rt.chatService.SearchMessages(r.Context(), query)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, toMessagePayloads(messages))
}

type deleteRequest struct {
	RoomID    string `json:"roomId"`
	SenderID  string `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

func (rt *Router) deleteMessage(w http.ResponseWriter, r *http.Request) {
	var body deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rt.writeError(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}
	createdAt, err := time.Parse(time.RFC3339, body.CreatedAt)
	if err != nil {
		rt.writeError(w, errors.ErrInvalidTimestamp)
		return
	}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok && userID != domain.UserID(body.SenderID) {
		rt.writeError(w, errors.ErrIdentityMismatch)
		return
	}

	err = rt.chatService.DeleteMessage(r.Context(), domain.DeleteMessageCommand{
		Room:      domain.RoomID(body.RoomID),
		SenderID:  domain.UserID(body.SenderID),
		CreatedAt: createdAt,
	})
	switch {
	case errors.Is(err, errors.ErrMessageNotFound):
		rt.writeJSON(w, http.StatusNotFound, deleteResponse{Success: false})
	case err != nil:
		rt.writeError(w, err)
	default:
		rt.writeJSON(w, http.StatusOK, deleteResponse{Success: true})
	}
}

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUpload+1<<20)
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		rt.writeError(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := rt.uploads.Save(file)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusCreated, uploadResponse{ImageURL: upload.URL})
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.log.Debug("failed to write response", "error", err)
	}
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.log.Error("request failed", "error", err)
	}
	rt.writeJSON(w, status, toErrorPayload(err))
}

// HTTPStatus maps an error to the status REST callers see.
func HTTPStatus(err error) int {
	switch errors.Code(err) {
	case errors.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodePermissionDenied:
		return http.StatusForbidden
	case errors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.CodeResourceExhausted:
		return http.StatusRequestEntityTooLarge
	case errors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toMessagePayloads(messages []domain.Message) []MessagePayload {
	return lo.Map(messages, func(item domain.Message, _ int) MessagePayload {
		return MessagePayload{
			Content:   item.Content,
			ImageURL:  item.ImageURL,
			SenderID:  string(item.SenderID),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})
}
