//go:generate go run go.uber.org/mock/mockgen -source=upload_store.go -destination=../../mocks/mock_upload_store.go -package=mocks
package storage

import (
	"couple-chat/domain/mimetypes"
	"couple-chat/errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Upload describes an image saved for a chat message.
type Upload struct {
	Name     string
	MimeType mimetypes.MIME
	Size     int64
	URL      string
}

type IUploadStore interface {
	Save(r io.Reader) (Upload, error)
}

// UploadStore keeps chat images on local disk under uuid names.
// The content type is sniffed from the bytes, never trusted from the client.
type UploadStore struct {
	log      *slog.Logger
	dir      string
	baseURL  string
	maxBytes int64
}

func NewUploadStore(log *slog.Logger, dir, baseURL string, maxBytes int64) *UploadStore {
	return &UploadStore{
		log:      log,
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *UploadStore) Dir() string {
	return s.dir
}

func (s *UploadStore) Save(r io.Reader) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Upload{}, errors.ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	mime, ok := mimetypes.AcceptedImage(detected.String())
	if !ok {
		s.log.Debug("Rejected upload", "mime_type", detected.String())
		return Upload{}, fmt.Errorf("%w: got %s", errors.ErrUnsupportedMedia, detected.String())
	}

	name := uuid.NewString() + detected.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return Upload{}, fmt.Errorf("failed to write upload %s: %w", name, err)
	}
	s.log.Info("Stored upload", "name", name, "mime_type", mime, "size", len(data))

	return Upload{
		Name:     name,
		MimeType: mime,
		Size:     int64(len(data)),
		URL:      s.baseURL + "/uploads/" + name,
	}, nil
}
