package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/media/audio"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
)

// maxUploadSize caps a single uploaded file.
const maxUploadSize = 25 << 20 // 25 MiB

// UploadService stores media assets referenced by card documents:
// profile and cover images, story media, gallery items, and audio
// widget tracks.
type UploadService struct {
	processor *uploads.Processor
	storage   *uploads.Storage
	prober    *audio.Prober
	logger    *slog.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(
	processor *uploads.Processor,
	storage *uploads.Storage,
	prober *audio.Prober,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		processor: processor,
		storage:   storage,
		prober:    prober,
		logger:    logger,
	}
}

// UploadResult is returned for every stored asset.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash"`

	// Images only
	BlurHash string `json:"blurHash,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`

	// Audio only
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// Upload validates, stores, and describes a media file. Image uploads get
// dimensions and a blurhash placeholder; audio uploads are probed for tags
// and duration.
func (s *UploadService) Upload(ctx context.Context, contentType string, data []byte) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domainerrors.Validation("file is empty")
	}
	if len(data) > maxUploadSize {
		return nil, domainerrors.Validation("file exceeds the 25 MiB upload limit")
	}

	// Strip any charset or boundary parameters.
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = parsed
	}
	if !uploads.AcceptedType(contentType) {
		return nil, domainerrors.Validationf("unsupported content type %q", contentType)
	}

	result, err := s.processor.Process(uuid.NewString(), contentType, data)
	if err != nil {
		return nil, err
	}

	out := &UploadResult{
		URL:      "/uploads/" + result.Filename,
		Filename: result.Filename,
		Size:     result.Size,
		Hash:     result.Hash,
		BlurHash: result.BlurHash,
		Width:    result.Width,
		Height:   result.Height,
	}

	if result.Kind == uploads.KindAudio {
		s.probeAudio(ctx, result.Filename, out)
	}

	s.logger.Info("upload stored",
		"filename", result.Filename,
		"kind", string(result.Kind),
		"bytes", result.Size,
	)
	return out, nil
}

// probeAudio fills in tags and duration. Probe failures leave the upload
// usable with empty metadata.
func (s *UploadService) probeAudio(ctx context.Context, filename string, out *UploadResult) {
	info, err := s.prober.Probe(ctx, s.storage.Path(filename))
	if err != nil {
		s.logger.Warn("failed to probe audio upload", "filename", filename, "error", err)
		return
	}
	out.Title = info.Title
	out.Artist = info.Artist
	out.Duration = info.Duration
}

// Get returns a stored file's bytes and content type for serving.
func (s *UploadService) Get(name string) ([]byte, string, error) {
	data, err := s.storage.Get(name)
	if err != nil {
		return nil, "", domainerrors.NotFoundf("upload %q not found", name).WithCause(err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// mime may append a charset for text-ish types; uploads are binary.
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	return data, contentType, nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *UploadService) Delete(name string) error {
	if err := s.storage.Delete(name); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
