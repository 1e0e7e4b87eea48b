package uploads

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
)

// Kind classifies an upload by how the card renders it.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// extensionsByMIME maps accepted content types to stored file extensions.
var extensionsByMIME = map[string]struct {
	ext  string
	kind Kind
}{
	"image/jpeg": {"jpg", KindImage},
	"image/png":  {"png", KindImage},
	"image/gif":  {"gif", KindImage},
	"image/webp": {"webp", KindImage},
	"video/mp4":  {"mp4", KindVideo},
	"video/webm": {"webm", KindVideo},
	"audio/mpeg": {"mp3", KindAudio},
	"audio/mp4":  {"m4a", KindAudio},
	"audio/ogg":  {"ogg", KindAudio},
	"audio/flac": {"flac", KindAudio},
}

// Result describes a stored upload.
type Result struct {
	Filename string // Stored name, {id}.{ext}
	Kind     Kind
	Size     int64
	Hash     string // SHA256 of the stored bytes
	BlurHash string // Placeholder hash, images only
	Width    int    // Pixel dimensions, images only
	Height   int
}

// Processor validates and stores uploaded media.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// AcceptedType reports whether the content type can be stored.
func AcceptedType(contentType string) bool {
	_, ok := extensionsByMIME[contentType]
	return ok
}

// Process validates the upload, stores it under id, and returns its metadata.
// Image uploads must decode; a BlurHash placeholder and dimensions are
// computed for them. Video and audio uploads are stored as-is.
func (p *Processor) Process(id, contentType string, data []byte) (*Result, error) {
	spec, ok := extensionsByMIME[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("upload data cannot be empty")
	}

	result := &Result{
		Filename: fmt.Sprintf("%s.%s", id, spec.ext),
		Kind:     spec.kind,
		Size:     int64(len(data)),
	}

	if spec.kind == KindImage {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		result.Width = cfg.Width
		result.Height = cfg.Height

		hash, err := ComputeBlurHash(data)
		if err != nil {
			// The image decoded, so store it anyway and serve without a placeholder.
			p.logger.Warn("failed to compute blurhash",
				"upload_id", id,
				"error", err,
			)
		} else {
			result.BlurHash = hash
		}
	}

	if err := p.storage.Save(result.Filename, data); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	hash, err := p.storage.Hash(result.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to compute upload hash: %w", err)
	}
	result.Hash = hash

	p.logger.Debug("stored upload",
		"upload_id", id,
		"kind", string(result.Kind),
		"size", result.Size,
		"hash", hash[:8]+"...",
	)

	return result, nil
}
