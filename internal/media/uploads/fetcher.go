package uploads

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// maxFetchSize limits download size to prevent memory exhaustion.
	maxFetchSize = 10 * 1024 * 1024 // 10MB

	// fetchTimeout is the maximum time for a remote image download.
	fetchTimeout = 30 * time.Second
)

// FetchResult contains the result of a remote image fetch.
type FetchResult struct {
	Success  bool   // Whether the fetch and storage succeeded
	Filename string // Stored name when Success is true
	Width    int    // Actual image width
	Height   int    // Actual image height
	Size     int64  // File size in bytes
	Error    error  // Error if Success is false
}

// Fetcher downloads remote images into upload storage.
// Used by the link-page importer to carry over avatars and media
// referenced by the scraped page.
type Fetcher struct {
	httpClient *http.Client
	storage    *Storage
	logger     *slog.Logger
}

// NewFetcher creates a new remote image fetcher.
func NewFetcher(storage *Storage, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		storage: storage,
		logger:  logger,
	}
}

// Fetch downloads an image from the URL and stores it under the given ID.
// Returns detailed results including dimensions and success status.
func (f *Fetcher) Fetch(ctx context.Context, id, url string) *FetchResult {
	result := &FetchResult{}

	if url == "" {
		result.Error = errors.New("empty image URL")
		return result
	}

	// Create timeout context
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	// Create request
	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Errorf("create request: %w", err)
		return result
	}

	// Execute request
	resp, err := f.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("download: %w", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("download failed: status %d", resp.StatusCode)
		return result
	}

	// Read with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		result.Error = fmt.Errorf("read data: %w", err)
		return result
	}

	result.Size = int64(len(data))

	// Parse dimensions and detect format before storing
	width, height, ext, err := sniffImage(data)
	if err != nil {
		result.Error = fmt.Errorf("not a supported image: %w", err)
		return result
	}
	result.Width = width
	result.Height = height

	// Store the image
	result.Filename = fmt.Sprintf("%s.%s", id, ext)
	if err := f.storage.Save(result.Filename, data); err != nil {
		result.Error = fmt.Errorf("store: %w", err)
		return result
	}

	result.Success = true
	f.logger.Info("fetched remote image",
		"upload_id", id,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)

	return result
}

// sniffImage extracts dimensions and extension from image data.
// Supports JPEG and PNG formats.
func sniffImage(data []byte) (width, height int, ext string, err error) {
	if len(data) < 24 {
		return 0, 0, "", errors.New("data too small")
	}

	// Try JPEG first
	if w, h, ok := parseJPEGDimensions(data); ok {
		return w, h, "jpg", nil
	}

	// Try PNG
	if w, h, ok := parsePNGDimensions(data); ok {
		return w, h, "png", nil
	}

	return 0, 0, "", errors.New("unsupported format")
}

// parseJPEGDimensions extracts dimensions from JPEG data.
func parseJPEGDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false // Not a JPEG
	}

	// Scan for SOF markers
	i := 2
	for i < len(data)-9 {
		if data[i] != 0xFF {
			i++
			continue
		}

		marker := data[i+1]

		// SOF0 (baseline), SOF1 (extended), SOF2 (progressive)
		if marker == 0xC0 || marker == 0xC1 || marker == 0xC2 {
			if i+9 > len(data) {
				return 0, 0, false
			}
			height = int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			width = int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return width, height, true
		}

		// Skip to next marker
		if i+3 >= len(data) {
			break
		}
		segmentLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		i += 2 + segmentLen
	}

	return 0, 0, false
}

// parsePNGDimensions extracts dimensions from PNG data.
func parsePNGDimensions(data []byte) (width, height int, ok bool) {
	pngSig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if len(data) < 24 || !bytes.Equal(data[:8], pngSig) {
		return 0, 0, false
	}

	if string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}

	width = int(binary.BigEndian.Uint32(data[16:20]))
	height = int(binary.BigEndian.Uint32(data[20:24]))
	return width, height, true
}
