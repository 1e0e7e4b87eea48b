// Package audio probes uploaded audio tracks for tag and duration metadata.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simonhull/audiometa"
)

// TrackInfo holds metadata read from an uploaded audio file.
// Used to prefill the audio widget's title, artist, and duration.
type TrackInfo struct {
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Duration float64 `json:"duration"` // Seconds
	Format   string  `json:"format"`
}

// Prober reads metadata from stored audio files.
type Prober struct {
	logger *slog.Logger
}

// NewProber creates a new Prober instance.
func NewProber(logger *slog.Logger) *Prober {
	return &Prober{logger: logger}
}

// Probe opens the audio file at path and extracts track metadata.
// Missing tags are not an error; the widget editor falls back to the
// upload's filename.
func (p *Prober) Probe(ctx context.Context, path string) (*TrackInfo, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Defer close, nothing we can do about errors here

	info := &TrackInfo{
		Title:    file.Tags.Title,
		Artist:   file.Tags.Artist,
		Duration: file.Audio.Duration.Seconds(),
		Format:   file.Format.String(),
	}

	p.logger.Debug("probed audio track",
		"path", path,
		"format", info.Format,
		"duration", info.Duration,
	)

	return info, nil
}
