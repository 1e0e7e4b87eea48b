package providers

import (
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/media/audio"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
)

// ProvideUploadStorage provides on-disk storage for uploaded media.
func ProvideUploadStorage(i do.Injector) (*uploads.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)

	storage, err := uploads.NewStorage(filepath.Join(cfg.Data.BasePath, "uploads"))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload storage: %w", err)
	}
	return storage, nil
}

// ProvideUploadProcessor provides the image processing pipeline for uploads.
func ProvideUploadProcessor(i do.Injector) (*uploads.Processor, error) {
	storage := do.MustInvoke[*uploads.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return uploads.NewProcessor(storage, log.Logger), nil
}

// ProvideUploadFetcher provides the remote-avatar fetcher used by imports.
func ProvideUploadFetcher(i do.Injector) (*uploads.Fetcher, error) {
	storage := do.MustInvoke[*uploads.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return uploads.NewFetcher(storage, log.Logger), nil
}

// ProvideAudioProber provides the audio metadata prober for intro clips.
func ProvideAudioProber(i do.Injector) (*audio.Prober, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return audio.NewProber(log.Logger), nil
}
