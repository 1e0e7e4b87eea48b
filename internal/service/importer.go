package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/id"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
)

// maxImportHTMLSize caps pasted HTML to keep conversion bounded.
const maxImportHTMLSize = 1 << 20 // 1 MiB

// htmlTagPattern matches common HTML tags to detect if a string contains markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|img|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// ImportService converts pasted HTML into markdown for story content and
// text widgets, and pulls remote images into local upload storage when
// migrating from an existing link page.
type ImportService struct {
	cardService *CardService
	fetcher     *uploads.Fetcher
	logger      *slog.Logger
}

// NewImportService creates a content import service.
func NewImportService(cardService *CardService, fetcher *uploads.Fetcher, logger *slog.Logger) *ImportService {
	return &ImportService{
		cardService: cardService,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// ConvertHTML converts pasted HTML to markdown. Plain text comes back
// unchanged so users can paste either.
func (s *ImportService) ConvertHTML(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", domainerrors.Validation("html is required")
	}
	if len(html) > maxImportHTMLSize {
		return "", domainerrors.Validation("html exceeds the 1 MiB import limit")
	}

	if !containsHTML(html) {
		return strings.TrimSpace(html), nil
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", domainerrors.Validation("html could not be converted").WithCause(err)
	}

	return strings.TrimSpace(markdown), nil
}

// ImportAvatar downloads a remote profile image, stores it locally, and
// points the card document at the stored copy.
func (s *ImportService) ImportAvatar(ctx context.Context, identity, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(url) == "" {
		return "", domainerrors.Validation("url is required")
	}

	uploadID, err := id.Generate("upload")
	if err != nil {
		return "", fmt.Errorf("generate upload id: %w", err)
	}

	result := s.fetcher.Fetch(ctx, uploadID, url)
	if !result.Success {
		return "", domainerrors.Upstream("failed to fetch remote image").WithCause(result.Error)
	}

	path := "/uploads/" + result.Filename
	if _, err := s.cardService.UpdateFields(ctx, identity, domain.CardPatch{ProfileImage: &path}); err != nil {
		return "", fmt.Errorf("record imported avatar: %w", err)
	}

	s.logger.Info("avatar imported",
		"identity", identity,
		"filename", result.Filename,
		"bytes", result.Size,
	)
	return path, nil
}

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}
