package service

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
)

const domainRequestTimeout = 15 * time.Second

// DomainService links custom domains to published cards by proxying a
// registration request to the hosting provider, then recording the domain
// on the card document.
type DomainService struct {
	cardService *CardService
	httpClient  *http.Client
	logger      *slog.Logger

	providerURL   string
	providerToken string
	projectID     string
}

// NewDomainService creates a domain-linking service. Empty provider
// settings disable linking; requests then fail with a validation error.
func NewDomainService(
	cardService *CardService,
	providerURL, providerToken, projectID string,
	logger *slog.Logger,
) *DomainService {
	return &DomainService{
		cardService:   cardService,
		httpClient:    &http.Client{Timeout: domainRequestTimeout},
		providerURL:   providerURL,
		providerToken: providerToken,
		projectID:     projectID,
		logger:        logger,
	}
}

// Enabled reports whether a provider is configured.
func (s *DomainService) Enabled() bool {
	return s.providerURL != ""
}

// NormalizeDomain converts a user-entered domain to its ASCII (punycode)
// form and validates its shape.
func NormalizeDomain(input string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimSuffix(trimmed, "/")

	if trimmed == "" {
		return "", domainerrors.Validation("domain is required")
	}
	if strings.ContainsAny(trimmed, "/?#@ ") {
		return "", domainerrors.Validation("domain must be a bare hostname")
	}

	ascii, err := idna.Lookup.ToASCII(trimmed)
	if err != nil {
		return "", domainerrors.Validation("domain is not a valid hostname").WithCause(err)
	}
	if !strings.Contains(ascii, ".") {
		return "", domainerrors.Validation("domain must include a top-level domain")
	}
	return ascii, nil
}

// providerRequest is the payload sent to the hosting provider.
type providerRequest struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId,omitempty"`
}

// providerError is the error shape returned by the provider API.
type providerError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// LinkDomain registers a custom domain with the provider and writes it to
// the user's card document on success.
func (s *DomainService) LinkDomain(ctx context.Context, userID, rawDomain string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.Enabled() {
		return "", domainerrors.Validation("custom domains are not configured on this server")
	}

	name, err := NormalizeDomain(rawDomain)
	if err != nil {
		return "", err
	}

	if err := s.registerWithProvider(ctx, name); err != nil {
		return "", err
	}

	if _, err := s.cardService.UpdateFields(ctx, userID, domain.CardPatch{CustomDomain: &name}); err != nil {
		return "", fmt.Errorf("record custom domain: %w", err)
	}

	s.logger.Info("custom domain linked", "user_id", userID, "domain", name)
	return name, nil
}

// UnlinkDomain clears the card's custom domain. The provider-side record
// is left alone; re-linking simply overwrites it.
func (s *DomainService) UnlinkDomain(ctx context.Context, userID string) error {
	empty := ""
	if _, err := s.cardService.UpdateFields(ctx, userID, domain.CardPatch{CustomDomain: &empty}); err != nil {
		return fmt.Errorf("clear custom domain: %w", err)
	}

	s.logger.Info("custom domain unlinked", "user_id", userID)
	return nil
}

// registerWithProvider performs the proxied registration call.
func (s *DomainService) registerWithProvider(ctx context.Context, name string) error {
	payload, err := json.Marshal(providerRequest{Name: name, ProjectID: s.projectID})
	if err != nil {
		return fmt.Errorf("encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.providerURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.providerToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.providerToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domainerrors.Upstream("domain provider is unreachable").WithCause(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var perr providerError
	if err := json.Unmarshal(body, &perr); err == nil && perr.Error.Message != "" {
		if resp.StatusCode == http.StatusConflict {
			return domainerrors.AlreadyExists(perr.Error.Message)
		}
		return domainerrors.Upstream(perr.Error.Message)
	}

	s.logger.Warn("domain provider rejected request",
		"status", resp.StatusCode,
		"domain", name,
	)
	return domainerrors.Upstream(fmt.Sprintf("domain provider returned status %d", resp.StatusCode))
}
