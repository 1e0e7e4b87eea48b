package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "saveProfile",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/save",
		Summary:     "Save card to profile",
		Description: "Persists the working card as the account's saved profile",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSaveProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/publish",
		Summary:     "Publish card",
		Description: "Saves the working card and publishes it under a handle",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublish)

	huma.Register(s.api, huma.Operation{
		OperationID: "unpublishCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/unpublish",
		Summary:     "Unpublish card",
		Description: "Takes the card offline and frees its handle",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnpublish)
}

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAnalyticsSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/summary",
		Summary:     "Get analytics summary",
		Description: "Returns view and click counts for the caller's saved card",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAnalyticsSummary)
}

// === DTOs ===

// ProfileResponse describes the saved profile state.
type ProfileResponse struct {
	UserID      string     `json:"user_id" doc:"Profile owner"`
	Handle      string     `json:"handle,omitempty" doc:"Published handle, if any"`
	Published   bool       `json:"published" doc:"Whether the card is live"`
	PublicURL   string     `json:"public_url,omitempty" doc:"Public card URL when published"`
	PublishedAt *time.Time `json:"published_at,omitempty" doc:"First publish timestamp"`
	UpdatedAt   time.Time  `json:"updated_at" doc:"Last save timestamp"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// PublishRequest carries the desired handle.
type PublishRequest struct {
	Handle string `json:"handle" validate:"required,max=100" doc:"Desired handle; normalized to lowercase slug form"`
}

// PublishInput wraps the publish request for Huma.
type PublishInput struct {
	Body PublishRequest
}

// AnalyticsSummaryInput carries the optional time window.
type AnalyticsSummaryInput struct {
	Since string `query:"since" doc:"RFC 3339 timestamp; only events at or after this instant are counted"`
}

// AnalyticsSummaryOutput wraps the summary for Huma.
type AnalyticsSummaryOutput struct {
	Body domain.AnalyticsSummary
}

// === Handlers ===

func (s *Server) handleSaveProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Card.SaveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: s.mapProfile(record)}, nil
}

func (s *Server) handlePublish(ctx context.Context, input *PublishInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Card.Publish(ctx, userID, input.Body.Handle)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: s.mapProfile(record)}, nil
}

func (s *Server) handleUnpublish(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Card.Unpublish(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Card unpublished"}}, nil
}

func (s *Server) handleAnalyticsSummary(ctx context.Context, input *AnalyticsSummaryInput) (*AnalyticsSummaryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	var since time.Time
	if input.Since != "" {
		since, err = time.Parse(time.RFC3339, input.Since)
		if err != nil {
			return nil, huma.Error400BadRequest("since must be an RFC 3339 timestamp")
		}
	}

	summary, err := s.services.Analytics.Summary(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &AnalyticsSummaryOutput{Body: *summary}, nil
}

func (s *Server) mapProfile(record *domain.ProfileRecord) ProfileResponse {
	resp := ProfileResponse{
		UserID:      record.UserID,
		Handle:      record.Handle,
		Published:   record.IsPublished(),
		PublishedAt: record.PublishedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	if resp.Published {
		resp.PublicURL = s.services.Card.CardURL(record.Handle)
	}
	return resp
}
