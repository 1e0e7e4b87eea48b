package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/linkcardapp/linkcard-server/internal/search"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

func (s *Server) registerPublicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/{handle}",
		Summary:     "Get published card",
		Description: "Returns the published card for a handle and records a view",
		Tags:        []string{"Public"},
	}, s.handleGetPublicCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordCardClick",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/{handle}/events",
		Summary:     "Record a card interaction",
		Description: "Records a click on a card element (social link, contact button, story, widget)",
		Tags:        []string{"Public"},
	}, s.handleRecordClick)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchDirectory",
		Method:      http.MethodGet,
		Path:        "/api/v1/directory/search",
		Summary:     "Search the card directory",
		Description: "Full-text search over published cards with fuzzy matching and highlighting",
		Tags:        []string{"Public"},
	}, s.handleSearchDirectory)
}

// === DTOs ===

// PublicCardInput carries the handle path parameter.
type PublicCardInput struct {
	Handle string `path:"handle" doc:"Published card handle"`
}

// PublicCardOutput wraps a published card for Huma.
type PublicCardOutput struct {
	Body service.PublicCard
}

// ClickEventRequest describes a recorded interaction.
type ClickEventRequest struct {
	TargetType string `json:"target_type" validate:"required,max=50" doc:"Element kind: social_link, contact_button, story, widget"`
	TargetID   string `json:"target_id" validate:"required,max=100" doc:"Element ID within the card"`
	Referrer   string `json:"referrer,omitempty" validate:"omitempty,max=500" doc:"Referring page, if any"`
}

// ClickEventInput wraps the click event for Huma.
type ClickEventInput struct {
	Handle string `path:"handle" doc:"Published card handle"`
	Body   ClickEventRequest
}

// DirectorySearchInput carries directory search query parameters.
type DirectorySearchInput struct {
	Query  string `query:"q" doc:"Search text"`
	Layout string `query:"layout" doc:"Filter by card layout"`
	Sort   string `query:"sort" enum:"relevance,recent" doc:"Sort order" default:"relevance"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Page size"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Page offset"`
}

// DirectorySearchOutput wraps directory search results for Huma.
type DirectorySearchOutput struct {
	Body search.SearchResult
}

// === Handlers ===

func (s *Server) handleGetPublicCard(ctx context.Context, input *PublicCardInput) (*PublicCardOutput, error) {
	card, err := s.services.Card.GetPublicCard(ctx, input.Handle)
	if err != nil {
		return nil, err
	}

	// Views are recorded asynchronously; a full buffer drops the event
	// rather than slowing the public page.
	if s.services.Analytics != nil {
		s.services.Analytics.RecordView(card.OwnerID, nil)
	}

	return &PublicCardOutput{Body: *card}, nil
}

func (s *Server) handleRecordClick(ctx context.Context, input *ClickEventInput) (*MessageOutput, error) {
	card, err := s.services.Card.GetPublicCard(ctx, input.Handle)
	if err != nil {
		return nil, err
	}

	var metadata map[string]string
	if input.Body.Referrer != "" {
		metadata = map[string]string{"referrer": input.Body.Referrer}
	}
	s.services.Analytics.RecordClick(card.OwnerID, input.Body.TargetType, input.Body.TargetID, metadata)

	return &MessageOutput{Body: MessageResponse{Message: "Recorded"}}, nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, input *DirectorySearchInput) (*DirectorySearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Layout = input.Layout
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &DirectorySearchOutput{Body: *result}, nil
}

// handleQRCode serves the QR code PNG for a published handle. Registered
// directly on the router because huma envelopes all JSON responses.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	// Only published handles get a QR code.
	card, err := s.services.Card.GetPublicCard(r.Context(), handle)
	if err != nil {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}

	size := 0
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		size, _ = strconv.Atoi(sizeStr)
	}
	if size > 2048 {
		size = 2048
	}

	png, err := s.services.Card.QRCode(card.Handle, size)
	if err != nil {
		s.logger.Error("failed to render QR code", "handle", card.Handle, "error", err)
		http.Error(w, "failed to render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}
