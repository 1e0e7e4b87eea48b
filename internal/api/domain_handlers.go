package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerDomainRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "linkDomain",
		Method:      http.MethodPost,
		Path:        "/api/v1/domain",
		Summary:     "Link a custom domain",
		Description: "Registers a custom domain with the hosting provider and attaches it to the card",
		Tags:        []string{"Domain"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLinkDomain)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlinkDomain",
		Method:      http.MethodDelete,
		Path:        "/api/v1/domain",
		Summary:     "Unlink the custom domain",
		Tags:        []string{"Domain"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnlinkDomain)
}

// LinkDomainRequest carries the domain to attach.
type LinkDomainRequest struct {
	Domain string `json:"domain" validate:"required,max=253" doc:"Bare hostname, e.g. cards.example.com"`
}

// LinkDomainInput wraps the link request for Huma.
type LinkDomainInput struct {
	Body LinkDomainRequest
}

// LinkDomainResponse returns the normalized linked domain.
type LinkDomainResponse struct {
	Domain string `json:"domain" doc:"Normalized domain now attached to the card"`
}

// LinkDomainOutput wraps the link response for Huma.
type LinkDomainOutput struct {
	Body LinkDomainResponse
}

func (s *Server) handleLinkDomain(ctx context.Context, input *LinkDomainInput) (*LinkDomainOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	linked, err := s.services.Domain.LinkDomain(ctx, userID, input.Body.Domain)
	if err != nil {
		return nil, err
	}

	return &LinkDomainOutput{Body: LinkDomainResponse{Domain: linked}}, nil
}

func (s *Server) handleUnlinkDomain(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Domain.UnlinkDomain(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Domain unlinked"}}, nil
}
