package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

func (s *Server) registerTemplateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates",
		Summary:     "List templates",
		Description: "Returns all available card templates (built-in presets plus any loaded from the template directory)",
		Tags:        []string{"Templates"},
	}, s.handleListTemplates)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTemplate",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Get a template",
		Tags:        []string{"Templates"},
	}, s.handleGetTemplate)
}

// TemplateListOutput wraps the template list for Huma.
type TemplateListOutput struct {
	Body struct {
		Templates []domain.Template `json:"templates"`
	}
}

// TemplateOutput wraps a single template for Huma.
type TemplateOutput struct {
	Body domain.Template
}

func (s *Server) handleListTemplates(_ context.Context, _ *struct{}) (*TemplateListOutput, error) {
	out := &TemplateListOutput{}
	out.Body.Templates = s.services.Templates.List()
	return out, nil
}

func (s *Server) handleGetTemplate(_ context.Context, input *IDInput) (*TemplateOutput, error) {
	tmpl, ok := s.services.Templates.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("Template not found")
	}
	return &TemplateOutput{Body: tmpl}, nil
}
