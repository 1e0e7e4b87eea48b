package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "convertHTML",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/html",
		Summary:     "Convert HTML to markdown",
		Description: "Converts pasted HTML into markdown for story content and text widgets. Plain text passes through unchanged.",
		Tags:        []string{"Import"},
	}, s.handleConvertHTML)

	huma.Register(s.api, huma.Operation{
		OperationID: "importAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/avatar",
		Summary:     "Import a remote avatar",
		Description: "Downloads a remote profile image into local storage and points the working card at it",
		Tags:        []string{"Import"},
	}, s.handleImportAvatar)
}

// ConvertHTMLRequest carries pasted HTML.
type ConvertHTMLRequest struct {
	HTML string `json:"html" validate:"required" doc:"HTML or plain text to convert"`
}

// ConvertHTMLInput wraps the convert request for Huma.
type ConvertHTMLInput struct {
	Body ConvertHTMLRequest
}

// ConvertHTMLResponse returns the converted markdown.
type ConvertHTMLResponse struct {
	Markdown string `json:"markdown" doc:"Converted markdown"`
}

// ConvertHTMLOutput wraps the convert response for Huma.
type ConvertHTMLOutput struct {
	Body ConvertHTMLResponse
}

// ImportAvatarRequest carries the remote image URL.
type ImportAvatarRequest struct {
	URL string `json:"url" validate:"required,url,max=2000" doc:"Remote image URL"`
}

// ImportAvatarInput wraps the import request for Huma.
type ImportAvatarInput struct {
	Body ImportAvatarRequest
}

// ImportAvatarResponse returns the local path of the stored image.
type ImportAvatarResponse struct {
	Path string `json:"path" doc:"Local path now set as the card's profile image"`
}

// ImportAvatarOutput wraps the import response for Huma.
type ImportAvatarOutput struct {
	Body ImportAvatarResponse
}

func (s *Server) handleConvertHTML(_ context.Context, input *ConvertHTMLInput) (*ConvertHTMLOutput, error) {
	markdown, err := s.services.Import.ConvertHTML(input.Body.HTML)
	if err != nil {
		return nil, err
	}
	return &ConvertHTMLOutput{Body: ConvertHTMLResponse{Markdown: markdown}}, nil
}

func (s *Server) handleImportAvatar(ctx context.Context, input *ImportAvatarInput) (*ImportAvatarOutput, error) {
	path, err := s.services.Import.ImportAvatar(ctx, Identity(ctx), input.Body.URL)
	if err != nil {
		return nil, err
	}
	return &ImportAvatarOutput{Body: ImportAvatarResponse{Path: path}}, nil
}
