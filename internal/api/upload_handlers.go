package api

import (
	"context"
	"encoding/json/v2"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/http/response"
)

// maxUploadBody caps the request body read for uploads. Slightly above the
// service-level limit so oversized files get a clean validation error
// instead of a connection reset.
const maxUploadBody = 26 << 20

func (s *Server) registerUploadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUpload",
		Method:      http.MethodDelete,
		Path:        "/api/v1/uploads/{filename}",
		Summary:     "Delete an uploaded file",
		Tags:        []string{"Uploads"},
	}, s.handleDeleteUpload)
}

// DeleteUploadInput carries the filename path parameter.
type DeleteUploadInput struct {
	Filename string `path:"filename" doc:"Stored filename"`
}

func (s *Server) handleDeleteUpload(_ context.Context, input *DeleteUploadInput) (*MessageOutput, error) {
	if err := s.services.Upload.Delete(input.Filename); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Deleted"}}, nil
}

// handleUpload stores a media file posted as a raw body. Registered
// directly on the router so the binary body bypasses huma's JSON parsing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBody))
	if err != nil {
		response.BadRequest(w, "failed to read upload body", s.logger)
		return
	}

	result, err := s.services.Upload.Upload(r.Context(), r.Header.Get("Content-Type"), data)
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			response.Error(w, domainErr.HTTPStatus(), domainErr.Message, s.logger)
			return
		}
		s.logger.Error("upload failed", "error", err)
		response.InternalError(w, "failed to store upload", s.logger)
		return
	}

	writeEnvelope(w, http.StatusCreated, result, s.logger)
}

// handleServeUpload serves a stored media file.
func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	data, contentType, err := s.services.Upload.Get(filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=604800, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// writeEnvelope writes data in the same versioned envelope huma responses
// use, keeping raw routes consistent with the rest of the API.
func writeEnvelope(w http.ResponseWriter, status int, data any, logger interface{ Error(msg string, args ...any) }) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	env := Envelope{
		V:       envelopeVersion,
		Success: status < 400,
		Data:    data,
	}
	if err := json.MarshalWrite(w, env); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}
