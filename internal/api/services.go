package api

import (
	"github.com/linkcardapp/linkcard-server/internal/search"
	"github.com/linkcardapp/linkcard-server/internal/service"
	"github.com/linkcardapp/linkcard-server/internal/templates"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Session   *service.SessionService
	Card      *service.CardService
	Analytics *service.AnalyticsService
	Upload    *service.UploadService
	Import    *service.ImportService
	Domain    *service.DomainService

	Search    *search.SearchIndex
	Templates *templates.Registry
}
