package api

import (
	"github.com/quiethollow/tandem/internal/db"
	"github.com/quiethollow/tandem/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.sessionService = services.NewSessionService(handler.repositories.Sessions)
	handler.documentService = services.NewDocumentService(
		handler.repositories.Users,
		handler.repositories.Sessions,
		handler.repositories.Documents,
		handler.model,
	)
	return handler
}

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}

	if handler.authService == nil {
		handler.authService = services.NewAuthService(handler.repositories.Users)
	}
	if handler.sessionService == nil {
		handler.sessionService = services.NewSessionService(handler.repositories.Sessions)
	}
	if handler.documentService == nil {
		handler.documentService = services.NewDocumentService(
			handler.repositories.Users,
			handler.repositories.Sessions,
			handler.repositories.Documents,
			handler.model,
		)
	}
}
