package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	api.Post("/chat", handler.AuthRequired, handler.Chat)

	sessions := api.Group("/sessions", handler.AuthRequired)
	sessions.Get("", handler.GetSessions)
	sessions.Get("/:id", handler.GetSession)
	sessions.Patch("/:id", handler.UpdateSession)

	documents := api.Group("/documents", handler.AuthRequired)
	documents.Get("", handler.GetDocuments)
	documents.Post("/generate", handler.GenerateDocument)
	documents.Post("/:id/revise", handler.ReviseDocument)
	documents.Post("/:id/viewed", handler.MarkDocumentViewed)
	documents.Get("/:id/pdf", handler.ExportDocumentPDF)
}
