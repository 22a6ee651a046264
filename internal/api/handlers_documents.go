package api

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/models"
	"github.com/quiethollow/tandem/internal/services"
)

func (handler *Handler) GetDocuments(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	documents, err := handler.documentService.ListForUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load documents")
	}
	return c.JSON(fiber.Map{"documents": buildDocumentViews(documents)})
}

// GenerateDocument is the synchronous generation path: it returns the
// existing document when one is already there, otherwise validates the
// round prerequisites and synthesizes a new one.
func (handler *Handler) GenerateDocument(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input generateDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if !models.ValidDocumentType(input.Type) {
		return apiError(c, fiber.StatusBadRequest, "invalid document type")
	}

	handler.ensureDependencies()
	document, err := handler.documentService.EnsureGenerated(c.UserContext(), user.ID, input.Type)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRound1Incomplete):
			return apiError(c, fiber.StatusBadRequest, "both partners must complete round 1 first")
		case errors.Is(err, services.ErrRound2Incomplete):
			return apiError(c, fiber.StatusBadRequest, "both partners must complete all rounds first")
		default:
			log.Printf("document generation failed for user %s: %v", user.ID, err)
			return apiError(c, fiber.StatusInternalServerError, "failed to generate document")
		}
	}

	return c.JSON(fiber.Map{"document": buildDocumentView(&document)})
}

func (handler *Handler) ReviseDocument(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input reviseDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	document, err := handler.documentService.Revise(c.UserContext(), c.Params("id"), user.ID, strings.TrimSpace(input.Feedback))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			return apiError(c, fiber.StatusNotFound, "document not found")
		case errors.Is(err, services.ErrNotRevisable):
			return apiError(c, fiber.StatusBadRequest, "only the Your Real Needs document can be revised")
		case errors.Is(err, services.ErrEmptyFeedback):
			return apiError(c, fiber.StatusBadRequest, "revision feedback is required")
		default:
			log.Printf("document revision failed for user %s: %v", user.ID, err)
			return apiError(c, fiber.StatusInternalServerError, "failed to revise document")
		}
	}

	return c.JSON(fiber.Map{
		"message":  "Document revised successfully",
		"document": buildDocumentView(&document),
	})
}

// MarkDocumentViewed records the first time the discovery document is
// opened. Later views are no-ops; the stored timestamp never moves.
func (handler *Handler) MarkDocumentViewed(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	document, err := handler.documentService.GetOwned(c.Params("id"), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "document not found")
	}

	if document.Type == models.DocumentTypeDiscovery {
		if err := handler.repositories.Users.MarkDiscoveryViewed(user.ID, time.Now().UTC()); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to record view")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ExportDocumentPDF(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	document, err := handler.documentService.GetOwned(c.Params("id"), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "document not found")
	}

	rendered, err := handler.pdfRenderer.Render(document.Title(), document.Content, user.PartnerAName, user.PartnerBName)
	if err != nil {
		log.Printf("pdf export failed for document %s: %v", document.ID, err)
		return apiError(c, fiber.StatusInternalServerError, "failed to generate PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", document.PDFFileName()))
	return c.Send(rendered)
}
