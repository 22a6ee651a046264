package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/models"
	"github.com/quiethollow/tandem/internal/services"
)

type sessionPatchInput struct {
	Messages         *[]models.ChatTurn      `json:"messages"`
	Status           *string                 `json:"status"`
	QuestionCount    *int                    `json:"questionCount"`
	Insights         *models.SessionInsights `json:"insights"`
	StartedAt        *time.Time              `json:"startedAt"`
	CompletedAt      *time.Time              `json:"completedAt"`
	SelectedGoals    *[]string               `json:"selectedGoals"`
	SprintPreference *string                 `json:"sprintPreference"`
}

func (handler *Handler) GetSessions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	sessions, err := handler.sessionService.ListForUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load sessions")
	}
	return c.JSON(fiber.Map{"sessions": buildSessionViews(sessions)})
}

func (handler *Handler) GetSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	session, err := handler.sessionService.GetOwned(c.Params("id"), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}
	return c.JSON(fiber.Map{"session": buildSessionView(&session)})
}

func (handler *Handler) UpdateSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input sessionPatchInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	patch := services.SessionPatch{
		Messages:         input.Messages,
		Status:           input.Status,
		QuestionCount:    input.QuestionCount,
		Insights:         input.Insights,
		StartedAt:        input.StartedAt,
		CompletedAt:      input.CompletedAt,
		SelectedGoals:    input.SelectedGoals,
		SprintPreference: input.SprintPreference,
	}

	handler.ensureDependencies()
	session, err := handler.sessionService.ApplyPatch(c.Params("id"), user.ID, patch)
	if err != nil {
		return sessionServiceError(c, err)
	}

	// Trigger on every COMPLETED patch, not only on the transition, so a
	// failed generation run is retried the next time the client reports
	// completion. The trigger itself is idempotent.
	if input.Status != nil && *input.Status == models.StatusCompleted {
		userID := user.ID
		handler.tasks.Submit("document-generation", func(ctx context.Context) error {
			return handler.documentService.CheckAndGenerateDocuments(ctx, userID)
		})
	}

	return c.JSON(fiber.Map{"session": buildSessionView(&session)})
}

func sessionServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apiError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, services.ErrInvalidStatus):
		return apiError(c, fiber.StatusBadRequest, "invalid session status")
	case errors.Is(err, services.ErrStatusRegression):
		return apiError(c, fiber.StatusBadRequest, "session status cannot move backward")
	case errors.Is(err, services.ErrRound2Locked):
		return apiError(c, fiber.StatusBadRequest, "both partners must complete round 1 first")
	default:
		return apiError(c, fiber.StatusInternalServerError, "failed to update session")
	}
}
