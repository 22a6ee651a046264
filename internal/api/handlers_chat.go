package api

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/llm"
	"github.com/quiethollow/tandem/internal/models"
	"github.com/quiethollow/tandem/internal/services"
)

// Chat produces the next coach reply for a session. A null message asks for
// the round's scripted opening line and never reaches the model. The handler
// does not persist conversation state; the client reports it back through
// the session PATCH endpoint. The one exception is the Round 2 revision
// sentinel, which is flagged on the session's insights as soon as it is
// seen.
func (handler *Handler) Chat(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	result := handler.chatLimiter.Check(user.ID)
	setRateLimitHeaders(c, handler.chatLimiter.Limit(), result)
	if !result.Allowed {
		return apiError(c, fiber.StatusTooManyRequests, "too many requests, please slow down")
	}

	var input chatInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	session, err := handler.sessionService.GetOwned(input.SessionID, user.ID)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}
	if err := handler.sessionService.EnsureRound2Unlocked(&session); err != nil {
		if errors.Is(err, services.ErrRound2Locked) {
			return apiError(c, fiber.StatusBadRequest, "both partners must complete round 1 first")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to load sessions")
	}

	partnerName := user.PartnerName(session.PartnerRole)
	otherPartnerName := user.OtherPartnerName(session.PartnerRole)

	if input.Message == nil {
		return c.JSON(fiber.Map{
			"response":        services.BuildOpeningMessage(partnerName, otherPartnerName, session.Round),
			"questionCount":   1,
			"sessionComplete": false,
		})
	}

	system := services.BuildSystemPrompt(
		partnerName,
		otherPartnerName,
		services.PronounsFor(user.OtherPartnerGender(session.PartnerRole)),
		session.Round,
		session.QuestionCount,
	)

	turns := make([]llm.Turn, 0, len(session.Messages)+1)
	for _, message := range session.Messages {
		turns = append(turns, llm.Turn{Role: message.Role, Content: message.Content})
	}
	turns = append(turns, llm.Turn{Role: models.TurnRoleUser, Content: *input.Message})

	ctx, cancel := context.WithTimeout(c.UserContext(), chatTimeout)
	defer cancel()

	raw, err := handler.model.Complete(ctx, system, turns, chatMaxTokens)
	if err != nil {
		log.Printf("chat completion failed for session %s: %v", session.ID, err)
		return apiError(c, fiber.StatusInternalServerError, "failed to get coach response")
	}

	assistantTurns := services.CountAssistantTurns(session.Messages) + 1
	assessment := services.AssessAssistantReply(raw, session.Round, assistantTurns)

	if assessment.RevisionRequested {
		if err := handler.sessionService.FlagRevisionRequested(session.ID); err != nil {
			log.Printf("failed to flag revision request on session %s: %v", session.ID, err)
		}
	}

	questionCount := session.QuestionCount
	if assessment.QuestionAsked {
		questionCount++
	}

	return c.JSON(fiber.Map{
		"response":          assessment.Text,
		"questionCount":     questionCount,
		"sessionComplete":   assessment.SessionComplete,
		"revisionRequested": assessment.RevisionRequested,
	})
}

func setRateLimitHeaders(c *fiber.Ctx, limit int, result services.RateLimitResult) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(result.ResetIn.Seconds()))))
}
