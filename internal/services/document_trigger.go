package services

import (
	"context"
	"fmt"
	"log"

	"github.com/quiethollow/tandem/internal/models"
)

// CheckAndGenerateDocuments inspects all four sessions and generates
// whichever documents their completion state allows. It runs detached from
// any request (via the background runner), so every failure is logged and
// swallowed; the next status-completing update re-evaluates from scratch.
// Repeated invocation is idempotent: CreateIfAbsent pins at most one
// document per (user, type).
func (service *DocumentService) CheckAndGenerateDocuments(ctx context.Context, userID string) error {
	sessions, err := service.sessions.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("load sessions for %s: %w", userID, err)
	}

	round1 := sessionsForRound(sessions, models.Round1)
	round2 := sessionsForRound(sessions, models.Round2)
	round1Done := len(round1) == 2 && AllCompleted(round1)
	round2Done := len(round2) == 2 && AllCompleted(round2)

	if !round1Done {
		return nil
	}

	if !service.documentExists(userID, models.DocumentTypeDiscovery) {
		if _, err := service.GenerateDiscovery(ctx, userID); err != nil {
			log.Printf("discovery generation failed for user %s: %v", userID, err)
			// Without a discovery document the final synthesis has nothing
			// to build on; stop here and let the next event retry both.
			return nil
		}
		log.Printf("Your Real Needs document generated for user %s", userID)
	}

	if !round2Done {
		return nil
	}

	if !service.documentExists(userID, models.DocumentTypeFinalSynthesis) {
		if _, err := service.GenerateFinalSynthesis(ctx, userID); err != nil {
			log.Printf("final synthesis generation failed for user %s: %v", userID, err)
			return nil
		}
		log.Printf("Your Commitments document generated for user %s", userID)
	}

	return nil
}

// documentExists treats lookup failures as absence; CreateIfAbsent still
// guarantees at most one row if generation proceeds.
func (service *DocumentService) documentExists(userID string, documentType string) bool {
	_, err := service.documents.FindByUserAndType(userID, documentType)
	return err == nil
}
