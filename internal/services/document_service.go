package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quiethollow/tandem/internal/llm"
	"github.com/quiethollow/tandem/internal/models"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrRound1Incomplete = errors.New("both partners must complete round 1 first")
	ErrRound2Incomplete = errors.New("both partners must complete all rounds first")
	ErrNotRevisable     = errors.New("only the Your Real Needs document can be revised")
	ErrEmptyFeedback    = errors.New("revision feedback is required")
)

// The original design let a hung model call block a handler forever; every
// synthesis call is bounded here instead.
const synthesisTimeout = 60 * time.Second
const synthesisMaxTokens = 4096

type DocumentStore interface {
	FindByID(documentID string) (models.Document, error)
	FindByUserAndType(userID string, documentType string) (models.Document, error)
	ListByUser(userID string) ([]models.Document, error)
	CreateIfAbsent(document *models.Document) (models.Document, error)
	ApplyDiscoveryRevision(userID string, documentID string, newContent string) (models.Document, error)
}

type DocumentUserStore interface {
	FindByID(userID string) (models.User, error)
}

// DocumentService synthesizes and stores the couple's two documents.
type DocumentService struct {
	users     DocumentUserStore
	sessions  SessionStore
	documents DocumentStore
	model     llm.Client
}

func NewDocumentService(users DocumentUserStore, sessions SessionStore, documents DocumentStore, model llm.Client) *DocumentService {
	return &DocumentService{users: users, sessions: sessions, documents: documents, model: model}
}

func (service *DocumentService) ListForUser(userID string) ([]models.Document, error) {
	return service.documents.ListByUser(userID)
}

// GetOwned mirrors SessionService.GetOwned: absence and foreign ownership
// are indistinguishable to the caller.
func (service *DocumentService) GetOwned(documentID string, userID string) (models.Document, error) {
	document, err := service.documents.FindByID(documentID)
	if err != nil || document.UserID != userID {
		return models.Document{}, ErrDocumentNotFound
	}
	return document, nil
}

// GenerateDiscovery synthesizes and persists the Your Real Needs document
// from both partners' completed Round 1 conversations. If a document already
// exists (or appears concurrently) the existing one is returned.
func (service *DocumentService) GenerateDiscovery(ctx context.Context, userID string) (models.Document, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load user: %w", err)
	}

	round1, err := service.sessions.ListByUserAndRound(userID, models.Round1)
	if err != nil {
		return models.Document{}, fmt.Errorf("load round 1 sessions: %w", err)
	}
	if len(round1) != 2 || !AllCompleted(round1) {
		return models.Document{}, ErrRound1Incomplete
	}

	sessionA := sessionForRole(round1, models.RoleA)
	sessionB := sessionForRole(round1, models.RoleB)
	if sessionA == nil || sessionB == nil {
		return models.Document{}, ErrRound1Incomplete
	}

	prompt := BuildDiscoveryPrompt(
		PartnerTranscript{PartnerName: user.PartnerAName, Turns: sessionA.Messages},
		PartnerTranscript{PartnerName: user.PartnerBName, Turns: sessionB.Messages},
	)

	content, err := service.synthesize(ctx, prompt)
	if err != nil {
		return models.Document{}, err
	}

	return service.documents.CreateIfAbsent(&models.Document{
		UserID:  userID,
		Type:    models.DocumentTypeDiscovery,
		Content: content,
		Version: 1,
	})
}

// GenerateFinalSynthesis synthesizes and persists the Your Commitments
// document from all four conversations plus the discovery content.
func (service *DocumentService) GenerateFinalSynthesis(ctx context.Context, userID string) (models.Document, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load user: %w", err)
	}

	sessions, err := service.sessions.ListByUser(userID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load sessions: %w", err)
	}
	round2 := sessionsForRound(sessions, models.Round2)
	if len(round2) != 2 || !AllCompleted(round2) {
		return models.Document{}, ErrRound2Incomplete
	}

	input := SynthesisInput{
		PartnerAName: user.PartnerAName,
		PartnerBName: user.PartnerBName,
	}
	for index := range sessions {
		session := &sessions[index]
		switch {
		case session.Round == models.Round1 && session.PartnerRole == models.RoleA:
			input.Round1A = session.Messages
		case session.Round == models.Round1 && session.PartnerRole == models.RoleB:
			input.Round1B = session.Messages
		case session.Round == models.Round2 && session.PartnerRole == models.RoleA:
			input.Round2A = session.Messages
		case session.Round == models.Round2 && session.PartnerRole == models.RoleB:
			input.Round2B = session.Messages
		}
	}

	if discovery, err := service.documents.FindByUserAndType(userID, models.DocumentTypeDiscovery); err == nil {
		input.DiscoveryContent = discovery.Content
	}

	content, err := service.synthesize(ctx, BuildSynthesisPrompt(input))
	if err != nil {
		return models.Document{}, err
	}

	return service.documents.CreateIfAbsent(&models.Document{
		UserID:  userID,
		Type:    models.DocumentTypeFinalSynthesis,
		Content: content,
		Version: 1,
	})
}

// EnsureGenerated backs POST /api/documents/generate: it returns an existing
// document untouched, validates prerequisites, and for the final synthesis
// makes sure the discovery document exists first.
func (service *DocumentService) EnsureGenerated(ctx context.Context, userID string, documentType string) (models.Document, error) {
	if existing, err := service.documents.FindByUserAndType(userID, documentType); err == nil {
		return existing, nil
	}

	if documentType == models.DocumentTypeDiscovery {
		return service.GenerateDiscovery(ctx, userID)
	}

	sessions, err := service.sessions.ListByUser(userID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load sessions: %w", err)
	}
	if len(sessions) != 4 || !AllCompleted(sessions) {
		return models.Document{}, ErrRound2Incomplete
	}

	// Dependency order: the final synthesis always builds on a discovery
	// document, generating one first if it is somehow missing.
	if _, err := service.documents.FindByUserAndType(userID, models.DocumentTypeDiscovery); err != nil {
		if _, err := service.GenerateDiscovery(ctx, userID); err != nil {
			return models.Document{}, err
		}
	}

	return service.GenerateFinalSynthesis(ctx, userID)
}

// Revise regenerates an owned discovery document around the partner's
// feedback, bumps its version, and resets the couple's Round 2 progress.
func (service *DocumentService) Revise(ctx context.Context, documentID string, userID string, feedback string) (models.Document, error) {
	document, err := service.GetOwned(documentID, userID)
	if err != nil {
		return models.Document{}, err
	}
	if document.Type != models.DocumentTypeDiscovery {
		return models.Document{}, ErrNotRevisable
	}

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return models.Document{}, ErrEmptyFeedback
	}

	newContent, err := service.synthesize(ctx, BuildRevisionPrompt(document.Content, feedback))
	if err != nil {
		return models.Document{}, err
	}

	return service.documents.ApplyDiscoveryRevision(userID, documentID, newContent)
}

func (service *DocumentService) synthesize(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	content, err := service.model.Complete(callCtx, "", []llm.Turn{{Role: llm.RoleUser, Content: prompt}}, synthesisMaxTokens)
	if err != nil {
		return "", fmt.Errorf("synthesize document: %w", err)
	}
	return content, nil
}

func sessionForRole(sessions []models.Session, role string) *models.Session {
	for index := range sessions {
		if sessions[index].PartnerRole == role {
			return &sessions[index]
		}
	}
	return nil
}

func sessionsForRound(sessions []models.Session, round string) []models.Session {
	matched := make([]models.Session, 0, 2)
	for _, session := range sessions {
		if session.Round == round {
			matched = append(matched, session)
		}
	}
	return matched
}
