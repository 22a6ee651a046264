package services

import (
	"errors"
	"time"

	"github.com/quiethollow/tandem/internal/models"
	"gorm.io/datatypes"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidStatus    = errors.New("invalid session status")
	ErrStatusRegression = errors.New("session status cannot move backward")
	ErrRound2Locked     = errors.New("round 2 is locked until both round 1 sessions are completed")
)

type SessionStore interface {
	FindByID(sessionID string) (models.Session, error)
	ListByUser(userID string) ([]models.Session, error)
	ListByUserAndRound(userID string, round string) ([]models.Session, error)
	UpdateFields(sessionID string, updates map[string]any) (models.Session, error)
}

// SessionService owns the per-session lifecycle: ownership-checked reads,
// sparse patches and the status state machine.
type SessionService struct {
	sessions SessionStore
}

func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// SessionPatch carries only the fields the caller wants changed; nil fields
// stay untouched.
type SessionPatch struct {
	Messages         *[]models.ChatTurn
	Status           *string
	QuestionCount    *int
	Insights         *models.SessionInsights
	StartedAt        *time.Time
	CompletedAt      *time.Time
	SelectedGoals    *[]string
	SprintPreference *string
}

// GetOwned loads a session and hides both absence and foreign ownership
// behind the same error, so a caller probing ids learns nothing.
func (service *SessionService) GetOwned(sessionID string, userID string) (models.Session, error) {
	session, err := service.sessions.FindByID(sessionID)
	if err != nil || session.UserID != userID {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (service *SessionService) ListForUser(userID string) ([]models.Session, error) {
	return service.sessions.ListByUser(userID)
}

// Round1Done reports whether both partners' Round 1 sessions are completed.
func (service *SessionService) Round1Done(userID string) (bool, error) {
	sessions, err := service.sessions.ListByUserAndRound(userID, models.Round1)
	if err != nil {
		return false, err
	}
	return len(sessions) == 2 && AllCompleted(sessions), nil
}

// EnsureRound2Unlocked is the server-side Round 2 gate: it checks round-1
// completion only. The "discovery document viewed" lock is deliberately a
// client concern and is not re-checked here.
func (service *SessionService) EnsureRound2Unlocked(session *models.Session) error {
	if session.Round != models.Round2 {
		return nil
	}
	done, err := service.Round1Done(session.UserID)
	if err != nil {
		return err
	}
	if !done {
		return ErrRound2Locked
	}
	return nil
}

// ApplyPatch writes the provided fields onto an owned session. Status may
// only hold or advance; Round 2 sessions require both Round 1 sessions
// completed.
func (service *SessionService) ApplyPatch(sessionID string, userID string, patch SessionPatch) (models.Session, error) {
	session, err := service.GetOwned(sessionID, userID)
	if err != nil {
		return models.Session{}, err
	}
	if err := service.EnsureRound2Unlocked(&session); err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	updates := map[string]any{}

	if patch.Status != nil {
		next := *patch.Status
		if !models.ValidStatus(next) {
			return models.Session{}, ErrInvalidStatus
		}
		if !CanTransitionStatus(session.Status, next) {
			return models.Session{}, ErrStatusRegression
		}
		if next != session.Status {
			updates["status"] = next
			if next == models.StatusInProgress && session.StartedAt == nil && patch.StartedAt == nil {
				updates["started_at"] = now
			}
			if next == models.StatusCompleted && session.CompletedAt == nil && patch.CompletedAt == nil {
				updates["completed_at"] = now
			}
		}
	}

	if patch.Messages != nil {
		updates["messages"] = datatypes.NewJSONSlice(*patch.Messages)
	}
	if patch.QuestionCount != nil {
		updates["question_count"] = *patch.QuestionCount
	}
	if patch.Insights != nil {
		updates["insights"] = datatypes.NewJSONType(*patch.Insights)
	}
	if patch.StartedAt != nil {
		updates["started_at"] = *patch.StartedAt
	}
	if patch.CompletedAt != nil {
		updates["completed_at"] = *patch.CompletedAt
	}
	if patch.SelectedGoals != nil {
		updates["selected_goals"] = datatypes.NewJSONSlice(*patch.SelectedGoals)
	}
	if patch.SprintPreference != nil {
		updates["sprint_preference"] = *patch.SprintPreference
	}

	updated, err := service.sessions.UpdateFields(session.ID, updates)
	if err != nil {
		return models.Session{}, err
	}
	return updated, nil
}

// FlagRevisionRequested persists the Round 2 revision sentinel onto the
// session's insights, preserving whatever notes are already there.
func (service *SessionService) FlagRevisionRequested(sessionID string) error {
	session, err := service.sessions.FindByID(sessionID)
	if err != nil {
		return err
	}
	insights := session.Insights.Data()
	if insights.RevisionRequested {
		return nil
	}
	insights.RevisionRequested = true
	_, err = service.sessions.UpdateFields(sessionID, map[string]any{
		"insights": datatypes.NewJSONType(insights),
	})
	return err
}
