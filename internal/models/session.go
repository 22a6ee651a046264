package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleA = "A"
	RoleB = "B"

	Round1 = "ROUND_1"
	Round2 = "ROUND_2"

	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// ChatTurn is one entry of a session's conversation log.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionInsights is the typed form of the session's free-form insights map.
// RevisionRequested is set when the Round 2 conversation carries the
// revision sentinel; Notes holds anything else the client records.
type SessionInsights struct {
	RevisionRequested bool              `json:"revision_requested,omitempty"`
	Notes             map[string]string `json:"notes,omitempty"`
}

// Session is one partner's conversation for one round. Exactly four exist
// per user, created together at registration.
type Session struct {
	ID               string                             `gorm:"primaryKey;size:36"`
	UserID           string                             `gorm:"not null;index;uniqueIndex:uidx_user_role_round"`
	PartnerRole      string                             `gorm:"not null;uniqueIndex:uidx_user_role_round"`
	Round            string                             `gorm:"not null;uniqueIndex:uidx_user_role_round"`
	Status           string                             `gorm:"not null;default:NOT_STARTED"`
	Messages         datatypes.JSONSlice[ChatTurn]      `gorm:"not null"`
	QuestionCount    int                                `gorm:"not null;default:0"`
	Insights         datatypes.JSONType[SessionInsights]
	SelectedGoals    datatypes.JSONSlice[string]
	SprintPreference string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (session *Session) BeforeCreate(tx *gorm.DB) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return nil
}

func (session *Session) IsCompleted() bool {
	return session.Status == StatusCompleted
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func ValidRound(round string) bool {
	return round == Round1 || round == Round2
}

func ValidPartnerRole(role string) bool {
	return role == RoleA || role == RoleB
}
