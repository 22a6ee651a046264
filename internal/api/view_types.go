package api

import (
	"time"

	"github.com/quiethollow/tandem/internal/models"
)

// The wire types keep the JSON surface stable and camelCased regardless of
// how the storage models evolve.

type userView struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	PartnerAName      string     `json:"partnerAName"`
	PartnerBName      string     `json:"partnerBName"`
	PartnerAGender    string     `json:"partnerAGender"`
	PartnerBGender    string     `json:"partnerBGender"`
	DiscoveryViewedAt *time.Time `json:"discoveryViewedAt"`
}

type sessionView struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"userId"`
	PartnerRole      string                 `json:"partnerRole"`
	Round            string                 `json:"round"`
	Status           string                 `json:"status"`
	Messages         []models.ChatTurn      `json:"messages"`
	QuestionCount    int                    `json:"questionCount"`
	Insights         models.SessionInsights `json:"insights"`
	SelectedGoals    []string               `json:"selectedGoals"`
	SprintPreference string                 `json:"sprintPreference,omitempty"`
	StartedAt        *time.Time             `json:"startedAt"`
	CompletedAt      *time.Time             `json:"completedAt"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

type documentView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func buildUserView(user *models.User) userView {
	return userView{
		ID:                user.ID,
		Email:             user.Email,
		PartnerAName:      user.PartnerAName,
		PartnerBName:      user.PartnerBName,
		PartnerAGender:    user.PartnerAGender,
		PartnerBGender:    user.PartnerBGender,
		DiscoveryViewedAt: user.DiscoveryViewedAt,
	}
}

func buildSessionView(session *models.Session) sessionView {
	messages := []models.ChatTurn(session.Messages)
	if messages == nil {
		messages = []models.ChatTurn{}
	}
	return sessionView{
		ID:               session.ID,
		UserID:           session.UserID,
		PartnerRole:      session.PartnerRole,
		Round:            session.Round,
		Status:           session.Status,
		Messages:         messages,
		QuestionCount:    session.QuestionCount,
		Insights:         session.Insights.Data(),
		SelectedGoals:    []string(session.SelectedGoals),
		SprintPreference: session.SprintPreference,
		StartedAt:        session.StartedAt,
		CompletedAt:      session.CompletedAt,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
}

func buildSessionViews(sessions []models.Session) []sessionView {
	views := make([]sessionView, 0, len(sessions))
	for index := range sessions {
		views = append(views, buildSessionView(&sessions[index]))
	}
	return views
}

func buildDocumentView(document *models.Document) documentView {
	return documentView{
		ID:        document.ID,
		UserID:    document.UserID,
		Type:      document.Type,
		Title:     document.Title(),
		Content:   document.Content,
		Version:   document.Version,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}

func buildDocumentViews(documents []models.Document) []documentView {
	views := make([]documentView, 0, len(documents))
	for index := range documents {
		views = append(views, buildDocumentView(&documents[index]))
	}
	return views
}
