package db

import (
	"github.com/quiethollow/tandem/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) FindByID(sessionID string) (models.Session, error) {
	var session models.Session
	if err := repo.database.First(&session, "id = ?", sessionID).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (repo *SessionRepository) ListByUser(userID string) ([]models.Session, error) {
	sessions := make([]models.Session, 0, 4)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("round ASC, partner_role ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (repo *SessionRepository) ListByUserAndRound(userID string, round string) ([]models.Session, error) {
	sessions := make([]models.Session, 0, 2)
	if err := repo.database.
		Where("user_id = ? AND round = ?", userID, round).
		Order("partner_role ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateFields writes only the given columns, leaving everything else as is.
func (repo *SessionRepository) UpdateFields(sessionID string, updates map[string]any) (models.Session, error) {
	if len(updates) > 0 {
		if err := repo.database.Model(&models.Session{}).
			Where("id = ?", sessionID).
			Updates(updates).Error; err != nil {
			return models.Session{}, err
		}
	}
	return repo.FindByID(sessionID)
}

// resetRound2Sessions returns both Round 2 sessions to their pristine state
// after a discovery revision. Status, conversation, counters, insights and
// timestamps are cleared in a single statement so the reset is all-or-none.
func resetRound2Sessions(database *gorm.DB, userID string) error {
	return database.Model(&models.Session{}).
		Where("user_id = ? AND round = ?", userID, models.Round2).
		Updates(map[string]any{
			"status":            models.StatusNotStarted,
			"messages":          "[]",
			"question_count":    0,
			"insights":          nil,
			"selected_goals":    nil,
			"sprint_preference": "",
			"started_at":        nil,
			"completed_at":      nil,
		}).Error
}
