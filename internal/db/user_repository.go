package db

import (
	"time"

	"github.com/quiethollow/tandem/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID string) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, "id = ?", userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// CreateWithSessions creates the couple's account together with its four
// coaching sessions, one per (partner role, round) pair. All rows land in
// one transaction so a half-registered account can never exist.
func (repo *UserRepository) CreateWithSessions(user *models.User) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		sessions := make([]models.Session, 0, 4)
		for _, round := range []string{models.Round1, models.Round2} {
			for _, role := range []string{models.RoleA, models.RoleB} {
				sessions = append(sessions, models.Session{
					UserID:      user.ID,
					PartnerRole: role,
					Round:       round,
					Status:      models.StatusNotStarted,
					Messages:    []models.ChatTurn{},
				})
			}
		}
		for index := range sessions {
			if err := tx.Create(&sessions[index]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkDiscoveryViewed stamps the first time the discovery document was
// opened. Later views keep the original timestamp.
func (repo *UserRepository) MarkDiscoveryViewed(userID string, viewedAt time.Time) error {
	return repo.database.Model(&models.User{}).
		Where("id = ? AND discovery_viewed_at IS NULL", userID).
		Update("discovery_viewed_at", viewedAt).Error
}
