package db

import (
	"errors"

	"github.com/quiethollow/tandem/internal/models"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	database *gorm.DB
}

func NewDocumentRepository(database *gorm.DB) *DocumentRepository {
	return &DocumentRepository{database: database}
}

func (repo *DocumentRepository) FindByID(documentID string) (models.Document, error) {
	var document models.Document
	if err := repo.database.First(&document, "id = ?", documentID).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (repo *DocumentRepository) FindByUserAndType(userID string, documentType string) (models.Document, error) {
	var document models.Document
	if err := repo.database.
		Where("user_id = ? AND type = ?", userID, documentType).
		First(&document).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (repo *DocumentRepository) ListByUser(userID string) ([]models.Document, error) {
	documents := make([]models.Document, 0, 2)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// CreateIfAbsent inserts the document unless one of the same (user, type)
// already exists, and returns the surviving row either way. The unique index
// on (user_id, type) makes concurrent generation converge on a single
// document instead of duplicating it: when the insert loses the race, the
// winner's row is fetched and returned.
func (repo *DocumentRepository) CreateIfAbsent(document *models.Document) (models.Document, error) {
	existing, err := repo.FindByUserAndType(document.UserID, document.Type)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Document{}, err
	}

	if createErr := repo.database.Create(document).Error; createErr != nil {
		winner, findErr := repo.FindByUserAndType(document.UserID, document.Type)
		if findErr == nil {
			return winner, nil
		}
		return models.Document{}, createErr
	}
	return *document, nil
}

// ApplyDiscoveryRevision swaps in the regenerated content, bumps the
// version, resets both Round 2 sessions and clears the first-view stamp in
// one transaction, so a failed revision leaves nothing half-reset.
func (repo *DocumentRepository) ApplyDiscoveryRevision(userID string, documentID string, newContent string) (models.Document, error) {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Document{}).
			Where("id = ?", documentID).
			Updates(map[string]any{
				"content": newContent,
				"version": gorm.Expr("version + 1"),
			}).Error; err != nil {
			return err
		}

		if err := resetRound2Sessions(tx, userID); err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("discovery_viewed_at", nil).Error
	})
	if err != nil {
		return models.Document{}, err
	}
	return repo.FindByID(documentID)
}
