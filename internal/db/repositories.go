package db

import "gorm.io/gorm"

type Repositories struct {
	Users     *UserRepository
	Sessions  *SessionRepository
	Documents *DocumentRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(database),
		Sessions:  NewSessionRepository(database),
		Documents: NewDocumentRepository(database),
	}
}
