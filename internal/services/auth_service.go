package services

import (
	"errors"

	"github.com/quiethollow/tandem/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID string) (models.User, error)
	CreateWithSessions(user *models.User) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates the account plus its four coaching sessions in one
// transaction. Input must already be validated and normalized.
func (service *AuthService) Register(input RegistrationInput) (models.User, error) {
	exists, err := service.users.ExistsByNormalizedEmail(input.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:          input.Email,
		PasswordHash:   string(hash),
		PartnerAName:   input.PartnerAName,
		PartnerBName:   input.PartnerBName,
		PartnerAGender: input.PartnerAGender,
		PartnerBGender: input.PartnerBGender,
	}
	if err := service.users.CreateWithSessions(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies the credentials, returning ErrInvalidCredentials for
// both unknown emails and wrong passwords.
func (service *AuthService) Authenticate(email string, password string) (models.User, error) {
	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID string) (models.User, error) {
	return service.users.FindByID(userID)
}
