package services

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/quiethollow/tandem/internal/models"
)

var ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")

// Letters (accented included), spaces, hyphens and apostrophes: keeps
// injected markup out of names that end up inside prompts and PDFs.
var partnerNameRegex = regexp.MustCompile(`^[\p{L}\s\-']+$`)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > 254 {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

func ValidatePasswordLength(password string) error {
	length := len([]rune(password))
	if length < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if length > 128 {
		return errors.New("password is too long")
	}
	return nil
}

func ValidatePartnerName(name string, fieldName string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len([]rune(trimmed)) > 50 {
		return fmt.Errorf("%s is too long (max 50 characters)", fieldName)
	}
	if !partnerNameRegex.MatchString(trimmed) {
		return fmt.Errorf("%s can only contain letters, spaces, hyphens, and apostrophes", fieldName)
	}
	return nil
}

func ValidatePartnerGender(gender string, fieldName string) error {
	if gender == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if !models.ValidGender(gender) {
		return fmt.Errorf("%s must be a valid option", fieldName)
	}
	return nil
}

// RegistrationInput is the normalized registration payload.
type RegistrationInput struct {
	Email          string
	Password       string
	PartnerAName   string
	PartnerBName   string
	PartnerAGender string
	PartnerBGender string
}

// ValidateRegistrationInput normalizes and checks every field, returning the
// first failure as a client-facing message.
func ValidateRegistrationInput(input *RegistrationInput) error {
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return errors.New("please enter a valid email address")
	}
	input.Email = email

	if err := ValidatePasswordLength(input.Password); err != nil {
		return err
	}
	if err := ValidatePartnerName(input.PartnerAName, "partner 1 name"); err != nil {
		return err
	}
	if err := ValidatePartnerName(input.PartnerBName, "partner 2 name"); err != nil {
		return err
	}
	if err := ValidatePartnerGender(input.PartnerAGender, "partner 1 gender"); err != nil {
		return err
	}
	if err := ValidatePartnerGender(input.PartnerBGender, "partner 2 gender"); err != nil {
		return err
	}

	input.PartnerAName = strings.TrimSpace(input.PartnerAName)
	input.PartnerBName = strings.TrimSpace(input.PartnerBName)
	return nil
}
