package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale           = "MALE"
	GenderFemale         = "FEMALE"
	GenderNonBinary      = "NON_BINARY"
	GenderPreferNotToSay = "PREFER_NOT_TO_SAY"
)

// User is one record per couple, not per person. The two partners share the
// account and are addressed by partner role (A/B) everywhere else.
type User struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"uniqueIndex;not null"`
	PasswordHash      string `gorm:"not null"`
	PartnerAName      string `gorm:"not null"`
	PartnerBName      string `gorm:"not null"`
	PartnerAGender    string `gorm:"not null;default:PREFER_NOT_TO_SAY"`
	PartnerBGender    string `gorm:"not null;default:PREFER_NOT_TO_SAY"`
	DiscoveryViewedAt *time.Time
	CreatedAt         time.Time `gorm:"not null"`
}

func (user *User) BeforeCreate(tx *gorm.DB) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return nil
}

func (user *User) PartnerName(role string) string {
	if role == RoleB {
		return user.PartnerBName
	}
	return user.PartnerAName
}

func (user *User) OtherPartnerName(role string) string {
	if role == RoleB {
		return user.PartnerAName
	}
	return user.PartnerBName
}

func (user *User) OtherPartnerGender(role string) string {
	if role == RoleB {
		return user.PartnerAGender
	}
	return user.PartnerBGender
}

func ValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderNonBinary, GenderPreferNotToSay:
		return true
	default:
		return false
	}
}
