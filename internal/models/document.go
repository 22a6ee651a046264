package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DocumentTypeDiscovery      = "DISCOVERY"
	DocumentTypeFinalSynthesis = "FINAL_SYNTHESIS"
)

// Document is a synthesized markdown document. At most one exists per
// (user, type); the unique index backs the repository's
// create-or-return-existing behavior under concurrent generation.
type Document struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"not null;index;uniqueIndex:uidx_user_doc_type"`
	Type      string `gorm:"not null;uniqueIndex:uidx_user_doc_type"`
	Content   string `gorm:"not null"`
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (document *Document) BeforeCreate(tx *gorm.DB) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	return nil
}

func ValidDocumentType(documentType string) bool {
	return documentType == DocumentTypeDiscovery || documentType == DocumentTypeFinalSynthesis
}

// Title returns the display title used on the document page and in the
// exported PDF footer.
func (document *Document) Title() string {
	if document.Type == DocumentTypeFinalSynthesis {
		return "Your Commitments"
	}
	return "Your Real Needs"
}

// PDFFileName is the attachment name for the exported PDF.
func (document *Document) PDFFileName() string {
	if document.Type == DocumentTypeFinalSynthesis {
		return "your-commitments.pdf"
	}
	return "your-real-needs.pdf"
}
