package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerKind tags what an attachment belongs to.
type OwnerKind string

const (
	OwnerUserResume        OwnerKind = "user_resume"
	OwnerUserImage         OwnerKind = "user_image"
	OwnerProviderDoc       OwnerKind = "provider_doc"
	OwnerProviderLogo      OwnerKind = "provider_logo"
	OwnerApplicationResume OwnerKind = "application_resume"
)

// Attachment is a named binary blob. ID is stable across list mutations;
// Position orders multi-valued owners such as provider documents.
type Attachment struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerKind   OwnerKind `gorm:"type:varchar(32);index:idx_attachment_owner,priority:1;not null" json:"-"`
	OwnerID     uint      `gorm:"index:idx_attachment_owner,priority:2;not null" json:"-"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Filename    string    `gorm:"not null" json:"filename"`
	ContentType string    `gorm:"not null" json:"contentType"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"uploadedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Attachment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Size == 0 {
		a.Size = int64(len(a.Data))
	}
	return nil
}

// Upload is an attachment that has not been persisted yet.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ToAttachment binds the upload to an owner.
func (u Upload) ToAttachment(kind OwnerKind, ownerID uint) *Attachment {
	return &Attachment{
		OwnerKind:   kind,
		OwnerID:     ownerID,
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Data:        u.Data,
		Size:        int64(len(u.Data)),
	}
}
