package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by state transitions.
const (
	NotificationProviderVerified    = "provider_verified"
	NotificationProviderRejected    = "provider_rejected"
	NotificationProviderReverted    = "provider_reverted"
	NotificationProviderResubmitted = "provider_resubmitted"
	NotificationNewApplication      = "new_application"
	NotificationApplicationStatus   = "application_status"
	NotificationComplaintReviewed   = "complaint_reviewed"
)

// Notification is an append-only record for one recipient.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index;not null" json:"userId"`
	Type      string            `gorm:"type:varchar(40);not null" json:"type"`
	Message   string            `gorm:"not null" json:"message"`
	Data      datatypes.JSONMap `json:"data"`
	Read      bool              `gorm:"index;default:false" json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
}
