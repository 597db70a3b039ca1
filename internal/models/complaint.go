package models

import "time"

// ComplaintStatus tracks admin review of a complaint.
type ComplaintStatus string

const (
	ComplaintOpen     ComplaintStatus = "open"
	ComplaintInReview ComplaintStatus = "in_review"
	ComplaintResolved ComplaintStatus = "resolved"
	ComplaintRejected ComplaintStatus = "rejected"
)

// ParseComplaintStatus validates a raw status value.
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	switch v := ComplaintStatus(s); v {
	case ComplaintOpen, ComplaintInReview, ComplaintResolved, ComplaintRejected:
		return v, true
	}
	return "", false
}

// ComplaintTarget is the loosely-typed kind of thing a complaint refers to.
type ComplaintTarget string

const (
	TargetProvider    ComplaintTarget = "provider"
	TargetJob         ComplaintTarget = "job"
	TargetApplication ComplaintTarget = "application"
	TargetUser        ComplaintTarget = "user"
)

// ParseComplaintTarget validates a raw target type.
func ParseComplaintTarget(s string) (ComplaintTarget, bool) {
	switch v := ComplaintTarget(s); v {
	case TargetProvider, TargetJob, TargetApplication, TargetUser:
		return v, true
	}
	return "", false
}

// Complaint is filed by any user and reviewed by admins. TargetID is not
// checked against the target table.
type Complaint struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"userId"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TargetType    ComplaintTarget `gorm:"type:varchar(20);index;not null" json:"targetType"`
	TargetID      string          `gorm:"type:varchar(64)" json:"targetId,omitempty"`
	Message       string          `gorm:"type:text;not null" json:"message"`
	Status        ComplaintStatus `gorm:"type:varchar(20);index;not null;default:open" json:"status"`
	AdminResponse string          `gorm:"type:text" json:"adminResponse,omitempty"`
	ReviewedBy    *uint           `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
