package models

import "time"

// ApplicationStatus is the lifecycle label of an application.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "Applied"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusWithdrawn ApplicationStatus = "Withdrawn"
)

// ApplicationStatuses lists every valid status in display order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn,
}

// ParseApplicationStatus validates a raw status value.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Application binds one applicant to one job. ProviderID is copied from the
// job at creation and never changes.
type Application struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"uniqueIndex:idx_application_user_job;not null" json:"userId"`
	User           *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JobID          uint              `gorm:"uniqueIndex:idx_application_user_job;index;not null" json:"jobId"`
	Job            *Job              `gorm:"foreignKey:JobID" json:"job,omitempty"`
	ProviderID     uint              `gorm:"index;not null" json:"providerId"`
	Status         ApplicationStatus `gorm:"type:varchar(20);index;not null;default:Applied" json:"status"`
	AppliedDate    time.Time         `json:"appliedDate"`
	InterviewDate  *time.Time        `json:"interviewDate,omitempty"`
	InterviewNotes string            `json:"interviewNotes,omitempty"`
	OfferDetails   string            `json:"offerDetails,omitempty"`
	Feedback       string            `json:"feedback,omitempty"`
	CoverLetter    string            `gorm:"type:text" json:"coverLetter,omitempty"`
	Rating         *int              `json:"rating,omitempty"`
	HasResume      bool              `gorm:"-" json:"hasResume"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ApplicationStats partitions one applicant's applications by status.
type ApplicationStats struct {
	TotalApplications int64 `json:"totalApplications"`
	Applied           int64 `json:"applied"`
	Interviews        int64 `json:"interviews"`
	Offers            int64 `json:"offers"`
	Rejected          int64 `json:"rejected"`
	Withdrawn         int64 `json:"withdrawn"`
}
