package models

import "time"

// VerificationStatus is the admin-controlled trust state of a provider.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus validates a raw status value.
func ParseVerificationStatus(s string) (VerificationStatus, bool) {
	switch v := VerificationStatus(s); v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return v, true
	}
	return "", false
}

// Provider is the company profile owned 1:1 by a provider user.
type Provider struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	UserID             uint               `gorm:"uniqueIndex;not null" json:"userId"`
	User               *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CompanyName        string             `gorm:"not null" json:"companyName"`
	CompanyEmail       string             `json:"companyEmail"`
	CompanyPhone       string             `json:"companyPhone,omitempty"`
	CompanyWebsite     string             `json:"companyWebsite,omitempty"`
	CompanyType        string             `json:"companyType,omitempty"`
	Industry           string             `json:"industry,omitempty"`
	Location           string             `json:"location,omitempty"`
	Description        string             `json:"description,omitempty"`
	EmployeeCount      string             `json:"employeeCount,omitempty"`
	TaxID              string             `json:"taxId,omitempty"`
	BusinessLicense    string             `json:"businessLicense,omitempty"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);index;not null;default:pending" json:"verificationStatus"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	RejectionReason    string             `json:"rejectionReason,omitempty"`
	IsActive           bool               `gorm:"default:true" json:"isActive"`
	CompanyDocs        []Attachment       `gorm:"-" json:"companyDocs"`
	HasLogo            bool               `gorm:"-" json:"hasLogo"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}
