package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobType classifies a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeInternship JobType = "Internship"
	JobTypeContract   JobType = "Contract"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract:
		return true
	}
	return false
}

// DefaultCurrency applies when a salary is posted without one.
const DefaultCurrency = "USD"

// Salary is stored inline on the job row.
type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `gorm:"type:varchar(8)" json:"currency"`
}

// Job is a posting owned by exactly one provider.
type Job struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	ProviderID        uint                        `gorm:"index;not null" json:"providerId"`
	Provider          *Provider                   `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	JobTitle          string                      `gorm:"not null" json:"jobTitle"`
	Description       string                      `gorm:"type:text;not null" json:"description"`
	Location          string                      `gorm:"not null" json:"location"`
	JobType           JobType                     `gorm:"type:varchar(20);not null" json:"jobType"`
	Salary            Salary                      `gorm:"embedded;embeddedPrefix:salary_" json:"salary"`
	Skills            datatypes.JSONSlice[string] `json:"skills"`
	Experience        string                      `json:"experience,omitempty"`
	Qualification     string                      `json:"qualification,omitempty"`
	ApplicationsCount int                         `gorm:"not null;default:0" json:"applicationsCount"`
	IsActive          bool                        `gorm:"index;default:true" json:"isActive"`
	Deadline          *time.Time                  `json:"deadline,omitempty"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
}
