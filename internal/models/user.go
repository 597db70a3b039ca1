// Package models defines the persisted entities and shared error types.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role identifies what a user account may do.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleProvider  Role = "provider"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User is an applicant, provider or admin account.
type User struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"not null" json:"name"`
	Email        string                      `gorm:"uniqueIndex;not null" json:"email"`
	Password     string                      `gorm:"not null" json:"-"`
	Phone        string                      `json:"phone"`
	Role         Role                        `gorm:"type:varchar(20);index;not null" json:"role"`
	IsActive     bool                        `gorm:"default:true" json:"isActive"`
	Bio          string                      `json:"bio,omitempty"`
	Location     string                      `json:"location,omitempty"`
	Skills       datatypes.JSONSlice[string] `json:"skills,omitempty"`
	Experience   int                         `json:"experience,omitempty"`
	CompanyName  string                      `json:"companyName,omitempty"`
	ProfilePhoto string                      `json:"profilePhoto,omitempty"`
	LastLogin    *time.Time                  `json:"lastLogin,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// Principal is the authenticated caller attached to every protected operation.
type Principal struct {
	UserID uint
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
