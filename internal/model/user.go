// Package model defines database models
package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleCandidate  Role = "CANDIDATE"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleAdmin, RoleSuperAdmin:
		return true
	}

	return false
}

// Booleans have no gorm defaults on purpose: gorm skips zero values on
// insert when a default exists, which would turn Active=false into true.
type User struct {
	ID            string         `gorm:"primaryKey;size:32" json:"id"`
	Email         string         `gorm:"not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL" json:"email"`
	PhoneNumber   string         `gorm:"not null;uniqueIndex:idx_users_phone,where:deleted_at IS NULL" json:"phoneNumber"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Role          Role           `gorm:"not null;size:32" json:"role"`
	Verified      bool           `gorm:"not null" json:"verified"`
	Active        bool           `gorm:"not null" json:"active"`
	LastLogin     *time.Time     `json:"lastLogin"`
	RefreshDigest *string        `json:"-"` // Digest of the only live refresh token, nil when logged out
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	VerificationCode *VerificationCode `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserView is the only user shape handed out of the core. It never carries
// the credential hash or the refresh digest.
type UserView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	Verified    bool       `json:"verified"`
	Active      bool       `json:"active"`
	LastLogin   *time.Time `json:"lastLogin"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Verified:    u.Verified,
		Active:      u.Active,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}
