package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`

	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ContactNumber string `json:"contact_number"`

	// Sistem bilgileri
	Level  int  `json:"user_level" gorm:"column:user_level;default:0"`
	Banned bool `json:"is_banned" gorm:"default:false"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Created lazily on first checkout, shared across all of the user's listings.
	StripeCustomerID string `json:"-"`

	RecoveryCode   string     `json:"-"`
	RecoveryCodeAt *time.Time `json:"-"`

	// İlişkiler
	Listings []Listing `json:"-"`
}

func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID,
		"email":          u.Email,
		"full_name":      u.GetFullName(),
		"contact_number": u.ContactNumber,
		"user_level":     u.Level,
	}
}
