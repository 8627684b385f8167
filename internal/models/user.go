package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a citizen known to the platform. A user may arrive via
// Telegram (TelegramID set) or via the web API (TelegramID zero); the same
// internal UUID is used for reinforcement idempotency on both channels.
type User struct {
	ID         string `gorm:"primaryKey" json:"id"`
	TelegramID int64  `gorm:"uniqueIndex" json:"-"`
	// Language is the reply language fixed at first contact ("en" or "hi").
	Language string `json:"language"`
	// District is the user's home district, remembered after their first
	// located complaint to pre-fill later ones.
	District string `json:"district,omitempty"`
}

// BeforeCreate generates a new UUID for the user if the ID is not set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Language == "" {
		u.Language = "en"
	}
	return
}
