package models

import "time"

// User is identified by an email address or phone number.
type User struct {
	ID           string    `gorm:"primaryKey;size:255" json:"id"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
