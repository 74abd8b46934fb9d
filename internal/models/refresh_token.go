package models

import "time"

// RefreshToken is one entry of the refresh token ledger. Rows are never
// deleted; rotation and logout only flip IsValid to false.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;index" json:"userId"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	IsValid   bool      `gorm:"not null;default:true;index" json:"isValid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
