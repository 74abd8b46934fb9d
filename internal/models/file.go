package models

import "time"

type File struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Extension string    `gorm:"size:32;not null" json:"extension"`
	MimeType  string    `gorm:"size:255;not null" json:"mimeType"`
	Size      int64     `gorm:"not null" json:"size"`
	Path      string    `gorm:"size:512;not null;index" json:"path"`
	UserID    string    `gorm:"size:255;not null;index" json:"userId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
