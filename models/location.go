package models

import "time"

// Location is an optional place a post is written from.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	IsPublished bool      `gorm:"default:true;not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `json:"-"`
}
