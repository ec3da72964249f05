package models

import "time"

// Category groups posts. An unpublished category hides every post in it from
// public listings, regardless of the posts' own flags.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	IsPublished bool      `gorm:"default:true;not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `json:"-"`
}
