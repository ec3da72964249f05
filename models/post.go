package models

import "time"

// Post is a blog publication. Setting PubDate in the future defers public
// visibility until that moment passes. Category and Location are optional and
// survive the post's deletion of either (SET NULL); deleting the author
// removes the post (CASCADE).
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	IsPublished bool      `gorm:"default:true;not null" json:"is_published"`
	Image       string    `gorm:"size:512" json:"image"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	LocationID  *uint     `json:"location_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category"`
	Location *Location `gorm:"constraint:OnDelete:SET NULL;" json:"location"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// CommentCount is annotated by the VisiblePosts scope; it is not a column.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}
