package models

import (
	"time"

	"gorm.io/gorm"
)

// PublishedOnly filters a post query down to publicly visible posts: the post
// is published, its publish date has passed and its category is published.
// The category condition is an inner join, so a post without a category never
// matches and is excluded.
func PublishedOnly() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id AND categories.is_published = ?", true).
			Where("posts.is_published = ? AND posts.pub_date <= ?", true, time.Now())
	}
}

// VisiblePosts builds the post collection a viewer may see, annotated with
// comment counts and eagerly joined with location, category and author.
//
// With restrict=true the PublishedOnly window applies. With restrict=false
// the base collection passes through unfiltered, which is how authors browse
// their own drafts.
//
// The scope is read-only and composes with further Where/Offset/Limit calls.
// Ordering is newest publish date first, primary key as tiebreak.
func VisiblePosts(restrict bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q := db.Model(&Post{}).
			Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count").
			Preload("Location").
			Preload("Category").
			Preload("Author")
		if restrict {
			q = q.Scopes(PublishedOnly())
		}
		return q.Order("posts.pub_date DESC, posts.id")
	}
}
