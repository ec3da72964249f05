package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/utils"
)

// CommentController manages comments under a post.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// CreateComment attaches a comment by the current principal to the path's
// post and redirects to the post's detail page.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "text cannot be empty")
		return
	}

	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     text,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))

	ctx.Redirect(http.StatusSeeOther, postDetailPath(post.ID))
}

// EditComment returns the comment bound to the edit form. The lookup is
// scoped to the current principal, so a foreign comment is simply not found.
func (c *CommentController) EditComment(ctx *gin.Context) {
	comment, ok := c.requireOwnComment(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment applies an edit to the principal's own comment and redirects
// to the parent post's detail page.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	comment, ok := c.requireOwnComment(ctx)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}
	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "text cannot be empty")
		return
	}

	comment.Text = text
	if err := c.db.Save(comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to update comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(comment.PostID)))

	ctx.Redirect(http.StatusSeeOther, postDetailPath(comment.PostID))
}

// ConfirmDeleteComment returns the comment bound to the delete confirmation.
func (c *CommentController) ConfirmDeleteComment(ctx *gin.Context) {
	comment, ok := c.requireOwnComment(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes the principal's own comment and redirects to the
// parent post's detail page.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	comment, ok := c.requireOwnComment(ctx)
	if !ok {
		return
	}

	if err := c.db.Delete(comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(comment.PostID)))

	ctx.Redirect(http.StatusSeeOther, postDetailPath(comment.PostID))
}

// requireOwnComment fetches the path's comment scoped to the current
// principal. Failed authorization is indistinguishable from absence: both
// yield 404.
func (c *CommentController) requireOwnComment(ctx *gin.Context) (*models.Comment, bool) {
	commentID, ok := parseID(ctx, "comment_id")
	if !ok {
		return nil, false
	}

	userID, authed := getUserID(ctx)
	if !authed {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var comment models.Comment
	if err := c.db.Where("id = ? AND author_id = ?", commentID, userID).
		First(&comment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40403, "comment not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comment")
		return nil, false
	}
	return &comment, true
}
