package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/config"
	"github.com/blogicum/blogicum/middleware"
	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/utils"
)

// postsPerPage is the fixed page size of every post listing.
const postsPerPage = 10

// PostController manages listings, CRUD for posts and their comments.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// Index lists publicly visible posts, newest publish date first.
func (p *PostController) Index(ctx *gin.Context) {
	page := parsePage(ctx.Query("page"))

	cacheKey := fmt.Sprintf("cache:posts:index:page=%d:b=%d", page, cacheBucket(time.Now()))
	if _, authed := getUserID(ctx); !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var total int64
	if err := p.db.Model(&models.Post{}).Scopes(models.PublishedOnly()).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := p.db.Scopes(models.VisiblePosts(true)).
		Offset((page - 1) * postsPerPage).Limit(postsPerPage).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := listPayload(posts, page, total)
	if _, authed := getUserID(ctx); !authed {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, cacheBucketSize)
	}
	utils.Success(ctx, payload)
}

// CategoryPosts lists visible posts of a published category resolved by slug.
// An unpublished or unknown category is indistinguishable: both are 404.
func (p *PostController) CategoryPosts(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	page := parsePage(ctx.Query("page"))

	var category models.Category
	if err := p.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40405, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load category")
		return
	}

	cacheKey := fmt.Sprintf("cache:posts:cat=%s:page=%d:b=%d", slug, page, cacheBucket(time.Now()))
	if _, authed := getUserID(ctx); !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var total int64
	if err := p.db.Model(&models.Post{}).Scopes(models.PublishedOnly()).
		Where("posts.category_id = ?", category.ID).
		Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := p.db.Scopes(models.VisiblePosts(true)).
		Where("posts.category_id = ?", category.ID).
		Offset((page - 1) * postsPerPage).Limit(postsPerPage).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list posts")
		return
	}

	payload := listPayload(posts, page, total)
	payload["category"] = category
	if _, authed := getUserID(ctx); !authed {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, cacheBucketSize)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post with its comments. Authors see their own
// posts unconditionally; everyone else goes through the visibility window,
// so a hidden post is a plain 404 for them.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cache:post:detail:%d:b=%d", id, cacheBucket(time.Now()))
	userID, authed := getUserID(ctx)
	if !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var post models.Post
	if err := p.db.Preload("Location").Preload("Category").Preload("Author").
		First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	if !authed || userID != post.AuthorID {
		if err := p.db.Scopes(models.VisiblePosts(true)).
			Where("posts.id = ?", id).First(&post).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(ctx, 40401, "post not found")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
			return
		}
	}

	var comments []models.Comment
	if err := p.db.Where("post_id = ?", post.ID).
		Preload("Author").
		Order("created_at, id").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load comments")
		return
	}
	post.CommentCount = int64(len(comments))

	payload := gin.H{"post": post, "comments": comments}
	if !authed {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, cacheBucketSize)
	}
	utils.Success(ctx, payload)
}

type postRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=256"`
	Text        string     `json:"text" binding:"required"`
	PubDate     *time.Time `json:"pub_date"`
	IsPublished *bool      `json:"is_published"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
	Image       string     `json:"image"`
}

// CreateForm returns the choices a post form needs: published categories and
// locations.
func (p *PostController) CreateForm(ctx *gin.Context) {
	var categories []models.Category
	if err := p.db.Where("is_published = ?", true).Order("title").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load categories")
		return
	}
	var locations []models.Location
	if err := p.db.Where("is_published = ?", true).Order("name").Find(&locations).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load locations")
		return
	}
	utils.Success(ctx, gin.H{"categories": categories, "locations": locations})
}

// CreatePost creates a post authored by the current principal and redirects
// to their profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post := models.Post{AuthorID: userID}
	if !p.applyPostRequest(ctx, &post, &req) {
		return
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")

	username, _ := getUsername(ctx)
	ctx.Redirect(http.StatusSeeOther, "/profile/"+username+"/")
}

// EditPost returns the post bound to the edit form, owner only.
func (p *PostController) EditPost(ctx *gin.Context) {
	post, ok := p.requirePostOwner(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost applies an edit to the principal's own post. A non-owner is
// silently redirected to the post's detail page.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.requirePostOwner(ctx)
	if !ok {
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	if !p.applyPostRequest(ctx, post, &req) {
		return
	}

	if err := p.db.Save(post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))

	ctx.Redirect(http.StatusSeeOther, postDetailPath(post.ID))
}

// ConfirmDeletePost returns the post bound to the delete confirmation,
// owner only.
func (p *PostController) ConfirmDeletePost(ctx *gin.Context) {
	post, ok := p.requirePostOwner(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes the principal's own post and redirects to their profile.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.requirePostOwner(ctx)
	if !ok {
		return
	}

	if err := p.db.Delete(post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))

	username, _ := getUsername(ctx)
	ctx.Redirect(http.StatusSeeOther, "/profile/"+username+"/")
}

// UploadImage stores a post image under the media directory and returns its
// public URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no image uploaded")
		return
	}

	const maxSize = 10 * 1024 * 1024
	if file.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40031, "image size exceeds 10MB")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40032, "unsupported image type")
		return
	}

	now := time.Now()
	rel := filepath.Join("post_images", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
	dst := filepath.Join(config.Get().MediaDir, rel)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to save image")
		return
	}

	utils.Success(ctx, gin.H{"url": "/media/" + filepath.ToSlash(rel)})
}

// requirePostOwner loads the path's post and enforces the ownership rule for
// mutation: a missing post is 404, a foreign post redirects the request to
// the post's detail page instead of erroring.
func (p *PostController) requirePostOwner(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return nil, false
	}

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "post not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return nil, false
	}

	userID, authed := getUserID(ctx)
	if !authed || post.AuthorID != userID {
		ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
		ctx.Abort()
		return nil, false
	}
	return &post, true
}

// applyPostRequest validates and copies form fields onto the post. Returns
// false after writing the error response.
func (p *PostController) applyPostRequest(ctx *gin.Context, post *models.Post, req *postRequest) bool {
	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return false
	}
	post.Title = title
	post.Text = utils.Sanitize(req.Text)

	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	} else if post.PubDate.IsZero() {
		post.PubDate = time.Now()
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	} else if post.ID == 0 {
		post.IsPublished = true
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := p.db.First(&category, *req.CategoryID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, "unknown category")
			return false
		}
	}
	post.CategoryID = req.CategoryID

	if req.LocationID != nil {
		var location models.Location
		if err := p.db.First(&location, *req.LocationID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unknown location")
			return false
		}
	}
	post.LocationID = req.LocationID

	post.Image = strings.TrimSpace(req.Image)
	return true
}

func postDetailPath(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// Anonymous responses cache under a coarse time bucket. Writes invalidate by
// prefix; the bucket roll covers what invalidation cannot see, a scheduled
// post whose publish date passes while a cached copy is live.
const cacheBucketSize = 5 * time.Minute

func cacheBucket(now time.Time) int64 {
	return now.Unix() / int64(cacheBucketSize/time.Second)
}

func parsePage(pageStr string) int {
	page := 1
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	return page
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := ctx.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.NotFound(ctx, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}

func listPayload(posts []models.Post, page int, total int64) gin.H {
	if posts == nil {
		posts = []models.Post{}
	}
	return gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   postsPerPage,
			"total":       total,
			"total_pages": int((total + postsPerPage - 1) / postsPerPage),
		},
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return "", false
	}
	name, ok := value.(string)
	return name, ok && name != ""
}
