package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/utils"
)

// ProfileController serves public author pages and profile editing.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

// Profile lists an author's posts. The owner sees everything they wrote,
// drafts and scheduled posts included; any other viewer gets the restricted
// subset.
func (p *ProfileController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	page := parsePage(ctx.Query("page"))

	var owner models.User
	if err := p.db.Where("username = ?", username).First(&owner).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load user")
		return
	}

	viewerID, _ := getUserID(ctx)
	restrict := viewerID != owner.ID

	countQ := p.db.Model(&models.Post{}).Where("posts.author_id = ?", owner.ID)
	if restrict {
		countQ = countQ.Scopes(models.PublishedOnly())
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := p.db.Scopes(models.VisiblePosts(restrict)).
		Where("posts.author_id = ?", owner.ID).
		Offset((page - 1) * postsPerPage).Limit(postsPerPage).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list posts")
		return
	}

	payload := listPayload(posts, page, total)
	payload["profile"] = publicUser(owner)
	utils.Success(ctx, payload)
}

// EditProfileForm returns the current principal's own record bound to the
// profile form.
func (p *ProfileController) EditProfileForm(ctx *gin.Context) {
	user, ok := p.currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"profile": ownUser(*user)})
}

// UpdateProfile updates the principal's own identity fields and redirects to
// the index page.
func (p *ProfileController) UpdateProfile(ctx *gin.Context) {
	user, ok := p.currentUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email" binding:"omitempty,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		if !validUsername(username) {
			utils.Error(ctx, http.StatusBadRequest, 40051, "username may contain letters, digits, '-', '_' and '.'")
			return
		}
		var count int64
		if err := p.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil || count > 0 {
			utils.Error(ctx, http.StatusConflict, 40902, "username already exists")
			return
		}
		user.Username = username
	}
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	if email := strings.TrimSpace(req.Email); email != "" {
		user.Email = email
	}

	if err := p.db.Save(user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to update profile")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (p *ProfileController) currentUser(ctx *gin.Context) (*models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		utils.NotFound(ctx, 40410, "user not found")
		return nil, false
	}
	return &user, true
}
