package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/config"
	"github.com/blogicum/blogicum/controllers"
	"github.com/blogicum/blogicum/middleware"
	"github.com/blogicum/blogicum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each content request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/media", cfg.MediaDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	profileController := controllers.NewProfileController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	pagesController := controllers.NewPagesController()
	statsController := controllers.NewStatsController(db)

	// Public pages; the optional principal decides restricted vs own view.
	public := r.Group("", middleware.AuthOptional())
	public.GET("/", postController.Index)
	public.GET("/category/:slug/", postController.CategoryPosts)
	public.GET("/profile/:username/", profileController.Profile)
	public.GET("/posts/:id/", postController.GetPost)

	r.GET("/pages/about/", pagesController.About)
	r.GET("/pages/rules/", pagesController.Rules)

	// Authoring surface
	authed := r.Group("", middleware.AuthRequired(), middleware.RateLimitMiddleware())
	authed.GET("/edit_profile/", profileController.EditProfileForm)
	authed.POST("/edit_profile/", profileController.UpdateProfile)
	authed.GET("/posts/create/", postController.CreateForm)
	authed.POST("/posts/create/", postController.CreatePost)
	authed.POST("/posts/upload/", postController.UploadImage)
	authed.GET("/posts/:id/edit/", postController.EditPost)
	authed.POST("/posts/:id/edit/", postController.UpdatePost)
	authed.GET("/posts/:id/delete/", postController.ConfirmDeletePost)
	authed.POST("/posts/:id/delete/", postController.DeletePost)
	authed.POST("/posts/:id/comment/", commentController.CreateComment)
	authed.GET("/posts/:id/comment/:comment_id/edit/", commentController.EditComment)
	authed.POST("/posts/:id/comment/:comment_id/edit/", commentController.UpdateComment)
	authed.GET("/posts/:id/comment/:comment_id/delete/", commentController.ConfirmDeleteComment)
	authed.POST("/posts/:id/comment/:comment_id/delete/", commentController.DeleteComment)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	api.GET("/stats", statsController.GetStats)
	api.GET("/posts/:id/stats", statsController.GetPostStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx, 40400, "page not found")
	})

	return r
}
