package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/config"
	"github.com/blogicum/blogicum/utils"
)

// PagesController serves static page content loaded from configuration.
type PagesController struct{}

func NewPagesController() *PagesController { return &PagesController{} }

// About returns the about page content.
func (c *PagesController) About(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.AboutTitle,
		"html":  cfg.AboutHTML,
	})
}

// Rules returns the rules page content.
func (c *PagesController) Rules(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.RulesTitle,
		"html":  cfg.RulesHTML,
	})
}
