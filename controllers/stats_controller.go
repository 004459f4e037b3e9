package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beatpress/models"
	"beatpress/utils"
)

// StatsController reports site-wide totals for the admin dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// Overview returns user, subscriber, post, and view totals. Totals are
// cached briefly since they drive a dashboard, not billing.
func (s *StatsController) Overview(ctx *gin.Context) {
	const cacheKey = "cache:stats:overview"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users, subscribers, posts int64
	var views struct {
		Total int64
	}
	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to compute stats")
		return
	}
	if err := s.db.Model(&models.User{}).Where("is_subscriber = ?", true).Count(&subscribers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to compute stats")
		return
	}
	if err := s.db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to compute stats")
		return
	}
	if err := s.db.Model(&models.Post{}).Select("COALESCE(SUM(views), 0) AS total").Scan(&views).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to compute stats")
		return
	}

	payload := gin.H{
		"total_users":       users,
		"total_subscribers": subscribers,
		"total_posts":       posts,
		"total_views":       views.Total,
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}
