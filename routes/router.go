package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beatpress/blobstore"
	"beatpress/config"
	"beatpress/controllers"
	"beatpress/middleware"
	"beatpress/paystack"
	"beatpress/repository"
	"beatpress/store"
	"beatpress/utils"
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

	r.Static("/static/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepo(db)
	contentStore := store.New(postRepo, userRepo, utils.Sugar)
	blobs := blobstore.NewLocal(cfg.UploadDir)
	payments := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL)

	authController := controllers.NewAuthController(userRepo, contentStore)
	postController := controllers.NewPostController(contentStore, blobs)
	commentController := controllers.NewCommentController(contentStore)
	subController := controllers.NewSubscriptionController(contentStore, payments)
	adminController := controllers.NewAdminController(userRepo, postRepo, contentStore)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/verify-email", authController.VerifyEmail)
	authGroup.POST("/resend-code", authController.ResendCode)
	authGroup.POST("/forgot-password", authController.ForgotPassword)
	authGroup.POST("/reset-password", authController.ResetPassword)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.POST("/refresh", middleware.AuthRequired(), authController.RefreshToken)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.DELETE("/me", middleware.AuthRequired(), authController.DeleteAccount)

	// Public reads
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/trending", postController.Trending)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListComments)
	api.GET("/posts/:id/ratings", postController.RatingSummary)
	api.GET("/users/:id", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/upload", postController.UploadMedia)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.GET("/posts/premium", postController.PremiumFeed)
	protected.POST("/posts/:id/comments", commentController.AddComment)
	protected.PUT("/posts/:id/comments/:commentId", commentController.EditComment)
	protected.DELETE("/posts/:id/comments/:commentId", commentController.DeleteComment)
	protected.POST("/posts/:id/comments/:commentId/replies", commentController.AddReply)
	protected.DELETE("/posts/:id/comments/:commentId/replies/:replyId", commentController.DeleteReply)
	protected.POST("/posts/:id/ratings", postController.Rate)
	protected.GET("/posts/:id/ratings/me", postController.MyRating)
	protected.POST("/subscription/verify", subController.Verify)

	// Webhook authenticates by signature, not JWT
	api.POST("/webhooks/paystack", subController.Webhook)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.GET("/users", adminController.ListUsers)
	admin.GET("/users/:id", adminController.GetUser)
	admin.DELETE("/users/:id", adminController.DeleteUser)
	admin.GET("/posts", adminController.ListPosts)
	admin.DELETE("/posts/:id", adminController.DeletePost)
	admin.GET("/stats", statsController.Overview)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
