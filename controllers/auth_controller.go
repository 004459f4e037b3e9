package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"beatpress/config"
	"beatpress/middleware"
	"beatpress/models"
	"beatpress/repository"
	"beatpress/store"
	"beatpress/utils"
)

const (
	tokenTTL      = 24 * time.Hour
	emailCooldown = time.Minute
)

// AuthController handles registration, email confirmation, login, tokens,
// password recovery, and profile endpoints.
type AuthController struct {
	users *repository.UserRepo
	store *store.ContentStore
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users *repository.UserRepo, cs *store.ContentStore) *AuthController {
	return &AuthController{users: users, store: cs}
}

// Register creates an account and emails a confirmation code. The account
// works immediately; confirmation only flips the verified flag.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=32"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid registration payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := a.users.GetByUsername(ctx.Request.Context(), username); err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
		return
	}
	if _, err := a.users.GetByEmail(ctx.Request.Context(), email); err == nil {
		utils.Error(ctx, http.StatusConflict, 40911, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to process password")
		return
	}

	cfg := config.Get()
	code := utils.GenerateVerificationCode(6)
	expires := time.Now().Add(time.Duration(cfg.ConfirmationCodeTTLMinutes) * time.Minute)

	user := models.User{
		Username:            username,
		Email:               email,
		PasswordHash:        hash,
		ConfirmationCode:    code,
		ConfirmationExpires: &expires,
	}
	if err := a.users.Create(ctx.Request.Context(), &user); err != nil {
		utils.Error(ctx, http.StatusConflict, 40912, "account already exists")
		return
	}

	a.sendConfirmationMail(email, username, code)

	token, err := utils.GenerateToken(user.ID, user.Username, user.IsSubscriber, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// VerifyEmail confirms the account with the mailed code.
func (a *AuthController) VerifyEmail(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid verification payload")
		return
	}

	user, err := a.users.GetByEmail(ctx.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	if user.IsVerified {
		utils.Success(ctx, gin.H{"message": "email already verified"})
		return
	}
	if user.ConfirmationCode == "" || user.ConfirmationCode != strings.TrimSpace(req.Code) {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid confirmation code")
		return
	}
	if user.ConfirmationExpires != nil && time.Now().After(*user.ConfirmationExpires) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "confirmation code expired")
		return
	}

	user.IsVerified = true
	user.ConfirmationCode = ""
	user.ConfirmationExpires = nil
	if err := a.users.Save(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update account")
		return
	}
	utils.Success(ctx, gin.H{"message": "email verified"})
}

// ResendCode issues a fresh confirmation code, rate limited per address.
func (a *AuthController) ResendCode(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := a.users.GetByEmail(ctx.Request.Context(), email)
	if err != nil {
		// Do not reveal whether the address exists
		utils.Success(ctx, gin.H{"message": "if the address is registered, a code has been sent"})
		return
	}
	if user.IsVerified {
		utils.Success(ctx, gin.H{"message": "email already verified"})
		return
	}
	if !utils.EmailCooldownTrySet(email, emailCooldown) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "please wait before requesting another code")
		return
	}

	cfg := config.Get()
	code := utils.GenerateVerificationCode(6)
	expires := time.Now().Add(time.Duration(cfg.ConfirmationCodeTTLMinutes) * time.Minute)
	user.ConfirmationCode = code
	user.ConfirmationExpires = &expires
	if err := a.users.Save(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update account")
		return
	}

	a.sendConfirmationMail(email, user.Username, code)
	utils.Success(ctx, gin.H{"message": "if the address is registered, a code has been sent"})
}

// Login authenticates by email and password and issues a JWT carrying the
// current subscriber flag.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid login payload")
		return
	}

	user, err := a.users.GetByEmail(ctx.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.IsSubscriber, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// RefreshToken issues a new token from current database state, so a
// subscription activated since login is reflected in the claims.
func (a *AuthController) RefreshToken(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), identity.ID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	token, err := utils.GenerateToken(user.ID, user.Username, user.IsSubscriber, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40016, "missing bearer token")
		return
	}
	tokenString := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid token")
		return
	}
	expiresAt := time.Now().Add(tokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(tokenString, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// ForgotPassword mails a reset link. The response never reveals whether the
// address is registered.
func (a *AuthController) ForgotPassword(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	resp := gin.H{"message": "if the address is registered, a reset link has been sent"}
	user, err := a.users.GetByEmail(ctx.Request.Context(), email)
	if err != nil {
		utils.Success(ctx, resp)
		return
	}
	if !utils.EmailCooldownTrySet("reset:"+email, emailCooldown) {
		utils.Success(ctx, resp)
		return
	}

	cfg := config.Get()
	token := utils.GenerateResetToken()
	expires := time.Now().Add(time.Duration(cfg.ResetTokenTTLMinutes) * time.Minute)
	user.ResetToken = token
	user.ResetExpires = &expires
	if err := a.users.Save(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to update account")
		return
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(cfg.BaseURL, "/"), token)
	go func() {
		if err := utils.SendMail(email, "Password reset",
			fmt.Sprintf("Hello %s,\r\n\r\nUse the link below to reset your password. It expires in %d minutes.\r\n\r\n%s\r\n",
				user.Username, cfg.ResetTokenTTLMinutes, link)); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnw("reset mail failed", "email", email, "err", err)
		}
	}()
	utils.Success(ctx, resp)
}

// ResetPassword sets a new password from a valid reset token.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40018, "invalid payload")
		return
	}

	user, err := a.users.GetByResetToken(ctx.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40019, "invalid or expired reset token")
		return
	}
	if user.ResetExpires == nil || time.Now().After(*user.ResetExpires) {
		utils.Error(ctx, http.StatusBadRequest, 40019, "invalid or expired reset token")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to process password")
		return
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetExpires = nil
	if err := a.users.Save(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to update account")
		return
	}
	utils.Success(ctx, gin.H{"message": "password updated"})
}

// Me returns the caller's own account.
func (a *AuthController) Me(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "unauthorized")
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), identity.ID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile updates the caller's own profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Username   *string `json:"username"`
		Bio        *string `json:"bio"`
		Location   *string `json:"location"`
		Website    *string `json:"website"`
		PictureURL *string `json:"picture_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid profile payload")
		return
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40132, "unauthorized")
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), identity.ID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) < 3 || len(name) > 32 {
			utils.Error(ctx, http.StatusBadRequest, 40061, "username must be 3-32 characters")
			return
		}
		if name != user.Username {
			if _, err := a.users.GetByUsername(ctx.Request.Context(), name); err == nil {
				utils.Error(ctx, http.StatusConflict, 40913, "username already taken")
				return
			}
			user.Username = name
		}
	}
	if req.Bio != nil {
		user.Bio = utils.SanitizeText(*req.Bio)
	}
	if req.Location != nil {
		user.Location = utils.SanitizeText(*req.Location)
	}
	if req.Website != nil {
		user.Website = strings.TrimSpace(*req.Website)
	}
	if req.PictureURL != nil {
		user.PictureURL = strings.TrimSpace(*req.PictureURL)
	}
	if err := a.users.Save(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50019, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix("cache:user:public:")
	utils.Success(ctx, gin.H{"user": user})
}

// DeleteAccount removes the caller's account and all of their posts.
func (a *AuthController) DeleteAccount(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40133, "unauthorized")
		return
	}
	if err := a.store.DeleteUser(ctx.Request.Context(), identity.ID); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:user:public:")
	utils.Success(ctx, gin.H{"message": "account deleted"})
}

// GetUserPublic returns a user's public profile together with their content
// activity.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	user, err := a.users.Get(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.StoreError(ctx, err)
		return
	}

	activity, err := a.store.Activity(ctx.Request.Context(), user.ID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	payload := gin.H{"user": publicUser(user), "activity": activity}
	utils.CacheSetJSON("cache:user:public:"+idStr, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	utils.Success(ctx, payload)
}

// publicUser strips account state a stranger has no business seeing.
func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"username":      u.Username,
		"bio":           u.Bio,
		"location":      u.Location,
		"website":       u.Website,
		"picture_url":   u.PictureURL,
		"is_subscriber": u.IsSubscriber,
		"created_at":    u.CreatedAt,
	}
}

func (a *AuthController) sendConfirmationMail(email, username, code string) {
	go func() {
		body := fmt.Sprintf("Hello %s,\r\n\r\nYour confirmation code is: %s\r\n\r\nIt expires in %d minutes.\r\n",
			username, code, config.Get().ConfirmationCodeTTLMinutes)
		if err := utils.SendMail(email, "Confirm your email", body); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnw("confirmation mail failed", "email", email, "err", err)
		}
	}()
}
