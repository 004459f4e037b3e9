package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"beatpress/repository"
	"beatpress/store"
	"beatpress/utils"
)

// AdminController exposes moderation endpoints. Sensitive user fields carry
// json:"-" on the model, so even the admin read paths never serialize them.
type AdminController struct {
	users *repository.UserRepo
	posts *repository.PostRepo
	store *store.ContentStore
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(users *repository.UserRepo, posts *repository.PostRepo, cs *store.ContentStore) *AdminController {
	return &AdminController{users: users, posts: posts, store: cs}
}

// ListUsers returns paginated accounts, newest first.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	if pageSize > 100 {
		pageSize = 100
	}
	users, total, err := a.users.List(ctx.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to retrieve users")
		return
	}
	utils.Success(ctx, gin.H{
		"items": users,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetUser returns one account by id.
func (a *AdminController) GetUser(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), id)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// DeleteUser removes an account and cascades to all of its posts.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}
	if err := a.store.DeleteUser(ctx.Request.Context(), id); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:user:public:")
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// ListPosts returns paginated posts without ownership filtering.
func (a *AdminController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := a.store.List(ctx.Request.Context(), store.ListFilter{
		Search:   strings.TrimSpace(ctx.Query("search")),
		Category: strings.TrimSpace(ctx.Query("category")),
	}, page, pageSize)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// DeletePost removes any post regardless of ownership.
func (a *AdminController) DeletePost(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}
	if err := a.posts.Delete(ctx.Request.Context(), id); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

func parseAdminID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}
