package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"beatpress/blobstore"
	"beatpress/middleware"
	"beatpress/store"
	"beatpress/utils"
)

// PostController exposes the content store's post, rating, and upload
// operations over HTTP.
type PostController struct {
	store *store.ContentStore
	blobs blobstore.Store
}

// NewPostController creates a new PostController instance.
func NewPostController(cs *store.ContentStore, blobs blobstore.Store) *PostController {
	return &PostController{store: cs, blobs: blobs}
}

// CreatePost allows authenticated users to create new posts. Media is
// uploaded beforehand through UploadMedia; only URLs arrive here.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title     string `json:"title" binding:"required,min=1"`
		Content   string `json:"content" binding:"required"`
		Category  string `json:"category" binding:"required"`
		ImageURL  string `json:"image_url"`
		MusicURL  string `json:"music_url"`
		IsPremium bool   `json:"is_premium"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post, err := p.store.CreatePost(ctx.Request.Context(), identity, store.CreatePostInput{
		Title:     utils.SanitizeText(req.Title),
		Content:   utils.Sanitize(req.Content),
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		MusicURL:  req.MusicURL,
		IsPremium: req.IsPremium,
	})
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns paginated posts with author summaries. Search, category,
// and premium filters combine.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	filter := store.ListFilter{
		Search:   search,
		Category: strings.TrimSpace(ctx.Query("category")),
	}
	if v := strings.TrimSpace(ctx.Query("premium")); v != "" {
		premium := v == "1" || strings.EqualFold(v, "true")
		filter.IsPremium = &premium
	}

	// Cache only searchless listings to keep the key space bounded
	cacheKey := ""
	if search == "" {
		cacheKey = fmt.Sprintf("cache:posts:list:cat=%s:premium=%s:page=%d:size=%d",
			filter.Category, ctx.Query("premium"), page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	result, err := p.store.List(ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: result}, 5*time.Minute)
	}
	utils.Success(ctx, result)
}

// GetPost returns a single post. Each fetch counts one view, so responses
// are never served from cache.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	post, err := p.store.FetchOne(ctx.Request.Context(), postID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Trending returns the most viewed posts.
func (p *PostController) Trending(ctx *gin.Context) {
	n := 0
	if v, err := strconv.Atoi(ctx.Query("n")); err == nil {
		n = v
	}

	cacheKey := fmt.Sprintf("cache:posts:trending:n=%d", n)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.store.Trending(ctx.Request.Context(), n)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": posts}}, time.Minute)
	utils.Success(ctx, gin.H{"items": posts})
}

// PremiumFeed lists premium posts newest-first.
func (p *PostController) PremiumFeed(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	filter := store.ListFilter{
		Search:   strings.TrimSpace(ctx.Query("search")),
		Category: strings.TrimSpace(ctx.Query("category")),
	}
	result, err := p.store.PremiumFeed(ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// UpdatePost applies a partial update to the caller's own post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Category  *string `json:"category"`
		ImageURL  *string `json:"image_url"`
		MusicURL  *string `json:"music_url"`
		IsPremium *bool   `json:"is_premium"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	patch := store.PostPatch{
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		MusicURL:  req.MusicURL,
		IsPremium: req.IsPremium,
	}
	if req.Title != nil {
		clean := utils.SanitizeText(*req.Title)
		patch.Title = &clean
	}
	if req.Content != nil {
		clean := utils.Sanitize(*req.Content)
		patch.Content = &clean
	}

	post, err := p.store.UpdatePost(ctx.Request.Context(), postID, identity, patch)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes the caller's own post together with its embedded
// comments, replies, and ratings.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	if err := p.store.DeletePost(ctx.Request.Context(), postID, identity); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// Rate records the caller's 1-5 rating on a post.
func (p *PostController) Rate(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}
	if err := p.store.Rate(ctx.Request.Context(), postID, identity, req.Rating); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "rating submitted"})
}

// RatingSummary returns the average rating and rating count of a post.
func (p *PostController) RatingSummary(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	avg, count, err := p.store.RatingSummary(ctx.Request.Context(), postID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"average_rating": avg, "total_ratings": count})
}

// MyRating returns the caller's rating on a post, or null when absent.
func (p *PostController) MyRating(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}
	value, rated, err := p.store.MyRating(ctx.Request.Context(), postID, identity)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	if !rated {
		utils.Success(ctx, gin.H{"rating": nil})
		return
	}
	utils.Success(ctx, gin.H{"rating": value})
}

// UploadMedia stores an image or audio file and returns its URL. Audio
// uploads are a subscriber feature.
func (p *PostController) UploadMedia(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	kind := blobstore.KindImage
	switch strings.ToLower(ctx.DefaultPostForm("kind", ctx.Query("kind"))) {
	case "audio", "music":
		kind = blobstore.KindAudio
	case "", "image":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40031, "kind must be image or audio")
		return
	}

	if kind == blobstore.KindAudio && !identity.IsSubscriber {
		utils.StoreError(ctx, fmt.Errorf("%w: music uploads", store.ErrPermissionDenied))
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size > blobstore.MaxUploadSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 50MB")
		return
	}

	url, err := p.blobs.Save(ctx.Request.Context(), kind, header.Filename, file)
	if err != nil {
		utils.StoreError(ctx, fmt.Errorf("%w: %v", store.ErrUpload, err))
		return
	}
	utils.Success(ctx, gin.H{"url": url, "kind": kind})
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := store.DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
		pageSize = s
	}
	return page, pageSize
}

// parsePostID reads the :id path param. A malformed identifier is reported
// as not found, never as a format error.
func parsePostID(ctx *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "post not found")
		return 0, false
	}
	return uint(id), true
}
