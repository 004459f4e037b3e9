package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"beatpress/middleware"
	"beatpress/store"
	"beatpress/utils"
)

// CommentController handles the comment and reply operations nested under a
// post.
type CommentController struct {
	store *store.ContentStore
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(cs *store.ContentStore) *CommentController {
	return &CommentController{store: cs}
}

// ListComments returns a post's comments with resolved author summaries.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	comments, err := c.store.ListComments(ctx.Request.Context(), postID)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// AddComment appends a comment to a post.
func (c *CommentController) AddComment(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	text, identity, ok := bindCommentText(ctx)
	if !ok {
		return
	}
	comment, err := c.store.AddComment(ctx.Request.Context(), postID, identity, text)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// AddReply appends a reply to an existing comment.
func (c *CommentController) AddReply(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	text, identity, ok := bindCommentText(ctx)
	if !ok {
		return
	}
	reply, err := c.store.AddReply(ctx.Request.Context(), postID, commentID, identity, text)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"reply": reply})
}

// EditComment changes the text of the caller's own comment.
func (c *CommentController) EditComment(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	text, identity, ok := bindCommentText(ctx)
	if !ok {
		return
	}
	comment, err := c.store.EditComment(ctx.Request.Context(), postID, commentID, identity, text)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes the caller's own comment and all replies under it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	if err := c.store.DeleteComment(ctx.Request.Context(), postID, commentID, identity); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// DeleteReply removes the caller's own reply from a comment.
func (c *CommentController) DeleteReply(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	replyID := strings.TrimSpace(ctx.Param("replyId"))
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}
	if err := c.store.DeleteReply(ctx.Request.Context(), postID, commentID, replyID, identity); err != nil {
		utils.StoreError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "reply deleted"})
}

// bindCommentText reads the {"text": ...} body and the caller identity.
func bindCommentText(ctx *gin.Context) (string, store.Identity, bool) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "comment text cannot be empty")
		return "", store.Identity{}, false
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return "", store.Identity{}, false
	}
	return utils.SanitizeText(req.Text), identity, true
}
