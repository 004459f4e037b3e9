package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"beatpress/store"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// StoreError maps a content store failure onto the response envelope.
func StoreError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidArgument):
		Error(ctx, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, store.ErrUnauthenticated):
		Error(ctx, http.StatusUnauthorized, 40100, err.Error())
	case errors.Is(err, store.ErrForbidden):
		Error(ctx, http.StatusForbidden, 40300, err.Error())
	case errors.Is(err, store.ErrPermissionDenied):
		Error(ctx, http.StatusForbidden, 40310, err.Error())
	case errors.Is(err, store.ErrNotFound):
		Error(ctx, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, store.ErrConflict):
		Error(ctx, http.StatusConflict, 40900, err.Error())
	case errors.Is(err, store.ErrUpload):
		Error(ctx, http.StatusBadGateway, 50210, err.Error())
	case errors.Is(err, store.ErrVerification):
		Error(ctx, http.StatusBadGateway, 50220, err.Error())
	default:
		if Sugar != nil {
			Sugar.Errorw("internal error", "path", ctx.FullPath(), "err", err)
		}
		Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
