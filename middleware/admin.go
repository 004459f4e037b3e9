package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beatpress/config"
	"beatpress/utils"
)

// AdminRequired allows only usernames listed in the admin configuration.
// It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := CurrentIdentity(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40150, "unauthorized")
			ctx.Abort()
			return
		}
		for _, name := range config.Get().AdminUsernames {
			if name == identity.Username {
				ctx.Next()
				return
			}
		}
		utils.Error(ctx, http.StatusForbidden, 40330, "admin access required")
		ctx.Abort()
	}
}
