package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"beatpress/store"
	"beatpress/utils"
)

// ContextIdentityKey is the key used to store the verified caller identity
// in the Gin context.
const ContextIdentityKey = "identity"

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextIdentityKey, store.Identity{
			ID:           claims.UserID,
			Username:     claims.Username,
			IsSubscriber: claims.IsSubscriber,
		})
		ctx.Next()
	}
}

// CurrentIdentity returns the verified identity stored by AuthRequired.
func CurrentIdentity(ctx *gin.Context) (store.Identity, bool) {
	value, exists := ctx.Get(ContextIdentityKey)
	if !exists {
		return store.Identity{}, false
	}
	identity, ok := value.(store.Identity)
	return identity, ok
}
