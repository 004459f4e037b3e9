package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"beatpress/config"
)

// Claims defines JWT claims used in the application. The subscriber flag is
// a snapshot taken at issue time; refresh re-reads the user row.
type Claims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	IsSubscriber bool   `json:"is_subscriber"`
	jwt.RegisteredClaims
}

// GenerateToken issues a JWT for the specified user identity.
func GenerateToken(userID uint, username string, isSubscriber bool, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		UserID:       userID,
		Username:     username,
		IsSubscriber: isSubscriber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
