package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdflamingo/paydesk/internal/models"
)

// GenerateToken signs a token AuthMiddleware accepts. The payments API issues
// the real ones; this is used by local tooling and tests.
func GenerateToken(identity models.Identity, secretKey string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userID": identity.UserID,
		"email":  identity.Email,
		"name":   identity.Name,
		"role":   identity.Role,
		"exp":    time.Now().Add(ttl).Unix(),
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
