package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware accepts "Authorization: Bearer <jwt>", verifies it with
// secretKey and stores the caller's identity, raw token included, in the
// request context.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, tokenString, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				logger.Log.Debug("no bearer token found")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			tokenString = strings.TrimSpace(tokenString)

			identity, err := validateJWT(tokenString, secretKey)
			if err != nil {
				logger.Log.Warn("invalid token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			identity.Token = tokenString

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminGuard lets through only callers whose token carries role "admin".
func AdminGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := GetIdentityFromRequest(r)
		if err != nil || !identity.IsAdmin() {
			logger.Log.Warn("admin route refused", zap.String("uri", r.RequestURI))
			writeError(w, http.StatusForbidden, "admin access only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validateJWT(tokenString, secretKey string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return models.Identity{}, err
	}

	if !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, errors.New("invalid token claims")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return models.Identity{}, errors.New("token expired")
		}
	}

	var userID string
	switch v := claims["userID"].(type) {
	case string:
		userID = v
	case float64:
		userID = strconv.FormatInt(int64(v), 10)
	}
	if userID == "" {
		return models.Identity{}, errors.New("userID not found in token")
	}

	identity := models.Identity{UserID: userID}
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	identity.Role, _ = claims["role"].(string)
	return identity, nil
}

func GetIdentityFromRequest(r *http.Request) (models.Identity, error) {
	identity, ok := r.Context().Value(identityKey).(models.Identity)
	if !ok {
		return models.Identity{}, errors.New("identity not found in context")
	}
	return identity, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"status":"error","message":"` + msg + `"}`))
}
