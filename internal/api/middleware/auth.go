package middleware

import (
	"context"
	"net/http"

	"github.com/Sharadgup/AGI-Innovation/internal/api/response"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/security"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UsernameKey contextKey = "username"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the JWT token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := security.TokenFromRequest(r)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token: "+err.Error())
			return
		}

		// Add user info to context
		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetUsername gets the username from context
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetIdentity returns the authenticated caller
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	username, _ := GetUsername(ctx)
	return domain.Identity{UserID: userID, Username: username}, true
}
