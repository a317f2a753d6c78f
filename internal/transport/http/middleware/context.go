package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edvana/school-platform-auth/internal/infra/security"
)

const (
	// ContextUserIDKey holds the authenticated user's id.
	ContextUserIDKey = "auth.user_id"
	// ContextClaimsKey holds the verified access token claims.
	ContextClaimsKey = "auth.claims"
	// ContextTokenKey holds the raw bearer token as presented.
	ContextTokenKey = "auth.token"
)

// ClaimsFromContext returns the verified claims set by RequireAuth.
func ClaimsFromContext(c *gin.Context) (*security.AccessTokenClaims, bool) {
	value, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*security.AccessTokenClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user id set by RequireAuth.
func UserIDFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

// TokenFromContext returns the raw bearer token set by RequireAuth.
func TokenFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextTokenKey)
	if !ok {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
