package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edvana/school-platform-auth/internal/transport/http/middleware"
	"github.com/edvana/school-platform-auth/internal/usecase"
)

// AuthHandler exposes login, logout, and token validation.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	})
}

// Logout handles POST /api/v1/auth/logout. The token to revoke comes from
// the Authorization header; the route is public so that an expired token can
// still be presented and answered with a success-shaped response.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerFromHeader(c.GetHeader("Authorization"))

	result, err := h.auth.Logout(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := LogoutResponse{AlreadyExpired: result.AlreadyExpired}
	if result.AlreadyExpired {
		resp.Message = "token already expired"
	} else {
		resp.Message = "logged out"
		until := result.RevokedUntil
		resp.RevokedUntil = &until
	}

	c.JSON(http.StatusOK, resp)
}

// ValidateToken handles POST /api/v1/auth/validate for sibling services that
// need a token checked without sharing the signing secret.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	claims, err := h.auth.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidateTokenResponse{
		Valid:     true,
		UserID:    claims.Subject,
		Email:     claims.Email,
		Phone:     claims.Phone,
		Role:      string(claims.Role),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Me handles GET /api/v1/auth/me, returning the identity claims the gate
// attached to the request.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}

	c.JSON(http.StatusOK, ValidateTokenResponse{
		Valid:     true,
		UserID:    claims.Subject,
		Email:     claims.Email,
		Phone:     claims.Phone,
		Role:      string(claims.Role),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func bearerFromHeader(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}
