package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvana/school-platform-auth/internal/usecase"
)

// PasswordHandler exposes the OTP-gated password reset flow.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

// NewPasswordHandler constructs the password handler.
func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// ForgotPassword handles POST /api/v1/auth/forgot-password.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.reset.ForgotPassword(c.Request.Context(), usecase.ForgotPasswordInput{
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ForgotPasswordResponse{
		Message:   "reset code sent",
		Delivery:  result.Delivery,
		SentTo:    result.MaskedDestination,
		ExpiresAt: result.ExpiresAt,
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.reset.ResetPassword(c.Request.Context(), usecase.ResetPasswordInput{
		Email:       req.Email,
		Phone:       req.Phone,
		Otp:         req.Otp,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
