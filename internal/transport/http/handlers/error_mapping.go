package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/infra/logger"
	"github.com/edvana/school-platform-auth/internal/usecase"
)

// ErrorCase maps a service error onto an HTTP status and client message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

var commonErrorCases = []ErrorCase{
	{usecase.ErrInvalidRequest, http.StatusBadRequest, "invalid request"},
	{usecase.ErrWeakPassword, http.StatusBadRequest, "password does not meet the strength policy"},
	{usecase.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{usecase.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
	{usecase.ErrInvalidOrExpiredOtp, http.StatusBadRequest, "invalid or expired otp"},
	{usecase.ErrAccountNotFound, http.StatusNotFound, "account not found"},
}

// respondError writes the mapped error, falling back to 500 for anything
// unrecognized. The raw error is logged, never returned to the client.
func respondError(c *gin.Context, err error, cases ...ErrorCase) {
	for _, ec := range append(cases, commonErrorCases...) {
		if errors.Is(err, ec.Err) {
			c.JSON(ec.Status, ErrorResponse{Error: ec.Message})
			return
		}
	}

	logger.WithContext(c.Request.Context()).Error("unhandled service error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
