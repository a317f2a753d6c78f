package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edvana/school-platform-auth/internal/infra/config"
	"github.com/edvana/school-platform-auth/internal/transport/http/handlers"
	"github.com/edvana/school-platform-auth/internal/transport/http/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	Health   *handlers.HealthHandler

	Validator middleware.TokenValidator
	Limiter   *middleware.RateLimiter
	RateLimit config.RateLimitSettings
}

// Register wires all routes. Everything under the public group is reachable
// without a token; everything under the protected group sits behind the
// request gate.
func Register(router *gin.Engine, deps Deps) {
	router.GET("/healthz", deps.Health.Healthz)
	router.GET("/readyz", deps.Health.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	public := api.Group("/auth")
	{
		login := public.Group("")
		if deps.Limiter != nil {
			login.Use(deps.Limiter.Limit("login", deps.RateLimit.LoginMaxAttempts))
		}
		login.POST("/login", deps.Auth.Login)

		// Logout stays public: a token past its lifetime must still be
		// presentable and answered with a success-shaped response.
		public.POST("/logout", deps.Auth.Logout)
		public.POST("/validate", deps.Auth.ValidateToken)

		reset := public.Group("")
		if deps.Limiter != nil {
			reset.Use(deps.Limiter.Limit("password_reset", deps.RateLimit.PasswordResetMaxAttempts))
		}
		reset.POST("/forgot-password", deps.Password.ForgotPassword)
		reset.POST("/reset-password", deps.Password.ResetPassword)
	}

	protected := api.Group("/auth")
	protected.Use(middleware.RequireAuth(deps.Validator))
	{
		protected.GET("/me", deps.Auth.Me)
	}
}
