package app

import (
	"time"

	"hrportal/onboarding-api/app/root"
	"hrportal/onboarding-api/app/user"
	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBodySize = 1 << 20

var store = persist.NewMemoryStore(time.Minute)

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.BodySizeLimiter(maxBodySize),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(d.Tokens)

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
		m.GET("/heartbeat", root.Heartbeat)
	}

	a := m.Group("/auth")
	{
		// GET /api/auth/policy			-> Input rules for registration and passwords
		a.GET("/policy", cacheFor(300), func(c *gin.Context) { user.Policy(c, d) })

		// POST /api/auth/register		-> Registers a new candidate and sends a verification code
		a.POST("/register", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/auth/verify		-> Verifies an account with a code and logs it in
		a.POST("/verify", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /api/auth/verification-code	-> Sends a new verification code
		a.POST("/verification-code", func(c *gin.Context) { user.UserRequestVerification(c, d) })

		// POST /api/auth/login			-> Logs in a candidate
		a.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/auth/admin/login		-> Logs in staff
		a.POST("/admin/login", func(c *gin.Context) { user.AdminLogin(c, d) })

		// POST /api/auth/refresh		-> Exchanges a refresh token for new tokens
		a.POST("/refresh", func(c *gin.Context) { user.UserRefresh(c, d) })

		// POST /api/auth/logout		-> Revokes the refresh token of the user
		a.POST("/logout", jwt, func(c *gin.Context) { user.UserLogout(c, d) })

		// POST /api/auth/forgot-password	-> Sends a password reset code
		a.POST("/forgot-password", func(c *gin.Context) { user.UserForgotPassword(c, d) })

		// POST /api/auth/reset-password	-> Sets a new password using a reset code
		a.POST("/reset-password", func(c *gin.Context) { user.UserResetPassword(c, d) })
	}

	u := m.Group("/users", jwt)
	{
		// GET /api/users/me			-> Returns the logged in user
		u.GET("/me", func(c *gin.Context) { user.UserMe(c, d) })

		// PATCH /api/users/me/password		-> Changes the password of the logged in user
		u.PATCH("/me/password", func(c *gin.Context) { user.UserChangePassword(c, d) })
	}

	return router
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
