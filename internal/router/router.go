package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/handler"
	"github.com/veritest/veritest-backend/internal/middleware"
	"github.com/veritest/veritest-backend/internal/model"
	"github.com/veritest/veritest-backend/internal/response"
	"github.com/veritest/veritest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Session   *handler.SessionHandler
	Violation *handler.ViolationHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Proctoring clients report violations in bursts; cap per IP rather
	// than rejecting outright.
	violationLimiter := middleware.NewRateLimiter(10, 10*time.Second)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		// Attempt lifecycle
		api.POST("/exams/:exam_id/start",
			middleware.RequireRole(model.RoleStudent),
			handlers.Session.StartExam,
		)
		api.POST("/sessions/:session_id/submit",
			middleware.RequireRole(model.RoleStudent),
			handlers.Session.SubmitExam,
		)
		api.POST("/sessions/:session_id/draft",
			middleware.RequireRole(model.RoleStudent),
			handlers.Session.SaveDraft,
		)
		api.GET("/sessions/:session_id", handlers.Session.GetSession)

		// Scores
		api.GET("/exams/:exam_id/results",
			middleware.RequireRole(model.RoleTeacher, model.RoleAdmin),
			handlers.Session.GetExamResults,
		)

		// Integrity
		api.POST("/violations/log",
			violationLimiter.Middleware(),
			handlers.Violation.LogViolation,
		)
		api.GET("/violations/report", handlers.Violation.Report)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/exams/:exam_id/monitor",
			middleware.RequireRole(model.RoleTeacher, model.RoleAdmin),
			handlers.Monitor.MonitorExam,
		)
	}

	return router
}
