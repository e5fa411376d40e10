package handler

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"achivo/internal/middleware"
	"achivo/internal/observability"
)

// Router sets up HTTP routes
type Router struct {
	chatHandler    *ChatHandler
	goalHandler    *GoalHandler
	authHandler    *AuthHandler
	healthHandler  *HealthHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	metrics        *observability.Metrics
	logger         *zap.Logger
	mux            *http.ServeMux
}

// NewRouter creates a new router
func NewRouter(
	chatHandler *ChatHandler,
	goalHandler *GoalHandler,
	authHandler *AuthHandler,
	healthHandler *HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		chatHandler:    chatHandler,
		goalHandler:    goalHandler,
		authHandler:    authHandler,
		healthHandler:  healthHandler,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		metrics:        metrics,
		logger:         logger,
		mux:            http.NewServeMux(),
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	r.mux.HandleFunc("/api/goal-chat", r.chatHandler.GoalChat)
	r.mux.HandleFunc("/api/dify", r.chatHandler.SendMessage)
	r.mux.HandleFunc("/api/dify/check-completion", r.chatHandler.CheckCompletion)
	r.mux.HandleFunc("/api/save-goals", r.chatHandler.SaveGoals)

	r.mux.HandleFunc("/api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("/api/auth/callback", r.authHandler.Callback)
	r.mux.HandleFunc("/api/auth/logout", r.authHandler.Logout)

	// Dashboard routes (all require a session)
	r.mux.HandleFunc("/api/goals", r.authMiddleware.Auth(r.goalHandler.GetGoals))
	r.mux.HandleFunc("/api/goals/exists", r.authMiddleware.Auth(r.goalHandler.HasGoals))
	r.mux.HandleFunc("/api/tasks", r.authMiddleware.Auth(r.goalHandler.ListTasks))
	r.mux.HandleFunc("/api/tasks/update", r.authMiddleware.Auth(r.goalHandler.UpdateTask))

	r.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	r.mux.HandleFunc("/health", r.healthHandler.Health)

	var handler http.Handler = r.mux

	handler = middleware.Logging(r.logger, r.metrics)(handler)

	handler = r.rateLimiter.Middleware(handler)

	return handler
}
