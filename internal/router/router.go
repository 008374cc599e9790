package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"focusflow-backend/internal/handlers"
	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	taskHandler *handlers.TaskHandler,
	projectHandler *handlers.ProjectHandler,
	insightsHandler *handlers.InsightsHandler,
	coachingHandler *handlers.CoachingHandler,
	userHandler *handlers.UserHandler,
	socialHandler *handlers.SocialHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Focus Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", sessionHandler.Start)
			r.Get("/", sessionHandler.List)
			r.Get("/{id}", sessionHandler.Get)
			r.Post("/{id}/events", sessionHandler.AddEvent)
			r.Post("/{id}/complete", sessionHandler.Complete)
			r.Get("/{id}/summary", coachingHandler.SessionSummary)
		})

		// ──── Task Routes ────
		r.Route("/tasks", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", taskHandler.Create)
			r.Get("/", taskHandler.List)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
		})

		// ──── Project Routes ────
		r.Route("/projects", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", projectHandler.Create)
			r.Get("/", projectHandler.List)
			r.Put("/{id}", projectHandler.Update)
			r.Delete("/{id}", projectHandler.Delete)
		})

		// ──── Insights & Stats Routes ────
		r.Route("/insights", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", insightsHandler.Overview)
			r.Get("/heatmap", insightsHandler.Heatmap)
			r.Get("/trends", insightsHandler.Trends)
			r.Get("/distractions", insightsHandler.Distractions)
			r.Get("/optimal-session", insightsHandler.OptimalSession)
			r.Get("/goals", insightsHandler.Goals)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", insightsHandler.Stats)
			r.Get("/streak", insightsHandler.Streak)
		})

		// ──── Coaching Routes ────
		r.Route("/coaching", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/nudge", coachingHandler.Nudge)
			r.Get("/goals", coachingHandler.GoalSuggestions)
		})

		// ──── User & Settings Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/settings", userHandler.GetSettings)
			r.Put("/settings", userHandler.UpdateSettings)
			r.Get("/notifications", userHandler.GetNotificationSettings)
			r.Put("/notifications", userHandler.UpdateNotificationSetting)
		})

		// ──── Social Routes ────
		r.Route("/friends", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", socialHandler.ListFriends)
			r.Post("/invite", socialHandler.InviteFriend)
			r.Post("/{id}/accept", socialHandler.AcceptFriend)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", socialHandler.ListGroups)
			r.Post("/", socialHandler.CreateGroup)
			r.Get("/{id}/leaderboard", socialHandler.Leaderboard)
		})

		r.Route("/social", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/encourage", socialHandler.Encourage)
		})

		// ──── WebSocket (device sync) ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
