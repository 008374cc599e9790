package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusflow-backend/internal/config"
	"focusflow-backend/internal/database"
	"focusflow-backend/internal/handlers"
	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/repository"
	"focusflow-backend/internal/router"
	"focusflow-backend/internal/services"
	"focusflow-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting FocusFlow Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	projectRepo := repository.NewProjectRepo(pool)
	socialRepo := repository.NewSocialRepo(pool)

	// ──── Step 5: Initialize AI Provider ────
	provider, err := services.NewProvider(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ AI provider initialization failed: %v", err)
	}
	if provider == nil {
		log.Println("⚠ AI provider not configured, coaching will use rule-based fallbacks")
	} else {
		log.Printf("✓ AI provider initialized (%s)", cfg.AIProvider)
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, redisClients.Cache, jwtAuth, emailService)
	insightsService := services.NewInsightsService(sessionRepo)
	statsService := services.NewStatsService(sessionRepo)
	kv := database.NewRedisKV(redisClients.Cache)
	coachingService := services.NewCoachingService(sessionRepo, taskRepo, kv, provider, cfg.AIDailyLimit)
	notifier := &services.RedisNotifier{Client: redisClients.PubSub}
	socialService := services.NewSocialService(socialRepo, userRepo, kv, notifier)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, cfg.FrontendURL)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, redisClients.PubSub)
	taskHandler := handlers.NewTaskHandler(taskRepo)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	insightsHandler := handlers.NewInsightsHandler(insightsService, statsService)
	coachingHandler := handlers.NewCoachingHandler(coachingService)
	userHandler := handlers.NewUserHandler(userRepo)
	socialHandler := handlers.NewSocialHandler(socialService)

	// ──── Step 6: Start Notification Scheduler ────
	notificationScheduler := services.NewNotificationScheduler(userRepo, emailService)
	notificationScheduler.Start()
	log.Println("✓ Notification scheduler started")

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		sessionHandler,
		taskHandler,
		projectHandler,
		insightsHandler,
		coachingHandler,
		userHandler,
		socialHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		notificationScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ FocusFlow Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
