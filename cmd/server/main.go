package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agencydesk/agency-api/internal/config"
	"github.com/agencydesk/agency-api/internal/database"
	"github.com/agencydesk/agency-api/internal/handlers"
	"github.com/agencydesk/agency-api/internal/jobs"
	"github.com/agencydesk/agency-api/internal/logger"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/realtime"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/services"
	"github.com/agencydesk/agency-api/internal/storage"
	"github.com/agencydesk/agency-api/internal/tokens"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	vaultRepo := repository.NewVaultRepository(db)
	sigRepo := repository.NewSignatureRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	annRepo := repository.NewAnnouncementRepository(db)
	authRepo := repository.NewAuthRepository(db)

	// Shared infrastructure
	maker := tokens.NewMaker(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hub := realtime.NewHub(zlog)
	sender := push.NewLogSender(zlog)
	mailer := push.NewLogMailer(zlog)
	store := storage.NewLogStore(cfg.StorageBaseURL, zlog)

	// Services
	notifService := services.NewNotificationService(notifRepo, hub, sender, zlog)
	userService := services.NewUserService(userRepo, notifService)
	taskService := services.NewTaskService(taskRepo, userRepo, notifService, cfg.TaskReviewRequired)
	vaultService := services.NewVaultService(vaultRepo, userRepo, notifService, store)
	sigService := services.NewSignatureService(sigRepo, userRepo, notifService)
	annService := services.NewAnnouncementService(annRepo)
	authService := services.NewAuthService(userRepo, authRepo, maker, mailer, cfg.OTPTTL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	vaultHandler := handlers.NewVaultHandler(vaultService)
	sigHandler := handlers.NewSignatureHandler(sigService)
	notifHandler := handlers.NewNotificationHandler(notifService)
	annHandler := handlers.NewAnnouncementHandler(annService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.Metrics())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(maker, userRepo)

	api := r.Group("/api")
	{
		// Auth routes (public except /me and /logout)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.POST("/request-otp", authHandler.RequestOTP)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/assignees", userHandler.MyAssignees)
			users.POST("/assign", userHandler.AssignCreator)
			users.POST("/change-password", userHandler.ChangePassword)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/submit", taskHandler.SubmitTask)
			tasks.POST("/:id/approve", taskHandler.ApproveTask)
			tasks.GET("/:id/chat", taskHandler.ChatHistory)
			tasks.POST("/:id/chat", taskHandler.SendMessage)
		}

		vault := api.Group("/content_vault")
		vault.Use(requireAuth)
		{
			vault.GET("/folders", vaultHandler.Folders)
			vault.POST("/upload-url", vaultHandler.UploadURL)
			vault.GET("/:user_id/files", vaultHandler.Files)
			vault.DELETE("/files/:id", vaultHandler.DeleteFile)
			vault.POST("/files/:id/approve", vaultHandler.ApproveFile)
			vault.POST("/files/:id/reject", vaultHandler.RejectFile)
		}

		signature := api.Group("/signature")
		signature.Use(requireAuth)
		{
			signature.GET("", sigHandler.ListRequests)
			signature.POST("", sigHandler.CreateRequest)
			signature.GET("/:id", sigHandler.GetRequest)
			signature.PATCH("/:id", sigHandler.UpdateRequest)
			signature.DELETE("/:id", sigHandler.DeleteRequest)
			signature.POST("/:id/sign", sigHandler.Sign)
			signature.POST("/:id/decline", sigHandler.Decline)
		}

		notification := api.Group("/notification")
		notification.Use(requireAuth)
		{
			notification.GET("", notifHandler.List)
			notification.GET("/unread-count", notifHandler.UnreadCount)
			notification.POST("/:id/read", notifHandler.MarkRead)
			notification.POST("/read-all", notifHandler.MarkAllRead)
			notification.POST("/devices", notifHandler.RegisterDevice)
		}

		announcements := api.Group("/announcements")
		announcements.Use(requireAuth)
		{
			announcements.GET("", annHandler.Feed)
			announcements.POST("", annHandler.Create)
			announcements.DELETE("/:id", annHandler.Delete)
			announcements.POST("/:id/reactions", annHandler.React)
			announcements.DELETE("/:id/reactions", annHandler.Unreact)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background worker: notification outbox drain and signature expiry sweep
	worker := jobs.NewWorker(notifService, sigService, cfg.OutboxInterval, zlog)
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}
