package main

import (
	"context"
	"log"
	"strings"

	api "mailpilot-backend/cmd/api"
	accountdomain "mailpilot-backend/internal/account/domain"
	accountRepo "mailpilot-backend/internal/account/repository"
	accountUsecase "mailpilot-backend/internal/account/usecase"
	authdomain "mailpilot-backend/internal/auth/domain"
	authRepo "mailpilot-backend/internal/auth/repository"
	authUsecase "mailpilot-backend/internal/auth/usecase"
	"mailpilot-backend/internal/cleanup"
	"mailpilot-backend/internal/notification"
	"mailpilot-backend/internal/push"
	"mailpilot-backend/internal/sync/scheduler"
	syncworker "mailpilot-backend/internal/sync/worker"
	"mailpilot-backend/pkg/config"
	"mailpilot-backend/pkg/database"
	"mailpilot-backend/pkg/fcm"
	"mailpilot-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{}, &accountdomain.Account{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	accountRepository := accountRepo.NewGormAccountRepository(db)

	// Initialize FCM client (optional, workers run without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, FCM disabled")
	}

	// Initialize push channel controller (Gmail watch -> Pub/Sub)
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	pushController := push.NewController(gmailService, accountRepository, cfg.GooglePubSubTopic)

	// Initialize sync worker and scheduler. The night window and low-power
	// flag come from runtime settings so the API can change them live.
	worker := syncworker.New(accountRepository, fcmTokenRepo, fcmClient)
	syncScheduler := scheduler.New(
		accountRepository,
		worker,
		cfg.SchedulerTick,
		api.GetRuntimeNightWindow,
		api.GetRuntimeLowPowerMode,
	)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, fcmTokenRepo, cfg)
	accountLocks := accountUsecase.NewAccountLocks()
	settingsUsecaseInstance := accountUsecase.NewSyncSettingsUsecase(accountRepository, pushController, syncScheduler, accountLocks)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository, pushController, syncScheduler, accountLocks)

	// Initialize HTTP handler (also seeds the runtime settings)
	handler := api.NewHandler(authUsecaseInstance, accountUsecaseInstance, settingsUsecaseInstance, cfg)

	// Start background workers
	ctx := context.Background()
	syncScheduler.Start(ctx)

	cleanupWorker := cleanup.New(accountRepository, cfg.CleanupInterval)
	cleanupWorker.Start()

	// Start Pub/Sub notification fan-out if a project is configured
	if cfg.GoogleProjectID != "" {
		// Extract short topic name from full resource name if necessary
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, cfg.GoogleCredentials, accountRepository, fcmTokenRepo, fcmClient)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification service: %v", err)
		} else {
			go notifService.Start(ctx)
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, notification service disabled")
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
