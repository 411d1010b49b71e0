package main

import (
	"context"
	"log"
	"os"
	"time"

	api "persona-backend/cmd/api"
	"persona-backend/internal/channel"
	"persona-backend/internal/persona/delivery"
	personadomain "persona-backend/internal/persona/domain"
	personaRepo "persona-backend/internal/persona/repository"
	personaUsecasePkg "persona-backend/internal/persona/usecase"
	"persona-backend/internal/trigger"
	"persona-backend/pkg/ai"
	"persona-backend/pkg/chroma"
	"persona-backend/pkg/config"
	"persona-backend/pkg/database"
	"persona-backend/pkg/imap"
	"persona-backend/pkg/prompts"
	"persona-backend/pkg/smtp"
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
	if err := db.AutoMigrate(
		&personadomain.Sample{},
		&personadomain.IncomingMessage{},
		&personadomain.Draft{},
		&personadomain.ExclusionRule{},
		&personadomain.Setting{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	sampleRepo := personaRepo.NewSampleRepository(db)
	draftRepo := personaRepo.NewDraftRepository(db)
	messageRepo := personaRepo.NewMessageRepository(db)
	exclusionRepo := personaRepo.NewExclusionRepository(db)
	settingsRepo := personaRepo.NewSettingsRepository(db)

	// Initialize vector index
	chromaClient, err := chroma.NewChromaClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Chroma client:", err)
	}

	// Initialize AI completion service
	llm, err := ai.NewCompletionService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiApiKey,
		OpenAIAPIKey:  cfg.OpenAIApiKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI service:", err)
	}
	log.Printf("AI service initialized with provider: %s", cfg.AIProvider)

	// Credentials stored through the settings API win over the
	// environment once decrypted.
	imapPassword := delivery.ResolveSecret(settingsRepo, cfg.EncryptionKey, delivery.SecretImapPassword, cfg.ImapPassword)
	smtpPassword := delivery.ResolveSecret(settingsRepo, cfg.EncryptionKey, delivery.SecretSmtpPassword, cfg.SMTPPassword)
	slackToken := delivery.ResolveSecret(settingsRepo, cfg.EncryptionKey, delivery.SecretSlackToken, cfg.SlackToken)

	// Initialize prompt templates and outbound mail
	promptLoader := prompts.NewLoader(cfg.PromptsDir)
	sender := smtp.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.UserEmail, smtpPassword)

	// Initialize use case (dependency injection)
	personaUsecase := personaUsecasePkg.NewPersonaUsecase(
		sampleRepo,
		draftRepo,
		messageRepo,
		exclusionRepo,
		settingsRepo,
		chromaClient,
		llm,
		promptLoader,
		sender,
		cfg,
	)

	// Register channel adapters configured via environment
	imapService := imap.NewService()
	if cfg.ImapServer != "" && cfg.UserEmail != "" {
		personaUsecase.RegisterAdapter(channel.NewEmailAdapter(imapService, cfg.ImapServer, cfg.ImapPort, cfg.UserEmail, imapPassword))
	}
	if slackToken != "" && cfg.SlackUserID != "" {
		personaUsecase.RegisterAdapter(channel.NewSlackAdapter(slackToken, cfg.SlackUserID))
	}
	if cfg.TelegramExportPath != "" {
		personaUsecase.RegisterAdapter(channel.NewTelegramAdapter(cfg.TelegramExportPath, cfg.TelegramUserID))
	}
	if cfg.WhatsAppExportPath != "" {
		personaUsecase.RegisterAdapter(channel.NewWhatsAppAdapter(cfg.WhatsAppExportPath, cfg.WhatsAppName))
	}
	if cfg.CalendarICSPath != "" {
		personaUsecase.RegisterAdapter(channel.NewCalendarAdapter(cfg.CalendarICSPath))
	}

	// Background embedding of newly ingested samples
	embedScheduler := personaUsecasePkg.NewEmbedScheduler(personaUsecase, 1*time.Minute)
	embedScheduler.Start()
	defer embedScheduler.Stop()

	// Inbound-mail trigger (Pub/Sub), optional
	if cfg.GoogleProjectID != "" {
		triggerService, err := trigger.NewService(context.Background(), cfg, imapService, personaUsecase, imapPassword)
		if err != nil {
			log.Printf("Failed to initialize inbound trigger: %v", err)
		} else {
			go triggerService.Start(context.Background())
		}
	} else {
		log.Println("GoogleProjectID not configured, inbound trigger disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(personaUsecase, settingsRepo, exclusionRepo, cfg)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
