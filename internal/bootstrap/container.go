package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"luni-triage-be/internal/config"
	"luni-triage-be/internal/controller"
	"luni-triage-be/internal/handler"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/internal/repository/contract"
	"luni-triage-be/internal/repository/implementation"
	"luni-triage-be/internal/repository/memory"
	redisrepo "luni-triage-be/internal/repository/redis"
	"luni-triage-be/internal/service"
	"luni-triage-be/internal/websocket"
	"luni-triage-be/pkg/llm/factory"
	"luni-triage-be/pkg/media/supabase"
	pkgNats "luni-triage-be/pkg/nats"
	"luni-triage-be/pkg/speech/elevenlabs"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	TriageController  controller.ITriageController
	PaymentController controller.IPaymentController
	SpeechController  controller.ISpeechController

	// Background services (main.go runs these)
	AssessmentConsumer service.IAssessmentConsumer

	// WebSockets
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process event bus for assessment refresh triggers
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// NATS (optional; disabled when no URL is configured)
	var natsPub *pkgNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// Guest stores: in-process by default, Redis when scaled out
	var (
		guestSessions contract.TriageSessionRepository
		guestUsage    contract.GuestUsageRepository
		pendingOrders contract.PendingOrderRepository
		rdb           *redis.Client
	)
	if cfg.Guest.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.Guest.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.Guest.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		guestSessions = redisrepo.NewTriageSessionRepository(rdb)
		guestUsage = redisrepo.NewGuestUsageRepository(rdb)
		pendingOrders = redisrepo.NewPendingOrderRepository(rdb)
		log.Printf("[INFO] Guest store backend: REDIS")
	} else {
		guestSessions = memory.NewTriageSessionRepository()
		guestUsage = memory.NewGuestUsageRepository()
		pendingOrders = memory.NewPendingOrderRepository()
		log.Printf("[INFO] Guest store backend: MEMORY")
	}

	// Durable stores for authenticated users
	userSessions := implementation.NewTriageSessionRepository(db)
	users := implementation.NewUserRepository(db)

	// WebSocket hub; rdb relays pushes across instances when present
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// Media storage
	var media service.MediaUploader
	if cfg.Media.SupabaseURL != "" {
		media = supabase.NewStorageClient(cfg.Media.SupabaseURL, cfg.Media.SupabaseKey, cfg.Media.StorageBucket)
	}

	// Speech synthesis
	var synthesizer service.SpeechSynthesizer
	if cfg.Speech.ElevenLabsAPIKey != "" {
		synthesizer = elevenlabs.NewClient(cfg.Speech.ElevenLabsAPIKey, cfg.Speech.VoiceID)
	}

	usageService := service.NewUsageService(guestUsage, sysLogger)
	assessmentService := service.NewAssessmentService(llmProvider, sysLogger)
	triageService := service.NewTriageService(
		guestSessions,
		userSessions,
		usageService,
		llmProvider,
		media,
		pubSub,
		sysLogger,
		cfg.Media.MaxUploadBytes,
	)
	paymentService := service.NewPaymentService(pendingOrders, usageService, natsPub, sysLogger, cfg.Payment)
	authService := service.NewAuthService(users, sysLogger, cfg.App.JwtSecret)
	speechService := service.NewSpeechService(synthesizer, sysLogger)

	assessmentConsumer := service.NewAssessmentConsumer(
		pubSub,
		guestSessions,
		userSessions,
		assessmentService,
		wsHub,
		natsPub,
		sysLogger,
	)

	notifHandler := handler.NewNotificationHandler(wsHub, sysLogger)

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		TriageController:  controller.NewTriageController(triageService, usageService),
		PaymentController: controller.NewPaymentController(paymentService),
		SpeechController:  controller.NewSpeechController(speechService),

		AssessmentConsumer: assessmentConsumer,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
