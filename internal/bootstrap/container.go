package bootstrap

import (
	"context"
	"log"

	"ai-shopscout-be/internal/config"
	"ai-shopscout-be/internal/controller"
	"ai-shopscout-be/internal/pkg/logger"
	"ai-shopscout-be/internal/repository/contract"
	"ai-shopscout-be/internal/repository/memory"
	redisrepo "ai-shopscout-be/internal/repository/redis"
	"ai-shopscout-be/internal/service"
	"ai-shopscout-be/pkg/advisor/session"
	llmfactory "ai-shopscout-be/pkg/llm/factory"
	searchfactory "ai-shopscout-be/pkg/search/factory"

	pktNats "ai-shopscout-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	AdvisorController controller.IAdvisorController

	// Background Services (Exposed for main.go to run)
	ReportService service.IReportService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	// LLM provider runs the planning dialogue, extraction, reduction and analysis.
	baseURL := ""
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := llmfactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmAPIKey(cfg),
		baseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searchProvider, err := searchfactory.NewSearchProvider(
		cfg.Search.Provider,
		searchAPIKey(cfg),
		cfg.Search.PerplexityModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Search Provider: %v", err)
	}
	log.Printf("[INFO] Using Search Provider: %s", cfg.Search.Provider)

	// 3.5 Infrastructure
	// NATS (optional; lifecycle events are best-effort)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (optional; sessions degrade to in-memory when absent)
	var durableRepo contract.SessionRepository
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (sessions fall back to in-memory)", err)
		}
		durableRepo = redisrepo.NewSessionRepository(rdb)
	} else {
		log.Printf("[WARN] REDIS_URL not set; sessions are in-memory only")
	}
	memoryRepo := memory.NewSessionRepository(cfg.Session.TTL)

	// Layered session store shared by the request path and the report
	// worker. Persistence noise goes to its own file so durable-backend
	// hiccups don't flood the main log.
	sessionLogger := logger.NewIsolatedLogger("logs/session.log")
	sessions := session.NewStore(durableRepo, memoryRepo, cfg.Session.TTL, sessionLogger)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.ReportTopicName, pubSub)
	reportService := service.NewReportService(
		pubSub,
		cfg.Keys.ReportTopicName,
		sessions,
		cfg.Report,
	)

	advisorService := service.NewAdvisorService(
		cfg,
		llmProvider,
		searchProvider,
		sessions,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		AdvisorController: controller.NewAdvisorController(advisorService),

		ReportService: reportService,
	}
}

func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "gemini":
		return cfg.Keys.GoogleGemini
	case "huggingface":
		return cfg.Keys.HuggingFace
	default:
		return cfg.Keys.Anthropic
	}
}

func searchAPIKey(cfg *config.Config) string {
	if cfg.Search.Provider == "perplexity" {
		return cfg.Keys.Perplexity
	}
	return cfg.Keys.SerpAPI
}
