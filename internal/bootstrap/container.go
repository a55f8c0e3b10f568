package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"compliance-agent-be/internal/config"
	"compliance-agent-be/internal/controller"
	"compliance-agent-be/internal/pkg/logger"
	"compliance-agent-be/internal/repository/implementation"
	"compliance-agent-be/internal/service"
	"compliance-agent-be/pkg/agent"
	"compliance-agent-be/pkg/graph"
	"compliance-agent-be/pkg/knowledge"
	"compliance-agent-be/pkg/llm/factory"
	pktNats "compliance-agent-be/pkg/nats"
	"compliance-agent-be/pkg/rag/answer"
	"compliance-agent-be/pkg/usage"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Lifecycle (Exposed for main.go to start/stop)
	Agent   *agent.Agent
	NatsPub *pktNats.Publisher

	// Graph client, exposed for the health endpoint
	Graph *graph.Client

	// Shared structured logger, exposed for the server's error middleware
	SysLogger logger.ILogger
}

func NewContainer(graphClient *graph.Client, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := initRagLogger()

	// 2. Retrieval + Generation Pairing
	retriever, err := knowledge.NewControlRetriever(graphClient, cfg.Ai.TopK)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize control retriever: %v", err)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	generator := answer.NewGenerator(llmProvider, ragLogger)

	questionAgent, err := agent.New(retriever, generator)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize agent: %v", err)
	}

	// 3. Infrastructure
	// NATS (best-effort: chat answering works without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (usage limiter fails open without it)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	limiter := usage.NewLimiter(rdb, cfg.Ai.DailyChatLimit)

	// 4. Transcript Pipeline
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(cfg.Keys.TranscriptTopic, pubSub)

	var consumerService service.IConsumerService
	var chatService service.IChatService
	if db != nil {
		sessionRepo := implementation.NewChatSessionRepository(db)
		messageRepo := implementation.NewChatMessageRepository(db)
		consumerService = service.NewConsumerService(pubSub, cfg.Keys.TranscriptTopic, sessionRepo, messageRepo, sysLogger)
		chatService = service.NewChatService(questionAgent, limiter, publisherService, sessionRepo, messageRepo, natsPub, sysLogger)
	} else {
		log.Println("[WARN] Transcript persistence disabled (DB_CONNECTION_STRING not set)")
		chatService = service.NewChatService(questionAgent, limiter, nil, nil, nil, natsPub, sysLogger)
	}

	// 5. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		AdminController: controller.NewAdminController(sysLogger),
		ConsumerService: consumerService,
		Agent:           questionAgent,
		NatsPub:         natsPub,
		Graph:           graphClient,
		SysLogger:       sysLogger,
	}
}

func initRagLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
