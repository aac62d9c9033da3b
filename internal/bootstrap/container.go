package bootstrap

import (
	"context"
	"log"
	"strings"

	"magic-diary-be/internal/config"
	"magic-diary-be/internal/controller"
	"magic-diary-be/internal/handler"
	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/internal/repository/memory"
	"magic-diary-be/internal/service"
	"magic-diary-be/internal/websocket"
	"magic-diary-be/pkg/events"
	"magic-diary-be/pkg/llm/factory"
	pktNats "magic-diary-be/pkg/nats"
	"magic-diary-be/pkg/recognition"
	"magic-diary-be/pkg/recognition/vision"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	DiaryController controller.IDiaryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	stopHub context.CancelFunc
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger("logs/llm.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. Providers
	apiKey := cfg.Keys.Anthropic
	if cfg.Ai.LLMProvider == "huggingface" {
		apiKey = cfg.Keys.HuggingFace
	}
	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" && baseURL == "" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     baseURL,
		APIKey:      apiKey,
		APIVersion:  cfg.Ai.AnthropicVersion,
		MaxTokens:   cfg.Ai.MaxTokens,
		Temperature: cfg.Ai.Temperature,
		Timeout:     cfg.Ai.Timeout,
	}, llmLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	recognizer := newRecognizer(cfg, sysLogger)

	// 4. Infrastructure
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)

	wsHub := websocket.NewHub(sysLogger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go wsHub.Run(hubCtx)

	publishers := events.Fanout{wsHub}
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publishers = append(publishers, natsPub)
		}
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, service.RecognizedTextTopic)
	sessionService := service.NewSessionService(
		sessionRepo,
		llmProvider,
		recognizer,
		publisherService, // canvas sink
		publishers,
		cfg.Recognition.Debounce,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		service.RecognizedTextTopic,
		sessionService,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		DiaryController: controller.NewDiaryController(sessionService),
		StreamHandler:   handler.NewStreamHandler(sessionService, wsHub, sysLogger),
		WebSocketHub:    wsHub,
		ConsumerService: consumerService,
		Logger:          sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		stopHub: stopHub,
	}
}

func newRecognizer(cfg *config.Config, log logger.ILogger) recognition.Provider {
	level, err := recognition.ParseLevel(cfg.Recognition.Level)
	if err != nil {
		level = recognition.LevelAccurate
	}
	opts := recognition.Options{
		Level:                  level,
		Languages:              cfg.Recognition.Languages,
		MinimumTextHeight:      cfg.Recognition.MinimumTextHeight,
		UsesLanguageCorrection: cfg.Recognition.LanguageCorrection,
		CustomWords:            cfg.Recognition.CustomWords,
	}

	if strings.EqualFold(cfg.Recognition.Provider, "vision") {
		log.Info("Bootstrap", "Using vision recognizer", map[string]interface{}{"model": cfg.Recognition.Model})
		return vision.NewRecognizer(vision.Config{
			APIKey:  cfg.Keys.Anthropic,
			Model:   cfg.Recognition.Model,
			Options: opts,
		}, nil, log)
	}
	return recognition.NewDeviceProvider(opts)
}

// Shutdown stops background work and flushes the logger.
func (c *Container) Shutdown() {
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	c.ConsumerService.Wait()
	c.stopHub()
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.Logger.Sync()
}
