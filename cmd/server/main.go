package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/domain"
	"github.com/kendevco/discordant/internal/infrastructure/ai"
	"github.com/kendevco/discordant/internal/infrastructure/configs"
	"github.com/kendevco/discordant/internal/infrastructure/events"
	"github.com/kendevco/discordant/internal/infrastructure/logging"
	"github.com/kendevco/discordant/internal/infrastructure/messaging"
	"github.com/kendevco/discordant/internal/infrastructure/ratelimiter"
	"github.com/kendevco/discordant/internal/infrastructure/registry"
	"github.com/kendevco/discordant/internal/infrastructure/repository"
	"github.com/kendevco/discordant/internal/infrastructure/signaling"
	"github.com/kendevco/discordant/internal/infrastructure/tracing"
	"github.com/kendevco/discordant/internal/orchestrator"
	"github.com/kendevco/discordant/internal/presentation/api"
	"github.com/kendevco/discordant/internal/presentation/handler/health"
	"github.com/kendevco/discordant/internal/presentation/handler/messages"
	signalingHandler "github.com/kendevco/discordant/internal/presentation/handler/signaling"
	"github.com/kendevco/discordant/internal/workflow"
)

const (
	serviceName = "discordant-server"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	appLogger := logging.NewLogger(logging.NewDefaultConfig())
	appLogger.Info(logging.General, logging.Startup, "bootstrapping", map[logging.ExtraKey]any{
		logging.AppName: serviceName,
	})

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	memberDirectory := repository.NewMemberDirectory(cfg.Orchestrator.SystemUserID)
	messageStore := repository.NewMessageStore(cfg.MessageStore.Capacity, memberDirectory)

	reg := registry.New[*signaling.Client]()
	relay := signaling.NewRelay(reg, signaling.Config{
		SendBufferSize:  cfg.Signaling.SendBufferSize,
		MaxPayloadBytes: cfg.Signaling.MaxPayloadBytes,
		PingInterval:    cfg.Signaling.PingInterval,
		PongTimeout:     cfg.Signaling.PongTimeout,
	}, logger, signaling.NewMetrics(prometheus.DefaultRegisterer))

	dispatcher := workflow.NewDispatcher(workflow.DispatcherOptions{
		Endpoint:  cfg.Workflow.Endpoint,
		UserAgent: cfg.Workflow.UserAgent,
		Timeout:   cfg.Workflow.Timeout,
	})

	var provider domain.CompletionProvider
	if cfg.AI.APIKey != "" {
		provider = ai.NewOpenAIClient(ai.Options{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     cfg.AI.Timeout,
		})
	} else {
		logger.Warn("no AI API key configured, using canned responses")
		provider = ai.NewMockProvider("AI completions are not configured on this deployment.")
	}

	var notifier domain.Notifier = events.NoopNotifier{}
	if cfg.Messaging.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Messaging.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		appLogger.Info(logging.RabbitMQ, logging.Startup, "connected to broker", nil)
		notifier = events.NewReplyPublisher(rabbitmq)
	}

	orch := orchestrator.New(
		orchestrator.Config{
			HistoryLimit:  cfg.Orchestrator.HistoryLimit,
			HistoryWindow: cfg.Orchestrator.HistoryWindow,
			Environment:   cfg.Orchestrator.Environment,
		},
		dispatcher,
		provider,
		messageStore,
		memberDirectory,
		notifier,
		logger,
		orchestrator.NewMetrics(prometheus.DefaultRegisterer),
	)

	signalingH := signalingHandler.NewHandler(relay, cfg.Signaling, logger)
	healthH := health.NewHandler()
	messagesH := messages.NewHandler(orch)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, signalingH, healthH, messagesH, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
