package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-maker/internal/api"
	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/config"
	"github.com/phrazzld/flashcard-maker/internal/coordinator"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/events"
	"github.com/phrazzld/flashcard-maker/internal/generation"
	"github.com/phrazzld/flashcard-maker/internal/notesink"
	"github.com/phrazzld/flashcard-maker/internal/platform/gemini"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
	"github.com/phrazzld/flashcard-maker/internal/platform/openai"
	"github.com/phrazzld/flashcard-maker/internal/review"
	"github.com/phrazzld/flashcard-maker/internal/settings"
	"github.com/phrazzld/flashcard-maker/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics   *metrics.Metrics
	settings  *settings.FileStore
	providers *generation.Registry
	sink      *notesink.Client

	browser *browser.Registry
	hub     *api.PanelHub
	bundle  *review.Bundle

	coordinator  *coordinator.Coordinator
	eventEmitter *events.InMemoryEventEmitter
	history      *events.History
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool running.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	var err error
	app.settings, err = settings.NewFileStore(cfg.Settings.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	app.providers, err = newProviderRegistry(cfg.LLM, logger, app.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}
	logger.Info("LLM providers initialized",
		"request_timeout", cfg.LLM.RequestTimeout)

	app.sink = notesink.NewClient(
		notesink.WithURL(cfg.NoteSink.URL),
		notesink.WithModelName(cfg.NoteSink.ModelName),
		notesink.WithTags(cfg.NoteSink.Tags),
		notesink.WithHTTPClient(&http.Client{Timeout: cfg.NoteSink.Timeout}),
		notesink.WithLogger(logger),
	)

	app.browser = browser.NewRegistry(logger)
	app.hub = api.NewPanelHub(app.browser, logger)
	app.bundle = review.NewBundle(app.sink,
		review.WithLogger(logger),
		review.WithMetrics(app.metrics),
		review.WithConfirmDelay(cfg.Review.ConfirmDelay),
		review.WithNotifier(app.hub.Publish),
	)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.history = events.NewHistory(events.DefaultHistorySize)
	app.eventEmitter.Subscribe(app.history, events.TypeGenerationRequested, events.TypeInvocationFinished)

	app.coordinator, err = coordinator.New(coordinator.Dependencies{
		Settings:  app.settings,
		Providers: app.providers,
		Host:      app.browser,
		Bundle:    app.bundle,
		Metrics:   app.metrics,
		Events:    app.eventEmitter,
	}, coordinator.Config{
		HandshakeTimeout: cfg.Coordinator.HandshakeTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	if err := app.setupTaskProcessing(); err != nil {
		return nil, fmt.Errorf("failed to setup task processing: %w", err)
	}

	logger.InfoContext(ctx, "Application initialized successfully")
	return app, nil
}

// newProviderRegistry builds one client per supported provider. Credentials
// are not bound here; each request carries the user's key.
func newProviderRegistry(cfg config.LLMConfig, logger *slog.Logger, m *metrics.Metrics) (*generation.Registry, error) {
	googleClient, err := gemini.NewClient(logger, m, gemini.Config{
		BaseURL: cfg.GoogleBaseURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	openaiClient, err := openai.NewClient(logger, m, openai.Config{
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	return generation.NewRegistry(map[domain.Provider]generation.Client{
		domain.ProviderGoogle: googleClient,
		domain.ProviderOpenAI: openaiClient,
	})
}

// setupTaskProcessing connects generation requests to the coordinator:
// emitted requests become tasks on the queue, and the pool runs them.
func (app *application) setupTaskProcessing() error {
	factory, err := task.NewGenerationTaskFactory(app.coordinator, app.logger)
	if err != nil {
		return err
	}

	app.taskQueue = task.NewTaskQueue(app.config.Coordinator.QueueSize, app.logger, app.metrics)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: app.config.Coordinator.Workers,
		Metrics:     app.metrics,
	}, app.logger)
	app.workerPool.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Debug("generation task ended with error",
			"task_id", t.ID(),
			"error", err)
	})

	app.eventEmitter.Subscribe(
		task.NewTaskFactoryEventHandler(factory, app.taskQueue, app.logger),
		events.TypeGenerationRequested,
	)

	if err := app.workerPool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	return nil
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}

	app.logger.Info("Application shutdown completed")
}
