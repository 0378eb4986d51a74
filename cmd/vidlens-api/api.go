// Package main provides the Vidlens API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/vidlens/vidlens/pkg/eventbus"
	"github.com/vidlens/vidlens/pkg/log"
	"github.com/vidlens/vidlens/pkg/persistence"
	"github.com/vidlens/vidlens/pkg/providers"
	"github.com/vidlens/vidlens/pkg/services"
	"github.com/vidlens/vidlens/pkg/stages"
	"github.com/vidlens/vidlens/pkg/web"
	"github.com/vidlens/vidlens/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	openAI      providers.OpenAIConfig
	tempDir     string
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	openAI providers.OpenAIConfig,
	tempDir string,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		openAI:      openAI,
		tempDir:     tempDir,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	provider := providers.NewOpenAIProvider(a.openAI)

	controller := workflow.NewController(
		workflow.Config{Logger: log.WithModule("workflow"), Tracer: a.tracer},
		stages.NewExtraction(
			providers.NewYouTubeSource(a.tempDir, log.WithModule("youtube")),
			providers.NewUploadSource(),
			provider,
			log.WithModule("extraction"),
		),
		stages.NewSentiment(provider, log.WithModule("sentiment")),
		stages.NewStructuring(provider, log.WithModule("structuring")),
	)

	analysisService := services.NewAnalysis(a.persistence, controller, a.eventBus, a.logger)
	handlers := web.NewAPIHandlers(analysisService, a.validate, a.tempDir)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Vidlens API")
	})

	an := app.Group("/analyses")
	an.Post("/youtube", handlers.CreateYouTubeAnalysis)
	an.Post("/upload", handlers.CreateUploadAnalysis)
	an.Get("/", handlers.GetAnalyses)
	an.Get("/:id", handlers.GetAnalysis)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
