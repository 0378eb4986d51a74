package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/vidlens/vidlens/pkg/cmd"
	"github.com/vidlens/vidlens/pkg/log"
	"github.com/vidlens/vidlens/pkg/otelhelper"
	"github.com/vidlens/vidlens/pkg/providers"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "vidlens-api",
		Usage:                 "Analyze video sentiment and key points",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgresql:// or file://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "openai-api-key",
				Usage:    "API key for transcription and analysis providers",
				Required: true,
				Sources:  cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "Chat model used for sentiment and structuring",
				Value:   "gpt-4o-mini",
				Sources: cli.EnvVars("VIDLENS_MODEL", "OPENAI_MODEL"),
			},
			&cli.StringFlag{
				Name:    "temp-dir",
				Usage:   "Directory for downloaded audio and uploaded videos",
				Value:   os.TempDir(),
				Sources: cli.EnvVars("TEMP_DIR"),
			},
			&cli.DurationFlag{
				Name:    "request-timeout",
				Usage:   "Timeout per provider request",
				Value:   2 * time.Minute,
				Sources: cli.EnvVars("REQUEST_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Vidlens API")

			tempDir := command.String("temp-dir")
			if err := os.MkdirAll(tempDir, 0o750); err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				providers.OpenAIConfig{
					APIKey:         command.String("openai-api-key"),
					Model:          command.String("model"),
					RequestTimeout: command.Duration("request-timeout"),
				},
				tempDir,
			)

			if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
				tracer, err := otelhelper.NewTracer(ctx, "vidlens-api")
				if err != nil {
					logger.WarnContext(ctx, "Tracing disabled, tracer init failed", "error", err)
				} else {
					api.tracer = tracer
				}
			}

			if err := api.Start(int(command.Int("port"))); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
