package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vidlens/vidlens/pkg/log"
	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/otelhelper"
)

// Config carries everything the engine needs at construction time. Stage
// logic never reads ambient globals; provider credentials and model names
// travel through here into the concrete collaborators.
type Config struct {
	Logger *slog.Logger
	Tracer trace.Tracer
}

// Controller sequences the stages of a run and owns all short-circuit logic.
// Each stage stays a pure function; the controller applies its delta and
// evaluates the continuation predicate before invoking the next stage.
type Controller struct {
	stages []Stage
	logger *slog.Logger
	tracer trace.Tracer
}

func NewController(cfg Config, stages ...Stage) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("vidlens")
	}

	return &Controller{
		stages: stages,
		logger: logger,
		tracer: tracer,
	}
}

// Run executes the stages sequentially until completion or the first halt
// and returns the terminal state. The initial status and error list are
// reset here so a run always starts from a clean control block.
func (c *Controller) Run(ctx context.Context, initial models.AnalysisState) models.AnalysisState {
	state := initial
	state.Status = models.StatusProcessing
	state.Errors = nil

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "workflow.run",
		attribute.String(otelhelper.AnalysisIDKey, state.ID),
		attribute.String(otelhelper.VideoURLKey, state.VideoURL))
	defer span.End()

	logger := log.WithAnalysis(c.logger, state.ID)

	for _, stage := range c.stages {
		logger.Info("running stage", "stage", stage.Name(), "status", string(state.Status))

		state = c.runStage(ctx, stage, state)

		if transition := NextTransition(state); transition == Halt {
			logger.Warn("halting run",
				"stage", stage.Name(),
				"status", string(state.Status),
				"errors", state.Errors)
			span.SetAttributes(attribute.String(otelhelper.StatusKey, string(state.Status)))
			otelhelper.SetError(span, errorFromState(state),
				attribute.String(otelhelper.StageNameKey, stage.Name()))

			return state
		}
	}

	span.SetAttributes(attribute.String(otelhelper.StatusKey, string(state.Status)))
	logger.Info("run completed", "status", string(state.Status))

	return state
}

func (c *Controller) runStage(ctx context.Context, stage Stage, state models.AnalysisState) models.AnalysisState {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "workflow.stage",
		attribute.String(otelhelper.AnalysisIDKey, state.ID),
		attribute.String(otelhelper.StageNameKey, stage.Name()))
	defer span.End()

	delta := stage.Run(ctx, state)

	return state.Apply(delta)
}

func errorFromState(state models.AnalysisState) error {
	if len(state.Errors) == 0 {
		return errors.New("run halted with status " + string(state.Status))
	}

	return errors.New(strings.Join(state.Errors, "; "))
}
