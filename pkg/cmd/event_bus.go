package cmd

import (
	"log/slog"

	"github.com/vidlens/vidlens/pkg/eventbus"
)

// NewEventBus creates the in-process event bus the API publishes analysis
// lifecycle events on.
func NewEventBus(logger *slog.Logger) eventbus.EventBus {
	return eventbus.NewGoChannelEventBus(logger)
}
