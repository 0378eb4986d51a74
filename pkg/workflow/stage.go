// Package workflow implements the staged analysis engine: the stage
// contract, the flow controller and the continuation predicate that
// short-circuits a run on failure.
package workflow

import (
	"context"

	"github.com/vidlens/vidlens/pkg/models"
)

// Stage is one processing step of a workflow run. A stage reads only fields
// the controller guarantees present, writes only its documented output set,
// and reports unrecoverable conditions as data in the returned delta rather
// than panicking past the controller.
type Stage interface {
	Name() string
	Run(ctx context.Context, state models.AnalysisState) models.StateDelta
}

// Transition is the controller's decision after applying a stage's delta.
type Transition int

const (
	// Proceed advances to the next stage in sequence.
	Proceed Transition = iota
	// Halt stops the run; the state is terminal.
	Halt
)

func (t Transition) String() string {
	if t == Halt {
		return "halt"
	}

	return "proceed"
}

// NextTransition is the continuation predicate, evaluated after every stage:
// halt when any error has been recorded or a terminal failure status was set.
func NextTransition(state models.AnalysisState) Transition {
	if state.Halted() {
		return Halt
	}

	return Proceed
}
