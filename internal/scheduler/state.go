package scheduler

import (
	"time"

	"github.com/specialistvlad/graphvisgo/internal/metrics"
)

// State is the phase of the render pipeline.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// outcome maps a terminal state to its metrics label.
func (s State) outcome() string {
	switch s {
	case StateSucceeded:
		return metrics.OutcomeSucceeded
	case StateFailed:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeCancelled
	}
}

// Result describes a finished render.
type Result struct {
	TaskID  string
	State   State
	Edges   int
	Elapsed time.Duration
	Err     error
}
