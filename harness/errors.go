package harness

import (
	"errors"
	"fmt"

	"github.com/weiihann/storebench/backend"
)

// Phase is a step of an operation's measurement.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWarmup
	PhaseMeasuring
	PhaseReported
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWarmup:
		return "warmup"
	case PhaseMeasuring:
		return "measuring"
	case PhaseReported:
		return "reported"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// BenchmarkAbortedError reports an operation whose measurement stopped
// because an iteration failed.
type BenchmarkAbortedError struct {
	Backend   string
	Operation string
	Phase     Phase
	Iteration int
	Err       error
}

func (e *BenchmarkAbortedError) Error() string {
	return fmt.Sprintf("benchmark aborted: %s %s (%s iteration %d): %v",
		e.Backend, e.Operation, e.Phase, e.Iteration, e.Err)
}

func (e *BenchmarkAbortedError) Unwrap() error {
	return e.Err
}

// PhaseError reports a run-level failure: the run phase it happened in
// and the backend involved, if any.
type PhaseError struct {
	Phase   string
	Backend string
	Err     error
}

func (e *PhaseError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Backend, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// IsAborted reports whether err carries a BenchmarkAbortedError.
func IsAborted(err error) bool {
	var aborted *BenchmarkAbortedError
	return errors.As(err, &aborted)
}

// IsFatal reports whether err must stop the whole run rather than a
// single operation.
func IsFatal(err error) bool {
	return errors.Is(err, backend.ErrStorageUnavailable) ||
		errors.Is(err, backend.ErrIntegrityViolation)
}
