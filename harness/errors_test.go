package harness

import (
	"errors"
	"fmt"
	"testing"

	"github.com/weiihann/storebench/backend"
)

func TestPhaseErrorMessage(t *testing.T) {
	tests := []struct {
		err  *PhaseError
		want string
	}{
		{
			err:  &PhaseError{Phase: "validate", Err: errors.New("bad")},
			want: "validate: bad",
		},
		{
			err:  &PhaseError{Phase: "seed", Backend: "sqlite", Err: backend.ErrStorageUnavailable},
			want: "seed sqlite: storage unavailable",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestBenchmarkAbortedError(t *testing.T) {
	cause := fmt.Errorf("%w: disk full", backend.ErrWriteFailed)
	err := &BenchmarkAbortedError{
		Backend:   "bolt",
		Operation: OpInsert,
		Phase:     PhaseMeasuring,
		Iteration: 3,
		Err:       cause,
	}

	want := "benchmark aborted: bolt insert (measuring iteration 3): write failed: disk full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, backend.ErrWriteFailed) {
		t.Error("cause is not reachable through Unwrap")
	}

	wrapped := fmt.Errorf("run: %w", err)
	if !IsAborted(wrapped) {
		t.Error("IsAborted = false for wrapped abort")
	}
	if IsFatal(wrapped) {
		t.Error("IsFatal = true for a write failure")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "storage", err: fmt.Errorf("open: %w", backend.ErrStorageUnavailable), want: true},
		{name: "integrity", err: &BenchmarkAbortedError{Err: backend.ErrIntegrityViolation}, want: true},
		{name: "write", err: backend.ErrWriteFailed, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseWarmup, "warmup"},
		{PhaseMeasuring, "measuring"},
		{PhaseReported, "reported"},
		{Phase(9), "phase(9)"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}
