package worker

import (
	"context"
	"fmt"
)

// StepInput is the accumulated system state a request carries. SETUP
// populates the full definition; STEP updates coordinates (and box, if
// resent). Coords is the flattened 3N layout; Types and Charges hold one
// element per atom.
type StepInput struct {
	Units   string
	Dim     int32
	Natoms  int32
	Ntypes  int32
	BoxLo   []float64
	BoxHi   []float64
	BoxTilt []float64
	Types   []int32
	Coords  []float64
	Charges []float64
}

// StepOutput is one evaluation result: per-atom forces (3N), the scalar
// potential energy and the 6-component symmetric virial.
type StepOutput struct {
	Forces []float64
	Energy float64
	Virial []float64
}

// Evaluator is the opaque external computation invoked once per step. It
// blocks for the duration of the computation; any failure it returns is
// domain-level, never a wire-level session error.
type Evaluator interface {
	Evaluate(ctx context.Context, in StepInput) (StepOutput, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, in StepInput) (StepOutput, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, in StepInput) (StepOutput, error) {
	return f(ctx, in)
}

// ComputationError reports a failed external computation step. The serve
// loop decides whether to report it upstream as a negative-ID message or
// to abort the session.
type ComputationError struct {
	Reason string
	Err    error
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("worker: computation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("worker: computation failed: %s", e.Reason)
}

func (e *ComputationError) Unwrap() error { return e.Err }
