package compute

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicholaskarlsen/mdcouple/internal/tools"
	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

const (
	execInputFile  = "step_input.json"
	execOutputFile = "step_output.json"
)

// ExternalEvaluator runs a configured command once per step. The step
// input is written as JSON into the work directory, the command runs
// blocking with no timeout (supervision is the caller's problem), and the
// result is read back from the output file the command must produce.
type ExternalEvaluator struct {
	// Command is the program and its arguments.
	Command []string
	// WorkDir is where input/output files live and the command runs.
	WorkDir string
	// Runner overrides how the command is executed. Nil means run it on
	// the local host.
	Runner tools.CommandRunner
}

type execInput struct {
	Units   string    `json:"units,omitempty"`
	Dim     int32     `json:"dim,omitempty"`
	Natoms  int32     `json:"natoms"`
	Ntypes  int32     `json:"ntypes"`
	BoxLo   []float64 `json:"box_lo,omitempty"`
	BoxHi   []float64 `json:"box_hi,omitempty"`
	BoxTilt []float64 `json:"box_tilt,omitempty"`
	Types   []int32   `json:"types,omitempty"`
	Coords  []float64 `json:"coords"`
	Charges []float64 `json:"charges,omitempty"`
}

type execOutput struct {
	Forces []float64 `json:"forces"`
	Energy float64   `json:"energy"`
	Virial []float64 `json:"virial"`
}

func (e ExternalEvaluator) Evaluate(ctx context.Context, in worker.StepInput) (worker.StepOutput, error) {
	if len(e.Command) == 0 {
		return worker.StepOutput{}, fmt.Errorf("compute: no external command configured")
	}

	payload, err := json.Marshal(execInput{
		Units:   in.Units,
		Dim:     in.Dim,
		Natoms:  in.Natoms,
		Ntypes:  in.Ntypes,
		BoxLo:   in.BoxLo,
		BoxHi:   in.BoxHi,
		BoxTilt: in.BoxTilt,
		Types:   in.Types,
		Coords:  in.Coords,
		Charges: in.Charges,
	})
	if err != nil {
		return worker.StepOutput{}, fmt.Errorf("compute: marshal step input: %w", err)
	}
	inputPath := filepath.Join(e.WorkDir, execInputFile)
	if err := os.WriteFile(inputPath, payload, 0o600); err != nil {
		return worker.StepOutput{}, fmt.Errorf("compute: write %s: %w", inputPath, err)
	}

	outputPath := filepath.Join(e.WorkDir, execOutputFile)
	os.Remove(outputPath)

	runner := e.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	_, stderr, code, err := runner.Run(ctx, e.WorkDir, e.Command[0], e.Command[1:]...)
	if err != nil {
		return worker.StepOutput{}, fmt.Errorf("compute: %s exited %d: %w: %s",
			e.Command[0], code, err, firstLines(stderr, 5))
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return worker.StepOutput{}, fmt.Errorf("compute: read %s: %w", outputPath, err)
	}
	var out execOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return worker.StepOutput{}, fmt.Errorf("compute: parse %s: %w", outputPath, err)
	}

	if want := 3 * int(in.Natoms); len(out.Forces) != want {
		return worker.StepOutput{}, fmt.Errorf("compute: %d force components, want %d", len(out.Forces), want)
	}
	if len(out.Virial) != 6 {
		return worker.StepOutput{}, fmt.Errorf("compute: %d virial components, want 6", len(out.Virial))
	}
	return worker.StepOutput{Forces: out.Forces, Energy: out.Energy, Virial: out.Virial}, nil
}

func firstLines(b []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, " | ")
}
