package compute

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

func TestLennardJonesMinimum(t *testing.T) {
	lj := DefaultLennardJones()
	rmin := math.Pow(2, 1.0/6.0)
	in := worker.StepInput{
		Natoms: 2,
		Coords: []float64{0, 0, 0, rmin, 0, 0},
	}

	out, err := lj.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if math.Abs(out.Energy-(-1.0)) > 1e-12 {
		t.Fatalf("energy at minimum = %v, want -1", out.Energy)
	}
	for i, f := range out.Forces {
		if math.Abs(f) > 1e-12 {
			t.Fatalf("forces[%d] = %v, want ~0 at the potential minimum", i, f)
		}
	}
}

func TestLennardJonesForcesAntisymmetric(t *testing.T) {
	lj := DefaultLennardJones()
	in := worker.StepInput{
		Natoms: 2,
		Coords: []float64{0, 0, 0, 1.0, 0.3, -0.2},
	}

	out, err := lj.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for d := 0; d < 3; d++ {
		if math.Abs(out.Forces[d]+out.Forces[3+d]) > 1e-12 {
			t.Fatalf("net force in dim %d: %v vs %v", d, out.Forces[d], out.Forces[3+d])
		}
	}
	// Separation is a bit over sigma, so the pair sits in the
	// attractive well.
	if out.Energy >= 0 {
		t.Fatalf("energy = %v, want attractive", out.Energy)
	}
}

func TestLennardJonesMinimumImage(t *testing.T) {
	lj := DefaultLennardJones()
	// Atoms at opposite box edges are nearest neighbors through the
	// boundary, not across the full box.
	in := worker.StepInput{
		Natoms: 2,
		BoxLo:  []float64{0, 0, 0},
		BoxHi:  []float64{10, 10, 10},
		Coords: []float64{0.2, 0, 0, 9.7, 0, 0},
	}

	out, err := lj.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Energy == 0 {
		t.Fatalf("expected interaction through the periodic boundary")
	}
}

func TestLennardJonesRejectsCoincidentAtoms(t *testing.T) {
	lj := DefaultLennardJones()
	in := worker.StepInput{
		Natoms: 2,
		Coords: []float64{1, 2, 3, 1, 2, 3},
	}
	if _, err := lj.Evaluate(context.Background(), in); err == nil {
		t.Fatalf("expected error for coincident atoms")
	}
}

func TestExternalEvaluatorRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()

	canned := `{"forces":[0,0,0,0,0,0],"energy":-7.25,"virial":[1,2,3,4,5,6]}`
	if err := os.WriteFile(filepath.Join(dir, "canned.json"), []byte(canned), 0o600); err != nil {
		t.Fatalf("write canned output: %v", err)
	}

	eval := ExternalEvaluator{
		Command: []string{"/bin/sh", "-c", "test -s step_input.json && cp canned.json step_output.json"},
		WorkDir: dir,
	}
	out, err := eval.Evaluate(context.Background(), worker.StepInput{
		Natoms: 2,
		Coords: []float64{0, 0, 0, 1, 0, 0},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Energy != -7.25 {
		t.Fatalf("energy = %v", out.Energy)
	}
	if len(out.Forces) != 6 || len(out.Virial) != 6 {
		t.Fatalf("shape mismatch: %+v", out)
	}
}

func TestExternalEvaluatorCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	eval := ExternalEvaluator{
		Command: []string{"/bin/sh", "-c", "echo boom >&2; exit 3"},
		WorkDir: t.TempDir(),
	}
	_, err := eval.Evaluate(context.Background(), worker.StepInput{
		Natoms: 1,
		Coords: []float64{0, 0, 0},
	})
	if err == nil {
		t.Fatalf("expected command failure")
	}
}

func TestExternalEvaluatorBadShape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()
	canned := `{"forces":[0,0,0],"energy":0,"virial":[1,2,3,4,5,6]}`
	if err := os.WriteFile(filepath.Join(dir, "canned.json"), []byte(canned), 0o600); err != nil {
		t.Fatalf("write canned output: %v", err)
	}
	eval := ExternalEvaluator{
		Command: []string{"/bin/sh", "-c", "cp canned.json step_output.json"},
		WorkDir: dir,
	}
	_, err := eval.Evaluate(context.Background(), worker.StepInput{
		Natoms: 2,
		Coords: []float64{0, 0, 0, 1, 0, 0},
	})
	if err == nil {
		t.Fatalf("expected shape error")
	}
}
