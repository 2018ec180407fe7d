package compute

import (
	"context"
	"fmt"

	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

// LennardJones evaluates a truncated 12-6 pair potential with the
// minimum-image convention in an orthogonal box. It exists so a coupling
// pair can run end to end without an external binary; it is not a
// substitute for a real evaluator.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
}

func DefaultLennardJones() LennardJones {
	return LennardJones{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5}
}

func (lj LennardJones) Evaluate(_ context.Context, in worker.StepInput) (worker.StepOutput, error) {
	n := int(in.Natoms)
	if len(in.Coords) != 3*n {
		return worker.StepOutput{}, fmt.Errorf("compute: coords length %d, want %d", len(in.Coords), 3*n)
	}

	var period [3]float64
	if len(in.BoxLo) == 3 && len(in.BoxHi) == 3 {
		for d := 0; d < 3; d++ {
			period[d] = in.BoxHi[d] - in.BoxLo[d]
		}
	}

	eps, sigma, cutoff := lj.Epsilon, lj.Sigma, lj.Cutoff
	if sigma <= 0 {
		sigma = 1.0
	}
	if cutoff <= 0 {
		cutoff = 2.5 * sigma
	}
	cutoffSq := cutoff * cutoff

	out := worker.StepOutput{
		Forces: make([]float64, 3*n),
		Virial: make([]float64, 6),
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var dr [3]float64
			for d := 0; d < 3; d++ {
				dr[d] = in.Coords[3*i+d] - in.Coords[3*j+d]
				if period[d] > 0 {
					for dr[d] > 0.5*period[d] {
						dr[d] -= period[d]
					}
					for dr[d] < -0.5*period[d] {
						dr[d] += period[d]
					}
				}
			}
			rsq := dr[0]*dr[0] + dr[1]*dr[1] + dr[2]*dr[2]
			if rsq == 0 {
				return worker.StepOutput{}, fmt.Errorf("compute: atoms %d and %d coincide", i, j)
			}
			if rsq > cutoffSq {
				continue
			}

			sr2 := sigma * sigma / rsq
			sr6 := sr2 * sr2 * sr2
			sr12 := sr6 * sr6
			out.Energy += 4 * eps * (sr12 - sr6)

			// f = dU/dr scaled so that force_i = fpair * dr.
			fpair := 24 * eps * (2*sr12 - sr6) / rsq
			for d := 0; d < 3; d++ {
				f := fpair * dr[d]
				out.Forces[3*i+d] += f
				out.Forces[3*j+d] -= f
			}

			out.Virial[0] += dr[0] * fpair * dr[0]
			out.Virial[1] += dr[1] * fpair * dr[1]
			out.Virial[2] += dr[2] * fpair * dr[2]
			out.Virial[3] += dr[0] * fpair * dr[1]
			out.Virial[4] += dr[0] * fpair * dr[2]
			out.Virial[5] += dr[1] * fpair * dr[2]
		}
	}
	return out, nil
}
