package sweep

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/signalnine/shockbench/internal/driver"
)

// Sweep outcomes. Insufficient data is its own outcome so that fewer than two
// points can never masquerade as a converged or unconverged verdict.
const (
	OutcomeConverged        = "converged"
	OutcomeNotConverged     = "not_converged"
	OutcomeInsufficientData = "insufficient_data"
)

type ConvergenceOpts struct {
	Size          int
	MaxIterations int
	Step          int
	Threshold     float64 // last relative change below this means converged
}

// ConvergencePoint is one successful run in the iteration progression.
type ConvergencePoint struct {
	Iterations int     `json:"iterations"`
	Energy     float64 `json:"energy"`
}

// ConvergenceResult holds the collected energies and the derived
// relative-change series; len(RelativeChange) == len(Points)-1 whenever two
// or more points were collected.
type ConvergenceResult struct {
	Size           int                `json:"size"`
	Points         []ConvergencePoint `json:"points"`
	RelativeChange []float64          `json:"relative_change"`
	Outcome        string             `json:"outcome"`
	Failed         int                `json:"failed"`
}

// Convergence runs one trial per iteration count in the arithmetic
// progression 1, 1+step, ... up to MaxIterations, and analyzes the trend of
// the final energy. Failed configurations are dropped and the sweep continues.
func (r *Runner) Convergence(ctx context.Context, opts ConvergenceOpts) (*ConvergenceResult, error) {
	out := &ConvergenceResult{Size: opts.Size}
	for i := 1; i <= opts.MaxIterations; i += opts.Step {
		fmt.Printf("Running with %d iterations...", i)
		inv := driver.Invocation{
			Args: []string{"-s", strconv.Itoa(opts.Size), "-i", strconv.Itoa(i), "-q"},
		}
		res, err := r.runOnce(ctx, fmt.Sprintf("convergence_i%d", i), inv)
		if err != nil {
			return nil, err
		}
		if !res.Success || res.Metrics.Energy == nil {
			fmt.Println(" failed")
			warnSkipped("iterations", i, res)
			out.Failed++
			continue
		}
		fmt.Printf(" final energy: %g\n", *res.Metrics.Energy)
		out.Points = append(out.Points, ConvergencePoint{Iterations: i, Energy: *res.Metrics.Energy})
	}

	energies := make([]float64, len(out.Points))
	for i, p := range out.Points {
		energies[i] = p.Energy
	}
	out.RelativeChange = RelativeChanges(energies)

	switch {
	case len(out.Points) < 2:
		out.Outcome = OutcomeInsufficientData
	case out.RelativeChange[len(out.RelativeChange)-1] < opts.Threshold:
		out.Outcome = OutcomeConverged
	default:
		out.Outcome = OutcomeNotConverged
	}
	return out, nil
}

// RelativeChanges returns |E[k]-E[k-1]| / |E[k-1]| for each consecutive pair.
// The result has len(energies)-1 entries, or none for fewer than two inputs.
func RelativeChanges(energies []float64) []float64 {
	if len(energies) < 2 {
		return nil
	}
	out := make([]float64, 0, len(energies)-1)
	for k := 1; k < len(energies); k++ {
		out = append(out, math.Abs(energies[k]-energies[k-1])/math.Abs(energies[k-1]))
	}
	return out
}
