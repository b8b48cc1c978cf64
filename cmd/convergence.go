package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/shockbench/internal/plot"
	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/sweep"
)

var (
	flagConvSize    int
	flagConvMaxIter int
	flagConvStep    int
)

func newConvergenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "Sweep iteration counts and analyze the final energy trend",
		RunE:  runConvergence,
	}
	cmd.Flags().IntVar(&flagConvSize, "size", 10, "problem size (N for N^3)")
	cmd.Flags().IntVar(&flagConvMaxIter, "max-iterations", 50, "largest iteration count to run")
	cmd.Flags().IntVar(&flagConvStep, "step", 5, "iteration count increment")
	return cmd
}

func runConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagConvStep < 1 {
		return fmt.Errorf("step must be at least 1")
	}

	r, d := newRunner(cfg)
	if err := d.Preflight(false); err != nil {
		return err
	}
	runDir, err := prepareRunDir(cfg)
	if err != nil {
		return err
	}

	res, err := r.Convergence(context.Background(), sweep.ConvergenceOpts{
		Size:          flagConvSize,
		MaxIterations: flagConvMaxIter,
		Step:          flagConvStep,
		Threshold:     cfg.Defaults.ConvergenceThreshold,
	})
	if err != nil {
		return err
	}

	if err := result.WriteJSON(filepath.Join(runDir, "convergence.json"), res); err != nil {
		return err
	}
	if err := result.WriteConvergenceCSV(filepath.Join(runDir, "convergence.csv"), res); err != nil {
		return err
	}
	if err := plot.RenderAll(renderer(cfg), runDir, plot.Convergence(res)); err != nil {
		return err
	}
	archiveSweep(cfg, "convergence", func(a *result.Archive, id string) error {
		return a.RecordConvergence(id, res)
	})

	switch res.Outcome {
	case sweep.OutcomeConverged:
		last := res.RelativeChange[len(res.RelativeChange)-1]
		fmt.Printf("\nConverged: final relative change %.2e below %.0e\n", last, cfg.Defaults.ConvergenceThreshold)
		return nil
	case sweep.OutcomeInsufficientData:
		return fmt.Errorf("insufficient data: %d usable points, %d failed", len(res.Points), res.Failed)
	default:
		last := res.RelativeChange[len(res.RelativeChange)-1]
		return fmt.Errorf("not converged: final relative change %.2e", last)
	}
}
