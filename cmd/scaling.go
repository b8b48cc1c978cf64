package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/shockbench/internal/config"
	"github.com/signalnine/shockbench/internal/plot"
	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/sweep"
)

var (
	flagScaleType    string
	flagScaleMinSize int
	flagScaleMaxSize int
	flagScaleStep    int
	flagScaleSize    int
	flagScaleIters   int
	flagScaleThreads int
	flagMaxThreads   int
)

func newScalingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaling",
		Short: "Sweep problem size or thread count and measure execution time",
		RunE:  runScaling,
	}
	cmd.Flags().StringVar(&flagScaleType, "test-type", "both", "which sweep to run (size, thread, both)")
	cmd.Flags().IntVar(&flagScaleMinSize, "min-size", 10, "smallest problem size for the size sweep")
	cmd.Flags().IntVar(&flagScaleMaxSize, "max-size", 50, "largest problem size for the size sweep")
	cmd.Flags().IntVar(&flagScaleStep, "step-size", 10, "problem size increment")
	cmd.Flags().IntVar(&flagScaleSize, "size", 30, "problem size for the thread sweep")
	cmd.Flags().IntVar(&flagScaleIters, "iterations", 10, "iteration count for every run")
	cmd.Flags().IntVar(&flagScaleThreads, "threads", 0, "fixed thread count for the size sweep (0 leaves it alone)")
	cmd.Flags().IntVar(&flagMaxThreads, "max-threads", 0, "largest thread count for the thread sweep (0 detects cores)")
	return cmd
}

func runScaling(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagScaleType != "size" && flagScaleType != "thread" && flagScaleType != "both" {
		return fmt.Errorf("unknown test-type %q (want size, thread, or both)", flagScaleType)
	}

	r, d := newRunner(cfg)
	if err := d.Preflight(false); err != nil {
		return err
	}
	runDir, err := prepareRunDir(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if flagScaleType == "size" || flagScaleType == "both" {
		sizes := sweep.SizeCandidates(flagScaleMinSize, flagScaleMaxSize, flagScaleStep)
		if len(sizes) == 0 {
			return fmt.Errorf("empty size range %d..%d step %d", flagScaleMinSize, flagScaleMaxSize, flagScaleStep)
		}
		fmt.Println("=== Problem Size Scaling ===")
		res, err := r.SizeScaling(ctx, sweep.SizeScalingOpts{
			Sizes:      sizes,
			Iterations: flagScaleIters,
			Threads:    flagScaleThreads,
		})
		if err != nil {
			return err
		}
		if err := persistScaling(cfg, runDir, "size_scaling", res); err != nil {
			return err
		}
	}
	if flagScaleType == "thread" || flagScaleType == "both" {
		fmt.Println("=== Thread Scaling ===")
		res, err := r.ThreadScaling(ctx, sweep.ThreadScalingOpts{
			Size:       flagScaleSize,
			Iterations: flagScaleIters,
			MaxThreads: flagMaxThreads,
		})
		if err != nil {
			return err
		}
		if err := persistScaling(cfg, runDir, "thread_scaling", res); err != nil {
			return err
		}
	}
	return nil
}

func persistScaling(cfg *config.Config, runDir, name string, res *sweep.ScalingResult) error {
	if err := result.WriteJSON(filepath.Join(runDir, name+".json"), res); err != nil {
		return err
	}
	if err := result.WriteScalingCSV(filepath.Join(runDir, name+".csv"), res); err != nil {
		return err
	}
	if err := plot.RenderAll(renderer(cfg), runDir, plot.Scaling(res)); err != nil {
		return err
	}
	archiveSweep(cfg, name, func(a *result.Archive, id string) error {
		return a.RecordScaling(id, res)
	})
	if res.Failed > 0 {
		fmt.Printf("%d of %d configurations dropped\n", res.Failed, len(res.Points))
	}
	return nil
}
