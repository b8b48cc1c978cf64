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
	flagMemSize    int
	flagMemIters   int
	flagMemScaling bool
	flagMemMaxSize int
	flagMemStep    int
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Sample the subject's memory footprint while it runs",
		RunE:  runMemory,
	}
	cmd.Flags().IntVar(&flagMemSize, "size", 30, "problem size for a single measurement")
	cmd.Flags().IntVar(&flagMemIters, "iterations", 10, "iteration count for every run")
	cmd.Flags().BoolVar(&flagMemScaling, "scaling", false, "measure a range of sizes instead of one")
	cmd.Flags().IntVar(&flagMemMaxSize, "max-size", 50, "largest size for the scaling range")
	cmd.Flags().IntVar(&flagMemStep, "step", 10, "size increment for the scaling range")
	return cmd
}

func runMemory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sizes := []int{flagMemSize}
	if flagMemScaling {
		sizes = sweep.SizeCandidates(flagMemSize, flagMemMaxSize, flagMemStep)
		if len(sizes) == 0 {
			return fmt.Errorf("empty size range %d..%d step %d", flagMemSize, flagMemMaxSize, flagMemStep)
		}
	}

	r, d := newRunner(cfg)
	if err := d.Preflight(false); err != nil {
		return err
	}
	runDir, err := prepareRunDir(cfg)
	if err != nil {
		return err
	}

	res, err := r.Memory(context.Background(), sweep.MemoryOpts{
		Sizes:      sizes,
		Iterations: flagMemIters,
	})
	if err != nil {
		return err
	}

	if err := result.WriteJSON(filepath.Join(runDir, "memory.json"), res); err != nil {
		return err
	}
	if err := result.WriteMemoryCSV(filepath.Join(runDir, "memory.csv"), res); err != nil {
		return err
	}
	for _, p := range res.Points {
		if p.Series == nil {
			continue
		}
		name := fmt.Sprintf("memory_samples_s%d.csv", p.Size)
		if err := result.WriteSamplesCSV(filepath.Join(runDir, name), p.Series); err != nil {
			return err
		}
	}
	if len(res.Points) > 1 {
		if err := plot.RenderAll(renderer(cfg), runDir, plot.Memory(res)); err != nil {
			return err
		}
	}
	archiveSweep(cfg, "memory", func(a *result.Archive, id string) error {
		return a.RecordMemory(id, res)
	})

	if res.Failed > 0 {
		return fmt.Errorf("%d of %d sizes failed", res.Failed, res.Failed+len(res.Points))
	}
	return nil
}
