package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/shockbench/internal/report"
	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/trial"
)

var (
	flagPerformance bool
	flagDistributed bool
	flagTrial       string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the validation trial suite",
		RunE:  runSuite,
	}
	cmd.Flags().BoolVar(&flagPerformance, "performance", false, "include performance trials")
	cmd.Flags().BoolVar(&flagDistributed, "distributed", false, "include distributed (multi-rank) trials")
	cmd.Flags().StringVar(&flagTrial, "trial", "", "run a single named trial")
	return cmd
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := trial.Default(cfg.Defaults.Tolerance)
	var specs []trial.Spec
	if flagTrial != "" {
		spec, ok := reg.Lookup(flagTrial)
		if !ok {
			return fmt.Errorf("unknown trial %q (see 'shockbench list')", flagTrial)
		}
		specs = []trial.Spec{spec}
	} else {
		specs = reg.Select(flagPerformance, flagDistributed)
	}

	needLauncher := false
	for _, s := range specs {
		if s.Distributed() {
			needLauncher = true
			break
		}
	}
	r, d := newRunner(cfg)
	if err := d.Preflight(needLauncher); err != nil {
		return err
	}

	runDir, err := prepareRunDir(cfg)
	if err != nil {
		return err
	}

	suite, err := r.Suite(context.Background(), specs)
	if err != nil {
		return err
	}

	rec := result.NewSuiteRecord(suite)
	if err := result.WriteJSON(filepath.Join(runDir, "suite.json"), rec); err != nil {
		return err
	}
	archiveSweep(cfg, "suite", func(a *result.Archive, id string) error {
		return a.RecordSuite(id, rec)
	})

	fmt.Println("\n--- Results ---")
	if err := report.Generate(runDir, "table", os.Stdout); err != nil {
		return err
	}
	if suite.Failed > 0 {
		return fmt.Errorf("%d of %d trials failed", suite.Failed, len(suite.Trials))
	}
	return nil
}
