package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/shockbench/internal/config"
	"github.com/signalnine/shockbench/internal/driver"
	"github.com/signalnine/shockbench/internal/plot"
	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/sweep"
)

const defaultConfigFile = "shockbench.yaml"

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shockbench",
		Short: "Benchmark and validation harness for the LULESH shock hydrodynamics proxy",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFile, "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newConvergenceCmd())
	root.AddCommand(newScalingCmd())
	root.AddCommand(newMemoryCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	return root
}

// loadConfig reads the config file. The default path is allowed to be absent;
// an explicitly named file is not.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, os.ErrNotExist) && cfgFile == defaultConfigFile {
		return config.Default(), nil
	}
	return cfg, err
}

func newRunner(cfg *config.Config) (*sweep.Runner, *driver.Driver) {
	d := driver.New(cfg.Subject.Path, cfg.Subject.Launcher)
	r := &sweep.Runner{
		Exec:           d,
		ThreadEnv:      cfg.Subject.ThreadEnv,
		SampleInterval: cfg.Sampling.Interval(),
	}
	return r, d
}

func prepareRunDir(cfg *config.Config) (string, error) {
	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return "", err
	}
	fmt.Printf("Run directory: %s\n", runDir)
	return runDir, nil
}

func renderer(cfg *config.Config) plot.Renderer {
	if cfg.Results.Plots {
		return plot.PNG{}
	}
	return plot.Noop{}
}

// archiveSweep appends a sweep's rows to the archive database when one is
// configured. Archival is best-effort and never fails the run.
func archiveSweep(cfg *config.Config, kind string, record func(a *result.Archive, id string) error) {
	if cfg.Results.Archive == "" {
		return
	}
	a, err := result.OpenArchive(cfg.Results.Archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archive unavailable: %v\n", err)
		return
	}
	defer a.Close()
	id, err := a.BeginSweep(kind)
	if err == nil {
		err = record(a, id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archiving %s: %v\n", kind, err)
	}
}
