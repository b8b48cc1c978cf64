package config_test

import (
	"testing"
	"time"

	"github.com/signalnine/shockbench/internal/config"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Subject.Path != "/opt/lulesh/lulesh2.0" {
		t.Errorf("subject path: got %q", cfg.Subject.Path)
	}
	// Everything unset falls back to defaults.
	if cfg.Subject.Launcher != "mpirun" {
		t.Errorf("expected default launcher, got %q", cfg.Subject.Launcher)
	}
	if cfg.Subject.ThreadEnv != "OMP_NUM_THREADS" {
		t.Errorf("expected default thread_env, got %q", cfg.Subject.ThreadEnv)
	}
	if cfg.Sampling.Interval() != 100*time.Millisecond {
		t.Errorf("expected default interval, got %v", cfg.Sampling.Interval())
	}
	if cfg.Defaults.Tolerance != 1e-5 {
		t.Errorf("expected default tolerance, got %g", cfg.Defaults.Tolerance)
	}
	if cfg.Defaults.ConvergenceThreshold != 1e-6 {
		t.Errorf("expected default threshold, got %g", cfg.Defaults.ConvergenceThreshold)
	}
	if cfg.Results.Dir != "results" {
		t.Errorf("expected default results dir, got %q", cfg.Results.Dir)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Subject.Launcher != "srun" {
		t.Errorf("launcher: got %q", cfg.Subject.Launcher)
	}
	if cfg.Subject.ThreadEnv != "SLURM_CPUS_PER_TASK" {
		t.Errorf("thread_env: got %q", cfg.Subject.ThreadEnv)
	}
	if cfg.Sampling.Interval() != 50*time.Millisecond {
		t.Errorf("interval: got %v", cfg.Sampling.Interval())
	}
	if cfg.Defaults.Tolerance != 1e-4 {
		t.Errorf("tolerance: got %g", cfg.Defaults.Tolerance)
	}
	if !cfg.Results.Plots {
		t.Error("expected plots enabled")
	}
	if cfg.Results.Archive != "results.db" {
		t.Errorf("archive: got %q", cfg.Results.Archive)
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Subject.Path != "./lulesh2.0" {
		t.Errorf("default subject path: got %q", cfg.Subject.Path)
	}
	if cfg.Defaults.ConvergenceThreshold != 1e-6 {
		t.Errorf("default threshold: got %g", cfg.Defaults.ConvergenceThreshold)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
