// Package sweep drives ordered sequences of subject trials that vary exactly
// one control dimension, and derives the secondary series (relative change,
// speedup, efficiency) from the raw metrics.
//
// Trials within a sweep run strictly one at a time, in listed order: the
// subject is resource-intensive, and overlapping runs would corrupt both
// timing and memory measurements. Any individual trial failure becomes a
// missing data point; only a launch failure aborts the sweep.
package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/signalnine/shockbench/internal/driver"
	"github.com/signalnine/shockbench/internal/extract"
	"github.com/signalnine/shockbench/internal/sampler"
	"github.com/signalnine/shockbench/internal/trial"
)

// Executor runs one subject invocation to completion. *driver.Driver is the
// production implementation.
type Executor interface {
	Execute(ctx context.Context, inv driver.Invocation) (*driver.Result, error)
	ExecuteSampled(ctx context.Context, inv driver.Invocation, interval time.Duration) (*driver.Result, *sampler.Series, error)
}

// Runner carries the plumbing shared by every sweep.
type Runner struct {
	Exec           Executor
	ThreadEnv      string        // env var the subject reads for its thread count
	SampleInterval time.Duration // memory polling interval; 0 uses the default
}

const defaultSampleInterval = 100 * time.Millisecond

func (r *Runner) interval() time.Duration {
	if r.SampleInterval > 0 {
		return r.SampleInterval
	}
	return defaultSampleInterval
}

// runOnce executes a single configuration and extracts its metrics. The
// returned error is a launch failure and nothing else; a non-zero exit comes
// back as an unsuccessful result.
func (r *Runner) runOnce(ctx context.Context, name string, inv driver.Invocation) (*trial.Result, error) {
	res, err := r.Exec.Execute(ctx, inv)
	if err != nil {
		return nil, err
	}
	return toTrialResult(name, res), nil
}

func toTrialResult(name string, res *driver.Result) *trial.Result {
	return &trial.Result{
		Name:     name,
		Success:  res.ExitCode == 0,
		ExitCode: res.ExitCode,
		WallTime: res.WallTime,
		Metrics:  extract.Parse(res.Stdout),
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

// TrialOutcome pairs one executed spec with its verdict.
type TrialOutcome struct {
	Spec    trial.Spec
	Result  *trial.Result
	Verdict trial.Verdict
}

// SuiteResult accumulates the outcomes of one registry selection.
type SuiteResult struct {
	Trials []TrialOutcome
	Passed int
	Failed int
}

// Suite runs the given specs in order, evaluating each against its reference.
// Trial-scoped failures are recorded and the suite continues; only a launch
// failure returns an error.
func (r *Runner) Suite(ctx context.Context, specs []trial.Spec) (*SuiteResult, error) {
	out := &SuiteResult{}
	for _, spec := range specs {
		fmt.Printf("Running trial: %s - %s\n", spec.Name, spec.Description)
		res, err := r.runOnce(ctx, spec.Name, driver.Invocation{Args: spec.Args, Ranks: spec.Ranks})
		if err != nil {
			return nil, fmt.Errorf("trial %s: %w", spec.Name, err)
		}
		v := trial.Evaluate(res, spec)
		if v.Passed {
			out.Passed++
			fmt.Printf("  PASS: %s\n", v.Message)
		} else {
			out.Failed++
			fmt.Printf("  FAIL: %s\n", v.Message)
		}
		out.Trials = append(out.Trials, TrialOutcome{Spec: spec, Result: res, Verdict: v})
	}
	return out, nil
}

func warnSkipped(kind string, value int, res *trial.Result) {
	if !res.Success {
		log.Printf("warning: %s=%d exited with code %d; dropping data point", kind, value, res.ExitCode)
		return
	}
	log.Printf("warning: %s=%d produced no extractable metrics; dropping data point", kind, value)
}
