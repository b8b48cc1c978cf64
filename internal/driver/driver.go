package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/signalnine/shockbench/internal/sampler"
)

// LaunchError reports that the subject (or its distributed launcher) could
// not be spawned at all. It is suite-fatal: no trial output exists to salvage.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Invocation is one parameterized run of the subject.
type Invocation struct {
	Args  []string
	Env   map[string]string // overrides applied on top of the parent env
	Ranks int               // >1 wraps the run in the distributed launcher
}

// Result captures everything observable from a completed run. A non-zero
// exit code lives here, not in an error: partial output is still extractable.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	WallTime time.Duration
}

// Driver launches the subject executable and blocks until it exits.
// A single invocation is the contract; there are no retries.
type Driver struct {
	Path     string // subject executable
	Launcher string // distributed launch command, e.g. mpirun
}

func New(path, launcher string) *Driver {
	return &Driver{Path: path, Launcher: launcher}
}

// Preflight verifies the subject binary exists before any trial runs. When
// the suite contains distributed trials the launcher must resolve too.
func (d *Driver) Preflight(needLauncher bool) error {
	if _, err := os.Stat(d.Path); err != nil {
		return &LaunchError{Path: d.Path, Err: err}
	}
	if needLauncher {
		if _, err := exec.LookPath(d.Launcher); err != nil {
			return &LaunchError{Path: d.Launcher, Err: err}
		}
	}
	return nil
}

// Execute runs one invocation to completion. Only spawn failures return an
// error; a subject that ran and exited non-zero is reported in the result.
func (d *Driver) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	res, _, err := d.run(ctx, inv, 0)
	return res, err
}

// ExecuteSampled runs one invocation while concurrently polling its memory
// footprint every interval. The finalized series is returned alongside the
// result once the subject has exited.
func (d *Driver) ExecuteSampled(ctx context.Context, inv Invocation, interval time.Duration) (*Result, *sampler.Series, error) {
	return d.run(ctx, inv, interval)
}

func (d *Driver) run(ctx context.Context, inv Invocation, interval time.Duration) (*Result, *sampler.Series, error) {
	name, args := d.commandLine(inv)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = mergeEnv(os.Environ(), inv.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, nil, &LaunchError{Path: name, Err: err}
	}

	var mon *sampler.Monitor
	if interval > 0 {
		mon = sampler.Start(cmd.Process.Pid, interval)
	}

	err := cmd.Wait()
	wall := time.Since(start)

	var series *sampler.Series
	if mon != nil {
		series = mon.Stop()
	}

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		WallTime: wall,
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, series, &LaunchError{Path: name, Err: err}
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, series, nil
}

// commandLine builds the argv for an invocation, wrapping in the distributed
// launcher when more than one rank is requested.
func (d *Driver) commandLine(inv Invocation) (string, []string) {
	if inv.Ranks > 1 {
		args := append([]string{"-np", strconv.Itoa(inv.Ranks), d.Path}, inv.Args...)
		return d.Launcher, args
	}
	return d.Path, inv.Args
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	env := make([]string, len(base), len(base)+len(overrides))
	copy(env, base)
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
