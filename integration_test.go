//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/shockbench/internal/driver"
	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/sweep"
	"github.com/signalnine/shockbench/internal/trial"
)

// createFixtureSubject writes a shell script that mimics the subject's output
// format: fixed final energy, flag parsing for -s and -i.
func createFixtureSubject(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
size=10
iters=0
while [ $# -gt 0 ]; do
  case "$1" in
    -s) size=$2; shift 2 ;;
    -i) iters=$2; shift 2 ;;
    *) shift ;;
  esac
done
echo "Run completed:"
echo "   Problem size        =  $size"
echo "   Iteration count     =  $iters"
echo "   Final Origin Energy =  2.596764e+05"
echo ""
echo "Elapsed time         =       0.05 (s)"
echo "FOM                  =    1084.2353 (z/s)"
`
	path := filepath.Join(t.TempDir(), "lulesh2.0")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fixture subject: %v", err)
	}
	return path
}

func newFixtureRunner(t *testing.T) *sweep.Runner {
	t.Helper()
	d := driver.New(createFixtureSubject(t), "mpirun")
	if err := d.Preflight(false); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	return &sweep.Runner{Exec: d, ThreadEnv: "OMP_NUM_THREADS", SampleInterval: 20 * time.Millisecond}
}

func TestSuiteAgainstFixtureSubject(t *testing.T) {
	r := newFixtureRunner(t)

	reg := trial.Default(1e-5)
	spec, ok := reg.Lookup("small_problem")
	if !ok {
		t.Fatal("small_problem missing from catalogue")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	suite, err := r.Suite(ctx, []trial.Spec{spec})
	if err != nil {
		t.Fatalf("Suite: %v", err)
	}
	if suite.Passed != 1 || suite.Failed != 0 {
		t.Fatalf("suite: %d passed, %d failed", suite.Passed, suite.Failed)
	}

	runDir, err := result.CreateRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	rec := result.NewSuiteRecord(suite)
	if err := result.WriteJSON(filepath.Join(runDir, "suite.json"), rec); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := result.ReadSuiteRecord(filepath.Join(runDir, "suite.json"))
	if err != nil {
		t.Fatalf("ReadSuiteRecord: %v", err)
	}
	if got.Trials[0].Energy == nil || *got.Trials[0].Energy != 2.596764e+05 {
		t.Errorf("persisted energy: %v", got.Trials[0].Energy)
	}
}

func TestConvergenceAgainstFixtureSubject(t *testing.T) {
	r := newFixtureRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The fixture's energy never moves, so the sweep converges immediately.
	res, err := r.Convergence(ctx, sweep.ConvergenceOpts{
		Size: 10, MaxIterations: 5, Step: 2, Threshold: 1e-6,
	})
	if err != nil {
		t.Fatalf("Convergence: %v", err)
	}
	if res.Outcome != sweep.OutcomeConverged {
		t.Errorf("outcome: got %q, want converged", res.Outcome)
	}
	if len(res.Points) != 3 {
		t.Errorf("points: got %d, want 3", len(res.Points))
	}
}

func TestMemorySweepAgainstFixtureSubject(t *testing.T) {
	// A subject that lives long enough to be sampled.
	script := "#!/bin/sh\nsleep 0.3\necho '   Final Origin Energy =  2.596764e+05'\necho 'Elapsed time         =       0.30 (s)'\n"
	path := filepath.Join(t.TempDir(), "lulesh2.0")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fixture subject: %v", err)
	}
	r := &sweep.Runner{
		Exec:           driver.New(path, "mpirun"),
		ThreadEnv:      "OMP_NUM_THREADS",
		SampleInterval: 20 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := r.Memory(ctx, sweep.MemoryOpts{Sizes: []int{10}, Iterations: 5})
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if len(res.Points) != 1 {
		t.Fatalf("points: got %d", len(res.Points))
	}
	if res.Points[0].PeakRSS == 0 {
		t.Error("no memory samples landed")
	}
}
