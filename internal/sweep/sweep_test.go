package sweep_test

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/signalnine/shockbench/internal/driver"
	"github.com/signalnine/shockbench/internal/sampler"
	"github.com/signalnine/shockbench/internal/sweep"
	"github.com/signalnine/shockbench/internal/trial"
)

// fakeExec fabricates subject output per invocation, keyed by the -s and -i
// argument values, without spawning anything.
type fakeExec struct {
	// energyFor returns the energy to report; second return false makes the
	// run exit non-zero with no output.
	energyFor func(size, iters, threads int) (float64, bool)
	// elapsedFor returns the reported elapsed time.
	elapsedFor func(size, iters, threads int) float64
	calls      []driver.Invocation
}

func (f *fakeExec) Execute(_ context.Context, inv driver.Invocation) (*driver.Result, error) {
	f.calls = append(f.calls, inv)
	size, iters := argInt(inv.Args, "-s"), argInt(inv.Args, "-i")
	threads := 0
	if v, ok := inv.Env["OMP_NUM_THREADS"]; ok {
		threads, _ = strconv.Atoi(v)
	}
	energy, ok := f.energyFor(size, iters, threads)
	if !ok {
		return &driver.Result{ExitCode: 1, Stderr: "boom"}, nil
	}
	elapsed := 1.0
	if f.elapsedFor != nil {
		elapsed = f.elapsedFor(size, iters, threads)
	}
	stdout := fmt.Sprintf(
		"Run completed:\n   Final Origin Energy = %14.6e\nElapsed time         = %10.2f (s)\n",
		energy, elapsed)
	return &driver.Result{Stdout: stdout, WallTime: time.Duration(elapsed * float64(time.Second))}, nil
}

func (f *fakeExec) ExecuteSampled(ctx context.Context, inv driver.Invocation, _ time.Duration) (*driver.Result, *sampler.Series, error) {
	res, err := f.Execute(ctx, inv)
	series := &sampler.Series{Samples: []sampler.Sample{
		{Timestamp: time.Now(), ResidentBytes: 1 << 20, VirtualBytes: 1 << 22},
		{Timestamp: time.Now(), ResidentBytes: 2 << 20, VirtualBytes: 3 << 22},
	}}
	return res, series, err
}

func argInt(args []string, flag string) int {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			v, _ := strconv.Atoi(args[i+1])
			return v
		}
	}
	return 0
}

func TestRelativeChanges(t *testing.T) {
	got := sweep.RelativeChanges([]float64{100.0, 105.0, 105.0001})
	if len(got) != 2 {
		t.Fatalf("length: got %d, want 2 (= 3 - 1)", len(got))
	}
	if math.Abs(got[0]-0.05) > 1e-12 {
		t.Errorf("first change: got %g, want 0.05", got[0])
	}
	if math.Abs(got[1]-9.52e-7) > 1e-9 {
		t.Errorf("last change: got %g, want ~9.52e-7", got[1])
	}
	if got[1] >= 1e-6 {
		t.Errorf("last change %g should be below the 1e-6 threshold", got[1])
	}
}

func TestRelativeChangesTooFewPoints(t *testing.T) {
	if got := sweep.RelativeChanges([]float64{100.0}); got != nil {
		t.Errorf("single point: got %v, want nil", got)
	}
	if got := sweep.RelativeChanges(nil); got != nil {
		t.Errorf("empty: got %v, want nil", got)
	}
}

func TestConvergenceSweep(t *testing.T) {
	// Energy settles geometrically toward 105.0.
	fake := &fakeExec{
		energyFor: func(_, iters, _ int) (float64, bool) {
			return 105.0 - 5.0*math.Pow(0.01, float64(iters)), true
		},
	}
	r := &sweep.Runner{Exec: fake, ThreadEnv: "OMP_NUM_THREADS"}
	res, err := r.Convergence(context.Background(), sweep.ConvergenceOpts{
		Size: 10, MaxIterations: 16, Step: 5, Threshold: 1e-6,
	})
	if err != nil {
		t.Fatalf("Convergence: %v", err)
	}
	if len(res.Points) != 4 { // i = 1, 6, 11, 16
		t.Fatalf("points: got %d, want 4", len(res.Points))
	}
	if len(res.RelativeChange) != len(res.Points)-1 {
		t.Errorf("relative change length: got %d, want %d", len(res.RelativeChange), len(res.Points)-1)
	}
	if res.Outcome != sweep.OutcomeConverged {
		t.Errorf("outcome: got %q, want converged", res.Outcome)
	}
}

func TestConvergenceInsufficientData(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(_, iters, _ int) (float64, bool) {
			// Only the first configuration succeeds.
			return 100.0, iters == 1
		},
	}
	r := &sweep.Runner{Exec: fake}
	res, err := r.Convergence(context.Background(), sweep.ConvergenceOpts{
		Size: 10, MaxIterations: 11, Step: 5, Threshold: 1e-6,
	})
	if err != nil {
		t.Fatalf("Convergence: %v", err)
	}
	if res.Outcome != sweep.OutcomeInsufficientData {
		t.Errorf("outcome: got %q, want insufficient_data", res.Outcome)
	}
	if res.Failed != 2 {
		t.Errorf("failed count: got %d, want 2", res.Failed)
	}
}

func TestSizeScalingPartialFailure(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(size, _, _ int) (float64, bool) {
			return 2.5e5, size != 40
		},
		elapsedFor: func(size, _, _ int) float64 {
			return float64(size) / 10.0
		},
	}
	r := &sweep.Runner{Exec: fake}
	res, err := r.SizeScaling(context.Background(), sweep.SizeScalingOpts{
		Sizes: []int{10, 20, 30, 40, 50}, Iterations: 10,
	})
	if err != nil {
		t.Fatalf("SizeScaling: %v", err)
	}
	if len(res.Points) != 5 {
		t.Fatalf("points: got %d, want 5", len(res.Points))
	}
	if res.Failed != 1 {
		t.Errorf("failed: got %d, want 1", res.Failed)
	}
	for _, p := range res.Points {
		if p.Value == 40 {
			if p.Elapsed != nil {
				t.Error("failed size 40 still has an elapsed time")
			}
			continue
		}
		if p.Elapsed == nil {
			t.Errorf("size %d missing despite succeeding", p.Value)
		}
		if p.Speedup != nil {
			t.Errorf("size sweep derived a speedup for size %d", p.Value)
		}
	}
}

func TestThreadScalingDerivation(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(_, _, _ int) (float64, bool) { return 2.5e5, true },
		elapsedFor: func(_, _, threads int) float64 {
			return 8.0 / float64(threads) // perfect scaling
		},
	}
	r := &sweep.Runner{Exec: fake, ThreadEnv: "OMP_NUM_THREADS"}
	res, err := r.ThreadScaling(context.Background(), sweep.ThreadScalingOpts{
		Size: 30, Iterations: 10, MaxThreads: 6,
	})
	if err != nil {
		t.Fatalf("ThreadScaling: %v", err)
	}

	var values []int
	for _, p := range res.Points {
		values = append(values, p.Value)
	}
	if !reflect.DeepEqual(values, []int{1, 2, 4, 6}) {
		t.Fatalf("thread candidates: got %v, want [1 2 4 6]", values)
	}

	base := res.Points[0]
	if base.Speedup == nil || *base.Speedup != 1.0 {
		t.Errorf("baseline speedup: got %v, want exactly 1.0", base.Speedup)
	}
	if base.Efficiency == nil || *base.Efficiency != 1.0 {
		t.Errorf("baseline efficiency: got %v, want exactly 1.0", base.Efficiency)
	}
	for _, p := range res.Points[1:] {
		if p.Speedup == nil || math.Abs(*p.Speedup-float64(p.Value)) > 1e-12 {
			t.Errorf("threads=%d speedup: got %v, want %d", p.Value, p.Speedup, p.Value)
		}
		if p.Efficiency == nil || math.Abs(*p.Efficiency-1.0) > 1e-12 {
			t.Errorf("threads=%d efficiency: got %v, want 1.0", p.Value, p.Efficiency)
		}
	}

	// The subject learns its thread count from the environment, not argv.
	for _, inv := range fake.calls {
		if _, ok := inv.Env["OMP_NUM_THREADS"]; !ok {
			t.Error("thread count not communicated via environment")
		}
	}
}

func TestThreadScalingFailedBaseline(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(_, _, threads int) (float64, bool) { return 2.5e5, threads != 1 },
		elapsedFor: func(_, _, threads int) float64 {
			return 8.0 / float64(threads)
		},
	}
	r := &sweep.Runner{Exec: fake, ThreadEnv: "OMP_NUM_THREADS"}
	res, err := r.ThreadScaling(context.Background(), sweep.ThreadScalingOpts{
		Size: 30, Iterations: 10, MaxThreads: 4,
	})
	if err != nil {
		t.Fatalf("ThreadScaling: %v", err)
	}
	for _, p := range res.Points {
		if p.Speedup != nil || p.Efficiency != nil {
			t.Errorf("threads=%d derived without a baseline", p.Value)
		}
	}
}

func TestThreadCandidates(t *testing.T) {
	tests := []struct {
		max  int
		want []int
	}{
		{1, []int{1}},
		{2, []int{1, 2}},
		{3, []int{1, 2, 3}},
		{6, []int{1, 2, 4, 6}},
		{8, []int{1, 2, 4, 8}},
		{12, []int{1, 2, 4, 8, 12}},
		{0, nil},
	}
	for _, tt := range tests {
		got := sweep.ThreadCandidates(tt.max)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ThreadCandidates(%d) = %v, want %v", tt.max, got, tt.want)
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Errorf("ThreadCandidates(%d) not strictly increasing: %v", tt.max, got)
			}
		}
	}
}

func TestSizeCandidates(t *testing.T) {
	if got := sweep.SizeCandidates(10, 50, 10); !reflect.DeepEqual(got, []int{10, 20, 30, 40, 50}) {
		t.Errorf("SizeCandidates(10,50,10) = %v", got)
	}
	if got := sweep.SizeCandidates(10, 5, 10); got != nil {
		t.Errorf("inverted range: got %v, want nil", got)
	}
}

func TestSuite(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(size, _, _ int) (float64, bool) {
			if size == 20 {
				return 2.505353e+05, true
			}
			return 2.596764e+05, true
		},
	}
	r := &sweep.Runner{Exec: fake}
	specs := trial.Default(1e-5).Select(false, false)
	res, err := r.Suite(context.Background(), specs)
	if err != nil {
		t.Fatalf("Suite: %v", err)
	}
	if res.Failed != 0 || res.Passed != len(specs) {
		t.Fatalf("passed=%d failed=%d, want all %d passing", res.Passed, res.Failed, len(specs))
	}
}

func TestSuitePartialFailure(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(size, _, _ int) (float64, bool) {
			if size == 20 {
				return 9.9e5, true // wrong energy for medium_problem
			}
			return 2.596764e+05, true
		},
	}
	r := &sweep.Runner{Exec: fake}
	specs := trial.Default(1e-5).Select(false, false)
	res, err := r.Suite(context.Background(), specs)
	if err != nil {
		t.Fatalf("Suite: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("failed: got %d, want 1", res.Failed)
	}
	for _, tr := range res.Trials {
		if tr.Spec.Name == "medium_problem" && tr.Verdict.Failure != trial.ToleranceExceeded {
			t.Errorf("medium_problem failure: got %q, want tolerance_exceeded", tr.Verdict.Failure)
		}
	}
}

func TestMemorySweep(t *testing.T) {
	fake := &fakeExec{
		energyFor: func(size, _, _ int) (float64, bool) { return 2.5e5, size != 30 },
	}
	r := &sweep.Runner{Exec: fake}
	res, err := r.Memory(context.Background(), sweep.MemoryOpts{
		Sizes: []int{10, 20, 30}, Iterations: 10,
	})
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if len(res.Points) != 2 || res.Failed != 1 {
		t.Fatalf("points=%d failed=%d, want 2 points and 1 failure", len(res.Points), res.Failed)
	}
	for _, p := range res.Points {
		if p.PeakRSS != 2<<20 || p.PeakVMS != 3<<22 {
			t.Errorf("size %d peaks: rss=%d vms=%d", p.Size, p.PeakRSS, p.PeakVMS)
		}
	}
}
