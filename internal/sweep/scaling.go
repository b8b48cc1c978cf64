package sweep

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/signalnine/shockbench/internal/driver"
)

// Point is one configuration in a scaling sweep. Value is the independent
// variable (problem size or thread count). Nil dependent fields mean the run
// for that configuration failed or the metric was absent; Speedup and
// Efficiency exist only where a unit baseline exists.
type Point struct {
	Value      int      `json:"value"`
	Elapsed    *float64 `json:"elapsed,omitempty"`
	Energy     *float64 `json:"energy,omitempty"`
	FOM        *float64 `json:"fom,omitempty"`
	Speedup    *float64 `json:"speedup,omitempty"`
	Efficiency *float64 `json:"efficiency,omitempty"`
}

// ScalingResult is the accumulator for one scaling sweep; recomputed per
// analysis pass, never mutated afterwards.
type ScalingResult struct {
	Dimension  string  `json:"dimension"` // "size" or "threads"
	Size       int     `json:"size,omitempty"`
	Iterations int     `json:"iterations"`
	Threads    int     `json:"threads,omitempty"`
	Points     []Point `json:"points"`
	Failed     int     `json:"failed"`
}

type SizeScalingOpts struct {
	Sizes      []int
	Iterations int
	Threads    int // 0 leaves the subject's thread count alone
}

// SizeScaling times one run per problem size. Size sweeps carry no unit
// baseline, so no speedup or efficiency is derived.
func (r *Runner) SizeScaling(ctx context.Context, opts SizeScalingOpts) (*ScalingResult, error) {
	out := &ScalingResult{Dimension: "size", Iterations: opts.Iterations, Threads: opts.Threads}
	var env map[string]string
	if opts.Threads > 0 {
		env = map[string]string{r.ThreadEnv: strconv.Itoa(opts.Threads)}
	}
	for _, size := range opts.Sizes {
		fmt.Printf("Running with problem size %d^3...", size)
		p, err := r.scalingPoint(ctx, size, size, opts.Iterations, env)
		if err != nil {
			return nil, err
		}
		out.Points = append(out.Points, p)
		if p.Elapsed == nil {
			out.Failed++
		}
	}
	return out, nil
}

type ThreadScalingOpts struct {
	Size       int
	Iterations int
	MaxThreads int // 0 uses the detected core count
}

// ThreadScaling times one run per thread count, doubling from 1 up to the
// maximum parallelism, and derives speedup and efficiency against the
// single-thread baseline.
func (r *Runner) ThreadScaling(ctx context.Context, opts ThreadScalingOpts) (*ScalingResult, error) {
	max := opts.MaxThreads
	if max <= 0 {
		max = runtime.NumCPU()
	}
	out := &ScalingResult{Dimension: "threads", Size: opts.Size, Iterations: opts.Iterations}
	for _, threads := range ThreadCandidates(max) {
		fmt.Printf("Running with %d threads...", threads)
		env := map[string]string{r.ThreadEnv: strconv.Itoa(threads)}
		p, err := r.scalingPoint(ctx, threads, opts.Size, opts.Iterations, env)
		if err != nil {
			return nil, err
		}
		out.Points = append(out.Points, p)
		if p.Elapsed == nil {
			out.Failed++
		}
	}
	deriveSpeedup(out.Points)
	return out, nil
}

// scalingPoint runs one configuration. A launch failure returns an error; any
// trial-scoped failure returns a point with no dependent metrics.
func (r *Runner) scalingPoint(ctx context.Context, value, size, iterations int, env map[string]string) (Point, error) {
	inv := driver.Invocation{
		Args: []string{"-s", strconv.Itoa(size), "-i", strconv.Itoa(iterations), "-q"},
		Env:  env,
	}
	res, err := r.runOnce(ctx, fmt.Sprintf("scaling_%d", value), inv)
	if err != nil {
		return Point{}, err
	}
	point := Point{Value: value}
	if !res.Success || res.Metrics.ElapsedTime == nil {
		fmt.Println(" failed")
		warnSkipped("value", value, res)
		return point, nil
	}
	fmt.Printf(" completed in %.2f seconds\n", *res.Metrics.ElapsedTime)
	point.Elapsed = res.Metrics.ElapsedTime
	point.Energy = res.Metrics.Energy
	point.FOM = res.Metrics.FOM
	return point, nil
}

// SizeCandidates expands a min/max/step range into the ordered candidate set.
func SizeCandidates(min, max, step int) []int {
	if min < 1 || step < 1 || max < min {
		return nil
	}
	var out []int
	for s := min; s <= max; s += step {
		out = append(out, s)
	}
	return out
}

// ThreadCandidates doubles from 1 up to max, then appends max itself if the
// progression skipped it. The result is strictly increasing with no
// duplicates; max 6 yields [1 2 4 6].
func ThreadCandidates(max int) []int {
	if max < 1 {
		return nil
	}
	var out []int
	for c := 1; c <= max; c *= 2 {
		out = append(out, c)
	}
	if out[len(out)-1] != max {
		out = append(out, max)
	}
	return out
}

// deriveSpeedup fills in speedup and efficiency relative to the point at
// value 1. With x/x exact in IEEE arithmetic, the baseline's own speedup and
// efficiency are exactly 1.0. A failed baseline leaves every point underived.
func deriveSpeedup(points []Point) {
	var base *float64
	for i := range points {
		if points[i].Value == 1 {
			base = points[i].Elapsed
			break
		}
	}
	if base == nil {
		return
	}
	for i := range points {
		p := &points[i]
		if p.Elapsed == nil {
			continue
		}
		s := *base / *p.Elapsed
		e := s / float64(p.Value)
		p.Speedup = &s
		p.Efficiency = &e
	}
}
