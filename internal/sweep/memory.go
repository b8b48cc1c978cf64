package sweep

import (
	"context"
	"fmt"
	"strconv"

	"github.com/signalnine/shockbench/internal/driver"
	"github.com/signalnine/shockbench/internal/sampler"
)

type MemoryOpts struct {
	Sizes      []int
	Iterations int
}

// MemoryPoint is one problem size's footprint. Series is the full sample
// time series for the run; Peak values are zero when no sample landed before
// the subject exited.
type MemoryPoint struct {
	Size      int             `json:"size"`
	Elapsed   *float64        `json:"elapsed,omitempty"`
	Energy    *float64        `json:"energy,omitempty"`
	PeakRSS   uint64          `json:"peak_rss_bytes"`
	PeakVMS   uint64          `json:"peak_vms_bytes"`
	Series    *sampler.Series `json:"-"`
	WallTimeS float64         `json:"wall_time_s"`
}

type MemoryResult struct {
	Iterations int           `json:"iterations"`
	Points     []MemoryPoint `json:"points"`
	Failed     int           `json:"failed"`
}

// Memory runs one sampled trial per problem size, recording the peak resident
// and virtual footprint of each. Failed sizes become missing points.
func (r *Runner) Memory(ctx context.Context, opts MemoryOpts) (*MemoryResult, error) {
	out := &MemoryResult{Iterations: opts.Iterations}
	for _, size := range opts.Sizes {
		fmt.Printf("Running memory test with problem size %d^3 and %d iterations\n", size, opts.Iterations)
		inv := driver.Invocation{
			Args: []string{"-s", strconv.Itoa(size), "-i", strconv.Itoa(opts.Iterations)},
		}
		res, series, err := r.Exec.ExecuteSampled(ctx, inv, r.interval())
		if err != nil {
			return nil, err
		}
		tr := toTrialResult(fmt.Sprintf("memory_s%d", size), res)
		if !tr.Success {
			warnSkipped("size", size, tr)
			out.Failed++
			continue
		}
		point := MemoryPoint{
			Size:      size,
			Elapsed:   tr.Metrics.ElapsedTime,
			Energy:    tr.Metrics.Energy,
			Series:    series,
			WallTimeS: tr.WallTime.Seconds(),
		}
		if series != nil {
			point.PeakRSS, point.PeakVMS = series.Peak()
		}
		fmt.Printf("  Peak RSS memory usage: %.2f MB\n", float64(point.PeakRSS)/(1024*1024))
		fmt.Printf("  Peak VMS memory usage: %.2f MB\n", float64(point.PeakVMS)/(1024*1024))
		out.Points = append(out.Points, point)
	}
	return out, nil
}
