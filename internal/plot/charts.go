package plot

import (
	"fmt"
	"path/filepath"

	"github.com/signalnine/shockbench/internal/sweep"
)

// Convergence builds the energy-vs-iterations chart and the log-scale
// relative-change chart for a convergence sweep.
func Convergence(res *sweep.ConvergenceResult) []Artifact {
	var energy Line
	energy.Name = "Final Origin Energy"
	for _, p := range res.Points {
		energy.Points = append(energy.Points, XY{X: float64(p.Iterations), Y: p.Energy})
	}

	var change Line
	change.Name = "Relative Change"
	for i, rc := range res.RelativeChange {
		change.Points = append(change.Points, XY{X: float64(res.Points[i+1].Iterations), Y: rc})
	}

	arts := []Artifact{{
		Name: fmt.Sprintf("convergence_energy_s%d.png", res.Size),
		Chart: Chart{
			Title:  fmt.Sprintf("Convergence Test (Problem Size: %d^3)", res.Size),
			XLabel: "Iterations",
			YLabel: "Final Origin Energy",
			Lines:  []Line{energy},
		},
	}}
	if len(change.Points) > 0 {
		arts = append(arts, Artifact{
			Name: fmt.Sprintf("convergence_rate_s%d.png", res.Size),
			Chart: Chart{
				Title:  "Convergence Rate",
				XLabel: "Iterations",
				YLabel: "Relative Change",
				LogY:   true,
				Lines:  []Line{change},
			},
		})
	}
	return arts
}

// Scaling builds charts for a scaling sweep: measured time for the size
// dimension; speedup against the ideal diagonal, plus efficiency, for the
// thread dimension. Failed points are simply absent from the lines.
func Scaling(res *sweep.ScalingResult) []Artifact {
	if res.Dimension == "threads" {
		return threadCharts(res)
	}
	var measured Line
	measured.Name = "Measured Time"
	for _, p := range res.Points {
		if p.Elapsed == nil {
			continue
		}
		measured.Points = append(measured.Points, XY{X: float64(p.Value), Y: *p.Elapsed})
	}
	return []Artifact{{
		Name: "size_scaling.png",
		Chart: Chart{
			Title:  "Problem Size Scaling",
			XLabel: "Problem Size (N for N^3)",
			YLabel: "Execution Time (seconds)",
			Lines:  []Line{measured},
		},
	}}
}

func threadCharts(res *sweep.ScalingResult) []Artifact {
	var speedup, ideal, efficiency Line
	speedup.Name = "Measured Speedup"
	ideal.Name = "Ideal Speedup"
	ideal.Dashed = true
	efficiency.Name = "Parallel Efficiency"
	for _, p := range res.Points {
		x := float64(p.Value)
		ideal.Points = append(ideal.Points, XY{X: x, Y: x})
		if p.Speedup != nil {
			speedup.Points = append(speedup.Points, XY{X: x, Y: *p.Speedup})
		}
		if p.Efficiency != nil {
			efficiency.Points = append(efficiency.Points, XY{X: x, Y: *p.Efficiency})
		}
	}
	return []Artifact{
		{
			Name: fmt.Sprintf("thread_speedup_s%d.png", res.Size),
			Chart: Chart{
				Title:  "Strong Scaling: Speedup",
				XLabel: "Number of Threads",
				YLabel: "Speedup",
				Lines:  []Line{speedup, ideal},
			},
		},
		{
			Name: fmt.Sprintf("thread_efficiency_s%d.png", res.Size),
			Chart: Chart{
				Title:  "Strong Scaling: Efficiency",
				XLabel: "Number of Threads",
				YLabel: "Efficiency",
				Lines:  []Line{efficiency},
			},
		},
	}
}

// Memory builds the footprint-vs-size chart for a memory sweep.
func Memory(res *sweep.MemoryResult) []Artifact {
	var rss, vms Line
	rss.Name = "RSS (Resident Set Size)"
	vms.Name = "VMS (Virtual Memory Size)"
	for _, p := range res.Points {
		x := float64(p.Size)
		rss.Points = append(rss.Points, XY{X: x, Y: float64(p.PeakRSS) / (1024 * 1024)})
		vms.Points = append(vms.Points, XY{X: x, Y: float64(p.PeakVMS) / (1024 * 1024)})
	}
	return []Artifact{{
		Name: "memory_scaling.png",
		Chart: Chart{
			Title:  "Memory Scaling",
			XLabel: "Problem Size (N for N^3)",
			YLabel: "Memory Usage (MB)",
			Lines:  []Line{rss, vms},
		},
	}}
}

// RenderAll renders every artifact into dir.
func RenderAll(r Renderer, dir string, arts []Artifact) error {
	for _, a := range arts {
		if err := r.Render(a.Chart, filepath.Join(dir, a.Name)); err != nil {
			return fmt.Errorf("rendering %s: %w", a.Name, err)
		}
	}
	return nil
}
