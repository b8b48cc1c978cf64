// Package report renders a run directory into human- or machine-readable
// summaries. It only reads what a run wrote to disk, so reports can be
// regenerated at any time after the fact.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/shockbench/internal/result"
	"github.com/signalnine/shockbench/internal/sweep"
)

// Summary is everything a report knows about one run directory.
type Summary struct {
	Suite       *result.SuiteRecord        `json:"suite,omitempty"`
	Convergence []*sweep.ConvergenceResult `json:"convergence,omitempty"`
	Scaling     []*sweep.ScalingResult     `json:"scaling,omitempty"`
	Memory      []*sweep.MemoryResult      `json:"memory,omitempty"`
}

// Generate reads a run directory and writes a summary in the given format.
func Generate(runDir, format string, w io.Writer) error {
	sum, err := Collect(runDir)
	if err != nil {
		return err
	}

	switch format {
	case "markdown":
		return writeMarkdown(sum, w)
	case "json":
		return writeJSON(sum, w)
	default:
		return writeTable(sum, w)
	}
}

// Collect gathers every record the run persisted under runDir.
func Collect(runDir string) (*Summary, error) {
	var sum Summary
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		name := info.Name()
		switch {
		case name == "suite.json":
			rec, err := result.ReadSuiteRecord(path)
			if err != nil {
				return nil
			}
			sum.Suite = rec
		case strings.HasPrefix(name, "convergence"):
			var res sweep.ConvergenceResult
			if readInto(path, &res) {
				sum.Convergence = append(sum.Convergence, &res)
			}
		case strings.HasSuffix(name, "scaling.json"):
			var res sweep.ScalingResult
			if readInto(path, &res) {
				sum.Scaling = append(sum.Scaling, &res)
			}
		case strings.HasPrefix(name, "memory"):
			var res sweep.MemoryResult
			if readInto(path, &res) {
				sum.Memory = append(sum.Memory, &res)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sum.Scaling, func(i, j int) bool {
		return sum.Scaling[i].Dimension < sum.Scaling[j].Dimension
	})
	return &sum, nil
}

func readInto(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func writeTable(sum *Summary, w io.Writer) error {
	if sum.Suite != nil {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TRIAL\tRESULT\tTIME\tENERGY\tDETAIL")
		fmt.Fprintln(tw, strings.Repeat("-", 72))
		for _, t := range sum.Suite.Trials {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				t.Name, passFail(t.Passed), secs(t.WallTimeS), energy(t.Energy), t.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d passed, %d failed\n", sum.Suite.Passed, sum.Suite.Failed)
	}
	for _, c := range sum.Convergence {
		fmt.Fprintf(w, "\nConvergence (size %d): %s after %d points", c.Size, c.Outcome, len(c.Points))
		if n := len(c.RelativeChange); n > 0 {
			fmt.Fprintf(w, ", final relative change %.2e", c.RelativeChange[n-1])
		}
		fmt.Fprintln(w)
	}
	for _, s := range sum.Scaling {
		fmt.Fprintf(w, "\n%s scaling: %d points, %d failed\n", s.Dimension, len(s.Points), s.Failed)
		if s.Dimension == "threads" {
			for _, p := range s.Points {
				if p.Speedup == nil {
					continue
				}
				fmt.Fprintf(w, "  %d threads: speedup %.2fx, efficiency %.0f%%\n",
					p.Value, *p.Speedup, *p.Efficiency*100)
			}
		}
	}
	for _, m := range sum.Memory {
		fmt.Fprintf(w, "\nMemory footprint (%d iterations):\n", m.Iterations)
		for _, p := range m.Points {
			fmt.Fprintf(w, "  size %d: peak RSS %.1f MB, VMS %.1f MB\n",
				p.Size, mb(p.PeakRSS), mb(p.PeakVMS))
		}
	}
	return nil
}

func writeMarkdown(sum *Summary, w io.Writer) error {
	if sum.Suite != nil {
		fmt.Fprintln(w, "## Trial Suite")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Trial | Result | Time | Energy | Detail |")
		fmt.Fprintln(w, "|---|---|---|---|---|")
		for _, t := range sum.Suite.Trials {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				t.Name, passFail(t.Passed), secs(t.WallTimeS), energy(t.Energy), t.Message)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "**%d passed, %d failed**\n", sum.Suite.Passed, sum.Suite.Failed)
	}
	for _, c := range sum.Convergence {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "## Convergence (size %d)\n", c.Size)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Iterations | Energy | Relative Change |")
		fmt.Fprintln(w, "|---|---|---|")
		for i, p := range c.Points {
			change := ""
			if i > 0 && i-1 < len(c.RelativeChange) {
				change = fmt.Sprintf("%.2e", c.RelativeChange[i-1])
			}
			fmt.Fprintf(w, "| %d | %.6e | %s |\n", p.Iterations, p.Energy, change)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Outcome: **%s**\n", c.Outcome)
	}
	for _, s := range sum.Scaling {
		fmt.Fprintln(w)
		if s.Dimension == "threads" {
			fmt.Fprintf(w, "## Thread Scaling (size %d)\n", s.Size)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "| Threads | Time | Speedup | Efficiency |")
			fmt.Fprintln(w, "|---|---|---|---|")
			for _, p := range s.Points {
				fmt.Fprintf(w, "| %d | %s | %s | %s |\n",
					p.Value, secsPtr(p.Elapsed), ratio(p.Speedup, "x"), percent(p.Efficiency))
			}
		} else {
			fmt.Fprintln(w, "## Size Scaling")
			fmt.Fprintln(w)
			fmt.Fprintln(w, "| Size | Time | Energy |")
			fmt.Fprintln(w, "|---|---|---|")
			for _, p := range s.Points {
				fmt.Fprintf(w, "| %d | %s | %s |\n", p.Value, secsPtr(p.Elapsed), energy(p.Energy))
			}
		}
	}
	for _, m := range sum.Memory {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Memory Footprint")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Size | Peak RSS (MB) | Peak VMS (MB) |")
		fmt.Fprintln(w, "|---|---|---|")
		for _, p := range m.Points {
			fmt.Fprintf(w, "| %d | %.1f | %.1f |\n", p.Size, mb(p.PeakRSS), mb(p.PeakVMS))
		}
	}
	return nil
}

func writeJSON(sum *Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func secs(s float64) string {
	if s == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fs", s)
}

func secsPtr(s *float64) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fs", *s)
}

func energy(e *float64) string {
	if e == nil {
		return "-"
	}
	return fmt.Sprintf("%.6e", *e)
}

func ratio(v *float64, suffix string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func mb(b uint64) float64 {
	return float64(b) / (1024 * 1024)
}
