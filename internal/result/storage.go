package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/signalnine/shockbench/internal/sampler"
	"github.com/signalnine/shockbench/internal/sweep"
)

// CreateRunDir makes a fresh timestamped directory under <baseDir>/runs and
// repoints the <baseDir>/latest symlink at it.
func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// WriteJSON persists a record as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSuiteRecord loads a persisted suite record.
func ReadSuiteRecord(path string) (*SuiteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite record: %w", err)
	}
	var rec SuiteRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing suite record: %w", err)
	}
	return &rec, nil
}

// WriteSamplesCSV writes one process's memory time series as
// timestamp,rss_mb,vms_mb rows.
func WriteSamplesCSV(path string, series *sampler.Series) error {
	return writeCSV(path, []string{"timestamp", "rss_mb", "vms_mb"}, func(w *csv.Writer) error {
		for _, s := range series.Samples {
			row := []string{
				strconv.FormatFloat(float64(s.Timestamp.UnixNano())/1e9, 'f', 3, 64),
				mb(s.ResidentBytes),
				mb(s.VirtualBytes),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteScalingCSV writes one row per scaling point. Thread sweeps carry the
// derived speedup and efficiency columns; size sweeps leave them out.
func WriteScalingCSV(path string, res *sweep.ScalingResult) error {
	header := []string{"problem_size", "iterations", "threads", "elapsed_time", "final_energy", "fom"}
	if res.Dimension == "threads" {
		header = append(header, "speedup", "efficiency")
	}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for _, p := range res.Points {
			size, threads := p.Value, res.Threads
			if res.Dimension == "threads" {
				size, threads = res.Size, p.Value
			}
			row := []string{
				strconv.Itoa(size),
				strconv.Itoa(res.Iterations),
				strconv.Itoa(threads),
				optFloat(p.Elapsed),
				optFloat(p.Energy),
				optFloat(p.FOM),
			}
			if res.Dimension == "threads" {
				row = append(row, optFloat(p.Speedup), optFloat(p.Efficiency))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteConvergenceCSV writes the collected energies with the derived
// relative-change column (empty for the first point).
func WriteConvergenceCSV(path string, res *sweep.ConvergenceResult) error {
	return writeCSV(path, []string{"iterations", "energy", "relative_change"}, func(w *csv.Writer) error {
		for i, p := range res.Points {
			change := ""
			if i > 0 {
				change = strconv.FormatFloat(res.RelativeChange[i-1], 'g', -1, 64)
			}
			row := []string{
				strconv.Itoa(p.Iterations),
				strconv.FormatFloat(p.Energy, 'g', -1, 64),
				change,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMemoryCSV writes the per-size footprint summary.
func WriteMemoryCSV(path string, res *sweep.MemoryResult) error {
	header := []string{"problem_size", "iterations", "final_energy", "elapsed_time", "peak_rss_mb", "peak_vms_mb"}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for _, p := range res.Points {
			row := []string{
				strconv.Itoa(p.Size),
				strconv.Itoa(res.Iterations),
				optFloat(p.Energy),
				optFloat(p.Elapsed),
				mb(p.PeakRSS),
				mb(p.PeakVMS),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, rows func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func mb(bytes uint64) string {
	return strconv.FormatFloat(float64(bytes)/(1024*1024), 'f', 2, 64)
}
