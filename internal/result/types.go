package result

import (
	"github.com/signalnine/shockbench/internal/sweep"
)

// TrialRecord is the persisted form of one trial outcome. Raw output is kept
// only for failures, where it is the primary diagnostic.
type TrialRecord struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Ranks        int     `json:"ranks,omitempty"`
	Passed       bool    `json:"passed"`
	Failure      string  `json:"failure,omitempty"`
	RelativeDiff float64 `json:"relative_diff"`
	Message      string  `json:"message"`
	ExitCode     int     `json:"exit_code"`
	WallTimeS    float64 `json:"wall_time_s"`

	Energy      *float64 `json:"energy,omitempty"`
	ElapsedTime *float64 `json:"elapsed_time,omitempty"`
	FOM         *float64 `json:"fom,omitempty"`

	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// SuiteRecord is the persisted form of one suite run.
type SuiteRecord struct {
	Trials []TrialRecord `json:"trials"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
}

// NewSuiteRecord flattens a suite result for persistence.
func NewSuiteRecord(res *sweep.SuiteResult) *SuiteRecord {
	rec := &SuiteRecord{Passed: res.Passed, Failed: res.Failed}
	for _, t := range res.Trials {
		tr := TrialRecord{
			Name:         t.Spec.Name,
			Category:     string(t.Spec.Category),
			Ranks:        t.Spec.Ranks,
			Passed:       t.Verdict.Passed,
			Failure:      string(t.Verdict.Failure),
			RelativeDiff: t.Verdict.RelativeDiff,
			Message:      t.Verdict.Message,
			ExitCode:     t.Result.ExitCode,
			WallTimeS:    t.Result.WallTime.Seconds(),
			Energy:       t.Result.Metrics.Energy,
			ElapsedTime:  t.Result.Metrics.ElapsedTime,
			FOM:          t.Result.Metrics.FOM,
		}
		if !t.Verdict.Passed {
			tr.Stdout = t.Result.Stdout
			tr.Stderr = t.Result.Stderr
		}
		rec.Trials = append(rec.Trials, tr)
	}
	return rec
}
