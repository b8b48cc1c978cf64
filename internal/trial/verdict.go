package trial

import (
	"fmt"
	"math"
)

// FailureKind classifies why a verdict failed. Metric-missing and
// tolerance-exceeded are deliberately distinct: callers must be able to tell
// "the field never appeared" apart from "the value was wrong".
type FailureKind string

const (
	FailureNone       FailureKind = ""
	NonZeroExit       FailureKind = "nonzero_exit"
	MetricMissing     FailureKind = "metric_missing"
	ToleranceExceeded FailureKind = "tolerance_exceeded"
)

// Verdict is the outcome of comparing a completed trial to its spec.
type Verdict struct {
	Passed       bool
	Failure      FailureKind
	RelativeDiff float64
	Message      string
}

// Evaluate compares a trial result against its spec. A spec without a
// reference passes on any successful completion; with one, the extracted
// energy must fall within the relative tolerance.
func Evaluate(res *Result, spec Spec) Verdict {
	if !res.Success {
		return Verdict{
			Failure: NonZeroExit,
			Message: fmt.Sprintf("subject exited with code %d", res.ExitCode),
		}
	}
	if spec.Reference == nil {
		return Verdict{Passed: true, Message: "completed"}
	}
	if res.Metrics.Energy == nil {
		return Verdict{
			Failure: MetricMissing,
			Message: "final origin energy absent from output",
		}
	}
	energy := *res.Metrics.Energy
	relDiff := math.Abs(energy-spec.Reference.Energy) / math.Abs(spec.Reference.Energy)
	if relDiff <= spec.Reference.Tolerance {
		return Verdict{
			Passed:       true,
			RelativeDiff: relDiff,
			Message: fmt.Sprintf("final energy %g matches expected %g (relative diff: %.3g)",
				energy, spec.Reference.Energy, relDiff),
		}
	}
	return Verdict{
		Failure:      ToleranceExceeded,
		RelativeDiff: relDiff,
		Message: fmt.Sprintf("final energy %g does not match expected %g (relative diff: %.3g, tolerance: %.3g)",
			energy, spec.Reference.Energy, relDiff, spec.Reference.Tolerance),
	}
}
