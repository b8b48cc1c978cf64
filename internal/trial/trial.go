package trial

import (
	"time"

	"github.com/signalnine/shockbench/internal/extract"
)

type Category string

const (
	Correctness Category = "correctness"
	Performance Category = "performance"
)

// Reference pairs an expected final energy with its relative tolerance.
// The two travel together: a spec either carries both or neither.
type Reference struct {
	Energy    float64 `json:"energy"`
	Tolerance float64 `json:"tolerance"`
}

// Spec describes one named invocation of the subject executable. Specs are
// defined once at registry construction and never mutated.
type Spec struct {
	Name        string
	Description string
	Args        []string
	Ranks       int // >1 runs under the distributed launcher
	Reference   *Reference
	Category    Category
}

// Distributed reports whether the spec needs the launch wrapper.
func (s Spec) Distributed() bool { return s.Ranks > 1 }

// Result captures one execution of a spec. Created once per run, immutable
// thereafter; raw output is kept for diagnostics.
type Result struct {
	Name     string
	Success  bool // subject ran and exited zero
	ExitCode int
	WallTime time.Duration
	Metrics  extract.Metrics
	Stdout   string
	Stderr   string
}

// Registry is an immutable catalogue of named trial specs, constructed by the
// caller and threaded through every call; there is no hidden global list.
type Registry struct {
	specs []Spec
}

func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make([]Spec, len(specs))}
	copy(r.specs, specs)
	return r
}

// All returns the specs in registration order.
func (r *Registry) All() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

func (r *Registry) Lookup(name string) (Spec, bool) {
	for _, s := range r.specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Select filters the catalogue. Performance trials are opt-in, as are
// distributed ones; both default to the local correctness set.
func (r *Registry) Select(includePerformance, includeDistributed bool) []Spec {
	var out []Spec
	for _, s := range r.specs {
		if s.Category == Performance && !includePerformance {
			continue
		}
		if s.Distributed() && !includeDistributed {
			continue
		}
		out = append(out, s)
	}
	return out
}
