package extract

import (
	"regexp"
	"strconv"
)

// Field patterns for the subject's end-of-run summary block, e.g.
//
//	Run completed:
//	   Problem size        =  10
//	   Iteration count     =  10
//	   Final Origin Energy =  2.596764e+05
//	...
//	Elapsed time         =       0.92 (s)
//	...
//	FOM                  =  1034.9956 (z/s)
var (
	energyRe  = regexp.MustCompile(`Final Origin Energy\s*=\s*(\d+\.\d+e[+-]\d+)`)
	elapsedRe = regexp.MustCompile(`Elapsed time\s*=\s*(\d+\.\d+)`)
	fomRe     = regexp.MustCompile(`FOM\s*=\s*(\d+\.\d+)`)
)

// Metrics holds the numeric fields scraped from one subject run. A nil field
// means its label was absent from the output; quiet mode, for instance,
// suppresses the FOM line.
type Metrics struct {
	Energy      *float64 `json:"energy,omitempty"`
	ElapsedTime *float64 `json:"elapsed_time,omitempty"`
	FOM         *float64 `json:"fom,omitempty"`
}

// Parse scrapes the labeled fields from captured output. Absent labels yield
// nil fields, never errors.
func Parse(text string) Metrics {
	return Metrics{
		Energy:      match(energyRe, text),
		ElapsedTime: match(elapsedRe, text),
		FOM:         match(fomRe, text),
	}
}

func match(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
