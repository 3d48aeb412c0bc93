// Package extract reads the eight clinical fields out of report text.
package extract

import (
	"regexp"
	"strconv"

	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// Extractor matches "<Label>: <number>" for each field label. Only the first
// match per label counts; labels are matched exactly and case-sensitively.
type Extractor struct {
	patterns [types.NumFeatures]*regexp.Regexp
}

// New compiles one pattern per report label.
func New() *Extractor {
	e := &Extractor{}
	for _, f := range types.Fields {
		e.patterns[f] = regexp.MustCompile(regexp.QuoteMeta(f.ReportLabel()) + `:\s*(\d+\.?\d*)`)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default extractor over text.
func Extract(text string) types.PartialVector {
	return defaultExtractor.Extract(text)
}

// Extract returns a vector in which unmatched fields are Absent, never zero.
func (e *Extractor) Extract(text string) types.PartialVector {
	var pv types.PartialVector
	for _, f := range types.Fields {
		m := e.patterns[f].FindStringSubmatch(text)
		if m == nil {
			pv[f] = types.Absent()
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			pv[f] = types.Absent()
			continue
		}
		pv[f] = types.Present(v)
	}
	return pv
}
