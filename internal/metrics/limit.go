package metrics

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// LimitCompliance is the fraction of samples whose displacement stays
// within a limit given in mm. 1 means the limit was never exceeded.
type LimitCompliance struct {
	name       string
	limitMM    float64
	violations int
	samples    int
}

func NewLimitCompliance(limitMM float64) *LimitCompliance {
	return &LimitCompliance{name: "limit_compliance", limitMM: limitMM}
}

func (l *LimitCompliance) Name() string { return l.name }

func (l *LimitCompliance) Observe(s dynamo.State, force, t float64) {
	l.samples++
	if math.Abs(s.X)*dynamo.MillimetersPerMeter > l.limitMM {
		l.violations++
	}
}

func (l *LimitCompliance) Value() float64 {
	if l.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(l.violations)/float64(l.samples)
}

// Exceeded reports whether any sample was over the limit.
func (l *LimitCompliance) Exceeded() bool { return l.violations > 0 }

func (l *LimitCompliance) Reset() {
	l.violations = 0
	l.samples = 0
}
