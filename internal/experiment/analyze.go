package experiment

import (
	"github.com/san-kum/sdofsim/internal/analysis"
	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/grid"
)

// SignalReport characterises one stored column.
type SignalReport struct {
	Column string
	Stats  analysis.Stats
	// The fields below are filled only for uniformly sampled time
	// histories that oscillate enough to measure.
	DominantHz float64
	MeasuredHz float64
	Decay      *analysis.LogDecrementEstimate
}

// AnalyzeColumn computes statistics of a column and, when the abscissa is
// a uniform time grid, its dominant frequency and damping estimate.
func AnalyzeColumn(t *export.Table, column string) (*SignalReport, error) {
	c, err := t.Curve(column)
	if err != nil {
		return nil, err
	}
	values := c.Ys()
	stats, err := analysis.Summarize(values)
	if err != nil {
		return nil, err
	}
	rep := &SignalReport{Column: column, Stats: stats}

	if t.Columns[0].Unit != "s" {
		return rep, nil
	}
	dt, err := grid.UniformStep(c.Xs())
	if err != nil {
		return rep, nil
	}
	if f, err := analysis.DominantFrequency(values, dt); err == nil {
		rep.DominantHz = f
	}
	if f, err := analysis.MeasuredFrequency(c); err == nil {
		rep.MeasuredHz = f
	}
	if d, err := analysis.EstimateLogDecrement(values); err == nil {
		rep.Decay = &d
	}
	return rep, nil
}
