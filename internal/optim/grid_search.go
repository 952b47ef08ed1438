// Package optim searches parameter grids for the setting that minimises
// an objective, such as the peak displacement of a mount under shock.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
)

// Objective scores one parameter assignment. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Evaluation is one grid point and its score.
type Evaluation struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Workers bounds concurrent evaluations; see dynamo.ParallelFor.
	Workers int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Range is count values from lo to hi inclusive, log-spaced when log is
// set. A count of 1 is the single value lo.
func Range(lo, hi float64, count int, log bool) ([]float64, error) {
	if count == 1 {
		return []float64{lo}, nil
	}
	spacing := grid.Linear
	if log {
		spacing = grid.Logarithmic
	}
	return grid.Spec{Start: lo, Stop: hi, Count: count, Spacing: spacing}.Build()
}

func (g *GridSearch) validate() error {
	if len(g.paramNames) == 0 {
		return dynamo.Invalid("grid search needs at least one parameter")
	}
	if len(g.paramNames) != len(g.ranges) {
		return dynamo.Invalid("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, r := range g.ranges {
		if len(r) == 0 {
			return dynamo.Invalid("parameter %q has an empty range", g.paramNames[i])
		}
	}
	return nil
}

// Points enumerates the Cartesian product with the last parameter varying
// fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}

// Search evaluates every grid point and returns all evaluations in grid
// order together with the index of the best one. Points whose objective is
// NaN never win.
func (g *GridSearch) Search(ctx context.Context, objective Objective) ([]Evaluation, int, error) {
	if err := g.validate(); err != nil {
		return nil, -1, err
	}
	points := g.Points()
	evals := make([]Evaluation, len(points))

	err := dynamo.ParallelFor(ctx, len(points), g.Workers, func(ctx context.Context, i int) error {
		v, err := objective(ctx, points[i])
		if err != nil {
			return err
		}
		evals[i] = Evaluation{Params: points[i], Value: v}
		return nil
	})
	if err != nil {
		return nil, -1, err
	}

	best := -1
	bestVal := math.Inf(1)
	for i, e := range evals {
		if e.Value < bestVal {
			best, bestVal = i, e.Value
		}
	}
	return evals, best, nil
}
