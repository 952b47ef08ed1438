package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

func TestSpec_Build(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		first float64
		last  float64
		mid   float64
	}{
		{"linear", Spec{Start: 0, Stop: 10, Count: 11}, 0, 10, 5},
		{"log", Spec{Start: 1, Stop: 100, Count: 3, Spacing: Logarithmic}, 1, 100, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs, err := tt.spec.Build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if len(xs) != tt.spec.Count {
				t.Fatalf("expected %d points, got %d", tt.spec.Count, len(xs))
			}
			if math.Abs(xs[0]-tt.first) > 1e-9 || math.Abs(xs[len(xs)-1]-tt.last) > 1e-9 {
				t.Errorf("endpoints = (%f, %f), want (%f, %f)", xs[0], xs[len(xs)-1], tt.first, tt.last)
			}
			if math.Abs(xs[len(xs)/2]-tt.mid) > 1e-9 {
				t.Errorf("midpoint = %f, want %f", xs[len(xs)/2], tt.mid)
			}
			if err := Validate(xs); err != nil {
				t.Errorf("built grid fails validation: %v", err)
			}
		})
	}
}

func TestSpec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"stop before start", Spec{Start: 10, Stop: 1, Count: 5}},
		{"equal bounds", Spec{Start: 1, Stop: 1, Count: 5}},
		{"one point", Spec{Start: 0, Stop: 1, Count: 1}},
		{"negative start", Spec{Start: -1, Stop: 1, Count: 5}},
		{"log from zero", Spec{Start: 0, Stop: 1, Count: 5, Spacing: Logarithmic}},
		{"too many", Spec{Start: 0, Stop: 1, Count: MaxPoints + 1}},
		{"nan", Spec{Start: math.NaN(), Stop: 1, Count: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.spec.Build(); !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestUniform(t *testing.T) {
	xs, err := Uniform(0.1, 1.0)
	if err != nil {
		t.Fatalf("uniform failed: %v", err)
	}
	if len(xs) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(xs))
	}
	dt, err := UniformStep(xs)
	if err != nil {
		t.Fatalf("UniformStep failed: %v", err)
	}
	if math.Abs(dt-0.1) > 1e-12 {
		t.Errorf("dt = %f, want 0.1", dt)
	}

	for _, bad := range [][2]float64{{0, 1}, {-0.1, 1}, {0.1, 0}, {0.1, -1}} {
		if _, err := Uniform(bad[0], bad[1]); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("Uniform(%v, %v): expected ErrInvalidParameter, got %v", bad[0], bad[1], err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		xs    []float64
		valid bool
	}{
		{"increasing", []float64{0, 1, 2}, true},
		{"single", []float64{3}, true},
		{"empty", nil, false},
		{"repeated", []float64{0, 1, 1}, false},
		{"decreasing", []float64{2, 1}, false},
		{"inf", []float64{0, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.xs); (err == nil) != tt.valid {
				t.Errorf("Validate(%v) = %v, valid %v", tt.xs, err, tt.valid)
			}
		})
	}

	if _, err := UniformStep([]float64{0, 1, 3}); err == nil {
		t.Error("expected non-uniform grid to be rejected")
	}
}
