package integrators

import (
	"testing"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

var benchForcing = dynamo.ForcingFunc(func(t float64) float64 { return 0 })

func benchmark(b *testing.B, integ dynamo.Integrator) {
	osc := oscillator{m: 1, c: 0.6, k: 1000}
	s := dynamo.State{X: 1, A: -1000}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, _ = integ.Step(osc, s, benchForcing, 0, 0.001)
	}
}

func BenchmarkNewmark(b *testing.B) { benchmark(b, NewNewmark()) }
func BenchmarkRK4(b *testing.B)     { benchmark(b, NewRK4()) }
func BenchmarkVerlet(b *testing.B)  { benchmark(b, NewVerlet()) }
