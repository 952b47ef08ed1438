package integrators

import (
	"sort"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"newmark": func() dynamo.Integrator { return NewNewmark() },
	"rk4":     func() dynamo.Integrator { return NewRK4() },
	"verlet":  func() dynamo.Integrator { return NewVerlet() },
}

// ByName returns a fresh stepper for a CLI name.
func ByName(name string) (dynamo.Integrator, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, dynamo.Invalid("unknown integrator %q (have %v)", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
