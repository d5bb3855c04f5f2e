package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
)

const Default = "rk4"

var registry = map[string]func() dynamo.Integrator{
	"rk4":        func() dynamo.Integrator { return NewRK4() },
	"rk4-legacy": func() dynamo.Integrator { return NewLegacyRK4() },
	"euler":      func() dynamo.Integrator { return NewEuler() },
}

// Lookup returns a fresh integrator by name. An empty name selects Default.
func Lookup(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (available: %v): %w", name, Names(), dynamo.ErrInvalidParameter)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
