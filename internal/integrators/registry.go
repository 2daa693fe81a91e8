package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/webswing/internal/dynamo"
)

var steppers = map[string]func() dynamo.Stepper{
	"rk45": func() dynamo.Stepper { return NewRK45() },
	"rk4":  func() dynamo.Stepper { return NewRK4() },
}

// New returns a fresh stepper by name.
func New(name string) (dynamo.Stepper, error) {
	fn, ok := steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(steppers))
	for name := range steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
