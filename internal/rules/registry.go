package rules

import (
	"fmt"
	"sort"

	"github.com/synheart/synheart-bpsim/internal/models"
)

var builtins = map[string]func() Rule{
	BaseName:   func() Rule { return NewBase(models.DefaultThresholds()) },
	StdDevName: func() Rule { return NewStdDev(DefaultStdDevK) },
	ARVName:    func() Rule { return NewARV(DefaultARVK) },
}

// DefaultNames is the rule set used when none is requested
var DefaultNames = []string{BaseName, StdDevName, ARVName}

// Lookup returns a fresh, unfitted instance of a built-in rule
func Lookup(name string) (Rule, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q (available: %v)", name, Names())
	}
	return build(), nil
}

// LookupAll resolves names in order
func LookupAll(names []string) ([]Rule, error) {
	out := make([]Rule, 0, len(names))
	for _, name := range names {
		r, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Names lists the built-in rules
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
