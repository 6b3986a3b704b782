package jobid

import (
	"strings"
)

// AxisValue is a single frozen axis assignment, e.g. os=linux.
type AxisValue struct {
	Axis  string
	Value string
}

// Address is the structured representation of a unique job instance
// identifier: the template ID plus the ordered matrix binding. A template
// without a matrix yields an address with an empty binding.
type Address struct {
	Template string
	Binding  []AxisValue
}

// New creates an address for an instance of the named template.
func New(template string, binding ...AxisValue) *Address {
	return &Address{Template: template, Binding: binding}
}

// String serializes the address into its canonical representation,
// e.g. "build" or "build[go=1.22,os=linux]". Binding order is the declared
// axis order, so identical expansions always yield identical strings.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	if len(a.Binding) == 0 {
		return a.Template
	}

	var sb strings.Builder
	sb.WriteString(a.Template)
	sb.WriteRune('[')
	for i, av := range a.Binding {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(av.Axis)
		sb.WriteRune('=')
		sb.WriteString(av.Value)
	}
	sb.WriteRune(']')
	return sb.String()
}

// Values returns the binding as a map for environment injection and
// expression evaluation. The map is freshly allocated on each call.
func (a *Address) Values() map[string]string {
	if a == nil || len(a.Binding) == 0 {
		return nil
	}
	m := make(map[string]string, len(a.Binding))
	for _, av := range a.Binding {
		m[av.Axis] = av.Value
	}
	return m
}

// Equal checks for deep equality between two addresses.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.Template != other.Template || len(a.Binding) != len(other.Binding) {
		return false
	}
	for i := range a.Binding {
		if a.Binding[i] != other.Binding[i] {
			return false
		}
	}
	return true
}
