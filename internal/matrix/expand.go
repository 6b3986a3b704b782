// Package matrix turns one job template plus its parameter axes into the
// concrete set of job instances the graph is built from.
package matrix

import (
	"errors"
	"fmt"

	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/jobid"
)

var (
	// ErrInvalidMatrix reports an axis with zero values. An empty axis would
	// make the template produce zero instances and silently detach its
	// dependents, so construction rejects it outright.
	ErrInvalidMatrix = errors.New("matrix axis has no values")

	// ErrDuplicateAxis reports a repeated axis name within one matrix.
	ErrDuplicateAxis = errors.New("duplicate matrix axis")
)

// Expand produces the addresses of every instance of the given template:
// the cartesian product of its matrix axes, ordered by declared axis order
// with the last axis varying fastest. A template without axes produces
// exactly one address equal to the template itself.
//
// Expansion is deterministic: identical axis declarations always yield
// identical addresses in identical order.
func Expand(tmpl *config.JobTemplate) ([]*jobid.Address, error) {
	if tmpl.Matrix == nil || len(tmpl.Matrix.Axes) == 0 {
		return []*jobid.Address{jobid.New(tmpl.ID)}, nil
	}

	axes := tmpl.Matrix.Axes
	seen := make(map[string]struct{}, len(axes))
	total := 1
	for _, axis := range axes {
		if _, dup := seen[axis.Name]; dup {
			return nil, fmt.Errorf("%w: %q in job %q", ErrDuplicateAxis, axis.Name, tmpl.ID)
		}
		seen[axis.Name] = struct{}{}
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %q in job %q", ErrInvalidMatrix, axis.Name, tmpl.ID)
		}
		total *= len(axis.Values)
	}

	addrs := make([]*jobid.Address, 0, total)
	indices := make([]int, len(axes))
	for {
		binding := make([]jobid.AxisValue, len(axes))
		for i, axis := range axes {
			binding[i] = jobid.AxisValue{Axis: axis.Name, Value: axis.Values[indices[i]]}
		}
		addrs = append(addrs, jobid.New(tmpl.ID, binding...))

		// Odometer increment, last axis fastest.
		pos := len(axes) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(axes[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return addrs, nil
		}
	}
}
