package hcl

import (
	"fmt"
	"sort"
	"time"

	"github.com/vk/gridci/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateJob converts the HCL-specific job schema into the agnostic model.
func (l *Loader) translateJob(jb *jobBlock) (*config.JobTemplate, error) {
	tmpl := &config.JobTemplate{
		ID:    jb.ID,
		Needs: jb.Needs,
	}

	for _, sb := range jb.Steps {
		tmpl.Steps = append(tmpl.Steps, config.Step{Name: sb.Name, Run: sb.Run})
	}

	cond, err := translateCondition(jb)
	if err != nil {
		return nil, err
	}
	tmpl.When = cond

	if jb.Timeout != nil {
		d, err := time.ParseDuration(*jb.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", *jb.Timeout, err)
		}
		tmpl.Timeout = d
	}

	if jb.Matrix != nil {
		m, err := translateMatrix(jb.Matrix)
		if err != nil {
			return nil, err
		}
		tmpl.Matrix = m
	}

	return tmpl, nil
}

// translateCondition maps the mutually exclusive run_when keyword and
// condition expression onto the condition sum type.
func translateCondition(jb *jobBlock) (*config.Condition, error) {
	hasCustom := jb.Condition != nil && len(jb.Condition.Variables()) > 0
	if !hasCustom && jb.Condition != nil {
		// A literal expression (e.g. `condition = true`) carries no
		// variables but is still a custom condition; distinguish it from
		// the absent-attribute nil by evaluating for a known value.
		if val, diags := jb.Condition.Value(nil); !diags.HasErrors() && !val.IsNull() {
			hasCustom = true
		}
	}

	if jb.RunWhen != nil && hasCustom {
		return nil, fmt.Errorf("run_when and condition cannot be used together")
	}

	if hasCustom {
		return &config.Condition{Mode: config.ConditionCustom, Expr: jb.Condition}, nil
	}

	if jb.RunWhen == nil {
		return nil, nil
	}
	switch *jb.RunWhen {
	case "always":
		return &config.Condition{Mode: config.ConditionAlways}, nil
	case "on_success":
		return &config.Condition{Mode: config.ConditionDefault}, nil
	default:
		return nil, fmt.Errorf("invalid run_when value %q: must be 'always' or 'on_success'", *jb.RunWhen)
	}
}

// translateMatrix decodes a matrix block's attributes into ordered axes.
// Attribute maps are unordered, so declaration order is recovered from the
// source ranges; it determines expansion order and must be stable.
func translateMatrix(mb *matrixBlock) (*config.Matrix, error) {
	attrs, diags := mb.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid matrix block: %w", diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return attrs[names[i]].Range.Start.Byte < attrs[names[j]].Range.Start.Byte
	})

	m := &config.Matrix{}
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("matrix axis %q: %w", name, diags)
		}
		if !val.Type().IsTupleType() && !val.Type().IsListType() {
			return nil, fmt.Errorf("matrix axis %q must be a list of values", name)
		}

		axis := config.Axis{Name: name}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			strVal, err := convert.Convert(v, cty.String)
			if err != nil {
				return nil, fmt.Errorf("matrix axis %q: value is not convertible to string", name)
			}
			axis.Values = append(axis.Values, strVal.AsString())
		}
		m.Axes = append(m.Axes, axis)
	}
	return m, nil
}
