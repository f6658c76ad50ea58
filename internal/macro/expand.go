package macro

import "github.com/heist-scheme/heist/internal/datum"

// instantiate substitutes a rule's (already hygiene-renamed) template
// using the bindings matchRule produced (spec §4.2 "template substitution").
func instantiate(template datum.Datum, bindings map[datum.Symbol]*binding) (datum.Datum, error) {
	switch t := template.(type) {
	case datum.Symbol:
		b, ok := bindings[t]
		if !ok {
			return t, nil
		}
		if b.Depth != 0 {
			return nil, datum.NewError(datum.ErrMacro, "syntax-rules: variadic pattern variable %q used without ellipsis", t)
		}
		return b.Value, nil
	case *datum.Expression:
		items, err := instantiateSequence(t.Items, bindings)
		if err != nil {
			return nil, err
		}
		return &datum.Expression{Items: items, Line: t.Line, Column: t.Column}, nil
	default:
		return template, nil
	}
}

func instantiateSequence(items []datum.Datum, bindings map[datum.Symbol]*binding) ([]datum.Datum, error) {
	var out []datum.Datum
	for i := 0; i < len(items); i++ {
		item := items[i]
		if sym, ok := item.(datum.Symbol); ok && sym == "..." && len(out) > 0 {
			// A literal "... ..." escape is rare; treat as-is if reached.
			out = append(out, item)
			continue
		}
		if i+1 < len(items) {
			if next, ok := items[i+1].(datum.Symbol); ok && next == "..." {
				replicas, err := expandEllipsis(item, bindings)
				if err != nil {
					return nil, err
				}
				out = append(out, replicas...)
				i++
				continue
			}
		}
		inst, err := instantiate(item, bindings)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// expandEllipsis replicates item once per matched repetition of the
// variadic pattern variables it references, checking that every variadic
// reference at this template level agrees on length (spec §4.2 "all
// variadic uses at the same template level must match lengths").
func expandEllipsis(item datum.Datum, bindings map[datum.Symbol]*binding) ([]datum.Datum, error) {
	vars := map[datum.Symbol]*binding{}
	collectVariadicRefs(item, bindings, vars)
	if len(vars) == 0 {
		return nil, datum.NewError(datum.ErrMacro, "syntax-rules: template ellipsis has no variadic pattern variable to drive it")
	}
	n := -1
	for name, b := range vars {
		if n == -1 {
			n = len(b.Groups)
		} else if len(b.Groups) != n {
			return nil, datum.NewError(datum.ErrMacro, "syntax-rules: mismatched ellipsis lengths for %q", name)
		}
	}
	var out []datum.Datum
	for i := 0; i < n; i++ {
		sub := map[datum.Symbol]*binding{}
		for k, v := range bindings {
			sub[k] = v
		}
		for name, b := range vars {
			sub[name] = b.Groups[i]
		}
		inst, err := instantiate(item, sub)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func collectVariadicRefs(item datum.Datum, bindings map[datum.Symbol]*binding, out map[datum.Symbol]*binding) {
	switch t := item.(type) {
	case datum.Symbol:
		if b, ok := bindings[t]; ok && b.Depth > 0 {
			out[t] = b
		}
	case *datum.Expression:
		for _, it := range t.Items {
			collectVariadicRefs(it, bindings, out)
		}
	}
}
