package macro

import (
	"github.com/heist-scheme/heist/internal/datum"
)

// Build validates a syntax-rules form's literals/patterns/templates (spec
// §4.2 "validation at analysis time") and constructs the SyntaxRules
// value, renaming every binding the template itself introduces (and that
// is not a pattern variable) to a fresh hygienic name; free identifiers in
// the template are left as written (spec §4.2 Hygiene, see renameBindings).
func Build(label string, literals []datum.Symbol, ellipsis datum.Symbol, rules []*datum.Expression) (*datum.SyntaxRules, error) {
	if ellipsis == "" {
		ellipsis = "..."
	}
	for _, lit := range literals {
		if lit == ellipsis {
			return nil, datum.NewError(datum.ErrSyntax, "syntax-rules: ellipsis %q cannot appear in the literal list", ellipsis)
		}
	}
	litSet := map[datum.Symbol]bool{}
	for _, l := range literals {
		litSet[l] = true
	}

	out := &datum.SyntaxRules{Label: label, Literals: literals, Ellipsis: ellipsis}
	for _, ruleExpr := range rules {
		if len(ruleExpr.Items) != 2 {
			return nil, datum.NewError(datum.ErrSyntax, "syntax-rules: each rule must be a (pattern template) pair, got %s", ruleExpr.Write())
		}
		patternDatum := ruleExpr.Items[0]
		pattern, ok := patternDatum.(*datum.Expression)
		if !ok || len(pattern.Items) == 0 {
			return nil, datum.NewError(datum.ErrSyntax, "syntax-rules: pattern must begin with the macro keyword, got %s", patternDatum.Write())
		}
		if err := validatePattern(pattern, litSet, ellipsis, map[datum.Symbol]bool{}); err != nil {
			return nil, err
		}
		patternVars := map[datum.Symbol]bool{}
		collectPatternVars(pattern.Items[1:], litSet, ellipsis, patternVars)

		template := renameBindings(ruleExpr.Items[1], patternVars, map[datum.Symbol]datum.Symbol{})
		out.Rules = append(out.Rules, datum.SyntaxRule{Pattern: pattern, Template: template})
	}
	return out, nil
}

// validatePattern enforces spec §4.2's structural rules: keyword list is
// symbols only, ellipsis never leads a subexpression, at most one
// ellipsis per subexpression level, and pattern identifiers are unique
// within the pattern.
func validatePattern(pattern *datum.Expression, literals map[datum.Symbol]bool, ellipsis datum.Symbol, seen map[datum.Symbol]bool) error {
	return validateItems(pattern.Items, literals, ellipsis, seen)
}

func validateItems(items []datum.Datum, literals map[datum.Symbol]bool, ellipsis datum.Symbol, seen map[datum.Symbol]bool) error {
	ellipsisCount := 0
	for i, item := range items {
		if sym, ok := item.(datum.Symbol); ok && sym == ellipsis {
			if i == 0 {
				return datum.NewError(datum.ErrSyntax, "syntax-rules: ellipsis cannot be the first element of a pattern")
			}
			ellipsisCount++
			if ellipsisCount > 1 {
				return datum.NewError(datum.ErrSyntax, "syntax-rules: at most one ellipsis per subexpression")
			}
			continue
		}
		switch v := item.(type) {
		case datum.Symbol:
			if v == datum.DotSymbol || literals[v] || v == "_" {
				continue
			}
			if seen[v] {
				return datum.NewError(datum.ErrSyntax, "syntax-rules: duplicate pattern identifier %q", v)
			}
			seen[v] = true
		case *datum.Expression:
			if err := validateItems(v.Items, literals, ellipsis, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectPatternVars gathers every identifier bound by the pattern
// (excluding literals, the ellipsis marker, and the dot marker).
func collectPatternVars(items []datum.Datum, literals map[datum.Symbol]bool, ellipsis datum.Symbol, out map[datum.Symbol]bool) {
	for _, item := range items {
		switch v := item.(type) {
		case datum.Symbol:
			if v == ellipsis || v == datum.DotSymbol || literals[v] || v == "_" {
				continue
			}
			out[v] = true
		case *datum.Expression:
			collectPatternVars(v.Items, literals, ellipsis, out)
		}
	}
}

// renameBindings walks a template and renames identifiers the template
// itself introduces as new bindings — let/let*/letrec/do/named-let
// variables and lambda parameters — to fresh hygienic names, consistently
// substituting matching references within that binding's extent (spec
// §4.2 Hygiene, §8 property 3 "swap! ... doesn't capture caller's user
// tmp"). Free references (operators, globals, pattern variables) pass
// through untouched: only template-introduced *bindings* ever need
// renaming to avoid capture, and renaming free references would also
// break ordinary calls like `car`/`+` that the template relies on.
func renameBindings(tmpl datum.Datum, patternVars map[datum.Symbol]bool, scope map[datum.Symbol]datum.Symbol) datum.Datum {
	switch v := tmpl.(type) {
	case datum.Symbol:
		if patternVars[v] {
			return v
		}
		if r, ok := scope[v]; ok {
			return r
		}
		return v
	case *datum.Expression:
		if len(v.Items) == 0 {
			return v
		}
		head, _ := v.Head()
		switch head {
		case "lambda":
			return renameLambdaLike(v, patternVars, scope)
		case "let":
			return renameLetLike(v, patternVars, scope, false)
		case "let*", "letrec":
			return renameLetLike(v, patternVars, scope, true)
		case "do":
			return renameLetLike(v, patternVars, scope, false)
		default:
			items := make([]datum.Datum, len(v.Items))
			for i, it := range v.Items {
				items[i] = renameBindings(it, patternVars, scope)
			}
			return &datum.Expression{Items: items, Line: v.Line, Column: v.Column}
		}
	default:
		return tmpl
	}
}

func childScope(scope map[datum.Symbol]datum.Symbol) map[datum.Symbol]datum.Symbol {
	child := make(map[datum.Symbol]datum.Symbol, len(scope))
	for k, v := range scope {
		child[k] = v
	}
	return child
}

// renameLambdaLike handles (lambda formals body...): formals not bound as
// pattern variables get fresh names visible to the body.
func renameLambdaLike(v *datum.Expression, patternVars map[datum.Symbol]bool, scope map[datum.Symbol]datum.Symbol) datum.Datum {
	if len(v.Items) < 2 {
		return v
	}
	child := childScope(scope)
	formals := renameFormals(v.Items[1], patternVars, child)
	items := make([]datum.Datum, len(v.Items))
	items[0] = v.Items[0]
	items[1] = formals
	for i := 2; i < len(v.Items); i++ {
		items[i] = renameBindings(v.Items[i], patternVars, child)
	}
	return &datum.Expression{Items: items, Line: v.Line, Column: v.Column}
}

func renameFormals(formals datum.Datum, patternVars map[datum.Symbol]bool, scope map[datum.Symbol]datum.Symbol) datum.Datum {
	switch f := formals.(type) {
	case datum.Symbol:
		if patternVars[f] {
			return f
		}
		fresh := freshHygienicName(f)
		scope[f] = fresh
		return fresh
	case *datum.Expression:
		items := make([]datum.Datum, len(f.Items))
		for i, it := range f.Items {
			if sym, ok := it.(datum.Symbol); ok && sym != datum.DotSymbol && !patternVars[sym] {
				fresh := freshHygienicName(sym)
				scope[sym] = fresh
				items[i] = fresh
			} else {
				items[i] = it
			}
		}
		return &datum.Expression{Items: items, Line: f.Line, Column: f.Column}
	default:
		return formals
	}
}

// renameLetLike handles (let ((n v) ...) body...), (let name ((n v) ...)
// body...), let*/letrec (sequentialScope: each binding's value expression
// already sees prior renamed names), and do's analogous binding clause
// shape.
func renameLetLike(v *datum.Expression, patternVars map[datum.Symbol]bool, scope map[datum.Symbol]datum.Symbol, sequentialScope bool) datum.Datum {
	idx := 1
	var loopName datum.Datum
	if idx < len(v.Items) {
		if _, ok := v.Items[idx].(datum.Symbol); ok {
			loopName = v.Items[idx]
			idx++
		}
	}
	if idx >= len(v.Items) {
		return v
	}
	bindingsExpr, ok := v.Items[idx].(*datum.Expression)
	if !ok {
		return v
	}
	child := childScope(scope)
	newBindings := make([]datum.Datum, len(bindingsExpr.Items))
	valueScope := scope
	for i, b := range bindingsExpr.Items {
		clause, ok := b.(*datum.Expression)
		if !ok || len(clause.Items) == 0 {
			newBindings[i] = b
			continue
		}
		name, _ := clause.Items[0].(datum.Symbol)
		var fresh datum.Symbol = name
		if !patternVars[name] {
			fresh = freshHygienicName(name)
			child[name] = fresh
		}
		newItems := make([]datum.Datum, len(clause.Items))
		newItems[0] = fresh
		scopeForValue := valueScope
		if sequentialScope {
			scopeForValue = child
		}
		for j := 1; j < len(clause.Items); j++ {
			newItems[j] = renameBindings(clause.Items[j], patternVars, scopeForValue)
		}
		newBindings[i] = &datum.Expression{Items: newItems, Line: clause.Line, Column: clause.Column}
	}
	items := make([]datum.Datum, len(v.Items))
	items[0] = v.Items[0]
	i2 := 1
	if loopName != nil {
		items[1] = loopName
		i2 = 2
	}
	items[i2] = &datum.Expression{Items: newBindings, Line: bindingsExpr.Line, Column: bindingsExpr.Column}
	for i := i2 + 1; i < len(v.Items); i++ {
		items[i] = renameBindings(v.Items[i], patternVars, child)
	}
	return &datum.Expression{Items: items, Line: v.Line, Column: v.Column}
}
