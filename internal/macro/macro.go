package macro

import "github.com/heist-scheme/heist/internal/datum"

// Expand tries each rule of rules in order against a macro use's argument
// list, returning the expansion from the first match (spec §4.2 "Multiple
// rules are tried in order; first match wins; no match is an error").
func Expand(rules *datum.SyntaxRules, form *datum.Expression) (datum.Datum, error) {
	literals := map[datum.Symbol]bool{}
	for _, l := range rules.Literals {
		literals[l] = true
	}
	args := form.Args()
	for _, rule := range rules.Rules {
		bindings, ok := matchRule(rule, literals, rules.Ellipsis, args)
		if !ok {
			continue
		}
		result, err := instantiate(rule.Template, bindings)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, datum.NewError(datum.ErrMacro, "no syntax-rules pattern for %s matched %s", rules.Label, form.Write())
}
