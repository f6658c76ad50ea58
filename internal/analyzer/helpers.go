package analyzer

import "github.com/heist-scheme/heist/internal/datum"

func mkExpr(items ...datum.Datum) *datum.Expression {
	return &datum.Expression{Items: items}
}

func sym(s string) datum.Symbol { return datum.Symbol(s) }

// nameIfAnonymous gives an anonymous compound procedure the binding name it
// is assigned to, purely cosmetic output used in trace/error formatting
// (spec §4.1 define/set!: "Anonymous lambdas bound via set!/define receive
// the binding name").
func nameIfAnonymous(v datum.Datum, name datum.Symbol) {
	if proc, ok := v.(*datum.Procedure); ok && proc.Name == "" {
		proc.Name = string(name)
	}
}
