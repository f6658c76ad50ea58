package analyzer

import "github.com/heist-scheme/heist/internal/datum"

// analyzeQuote builds the literal runtime value a quoted syntax tree
// denotes (spec §4.1 quote: "converting nested expressions into explicit
// list/append calls, handling dotted-pair notation ... and expanding
// vector literals"). Since quoted data has no unquote to evaluate, the
// value is built once at analysis time rather than per call, which also
// satisfies analyze idempotence (spec §8 property 1) trivially.
func (a *Analyzer) analyzeQuote(e *datum.Expression) datum.Executor {
	if len(e.Items) != 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "quote: expected exactly one datum, got %s", e.Write()))
	}
	value, err := quoteToDatum(e.Items[1])
	if err != nil {
		return constant(err)
	}
	return constant(value)
}

// quoteToDatum recursively converts a syntax tree into the runtime value
// it denotes. Reader-produced Expression nodes are shape-ambiguous with
// ordinary lists, so two textual markers are recognized specially here,
// exactly the way the reader produced them: a literal dot symbol at the
// penultimate position denotes a dotted tail, and a "vector" head denotes
// a vector literal (both #(...) shorthand and an explicitly written
// (vector ...) quoted form are treated identically, matching the spec's
// "expanding vector literals to (vector …) calls" technique).
func quoteToDatum(syntax datum.Datum) (datum.Datum, *datum.Error) {
	e, ok := syntax.(*datum.Expression)
	if !ok {
		return syntax, nil
	}
	items := e.Items
	if len(items) == 0 {
		return datum.EmptyList, nil
	}
	if head, ok := items[0].(datum.Symbol); ok && head == "vector" {
		elems := make([]datum.Datum, len(items)-1)
		for i, it := range items[1:] {
			v, err := quoteToDatum(it)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return datum.NewVector(elems), nil
	}
	if n := len(items); n >= 2 {
		if sym, ok := items[n-2].(datum.Symbol); ok && sym == datum.DotSymbol {
			headItems := items[:n-2]
			for _, it := range headItems {
				if sym2, ok := it.(datum.Symbol); ok && sym2 == datum.DotSymbol {
					return nil, datum.NewError(datum.ErrSyntax, "quote: misplaced dot in %s", e.Write())
				}
			}
			quotedHead := make([]datum.Datum, len(headItems))
			for i, it := range headItems {
				v, err := quoteToDatum(it)
				if err != nil {
					return nil, err
				}
				quotedHead[i] = v
			}
			tailVal, err := quoteToDatum(items[n-1])
			if err != nil {
				return nil, err
			}
			return datum.SliceToImproperList(quotedHead, tailVal), nil
		}
	}
	for _, it := range items {
		if sym, ok := it.(datum.Symbol); ok && sym == datum.DotSymbol {
			return nil, datum.NewError(datum.ErrSyntax, "quote: misplaced dot in %s", e.Write())
		}
	}
	quotedItems := make([]datum.Datum, len(items))
	for i, it := range items {
		v, err := quoteToDatum(it)
		if err != nil {
			return nil, err
		}
		quotedItems[i] = v
	}
	return datum.SliceToList(quotedItems), nil
}
