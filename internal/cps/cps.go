// Package cps implements the whole-program CPS source-to-source transform
// that is this interpreter's only mechanism for first-class continuations
// (spec.md §4.3, §4.5, Non-goals: "proper partial-continuation call/cc —
// continuations are supported only via whole-program CPS").
//
// Grounded on the teacher's internal/vm peephole-rewrite conventions and
// internal/analyzer's tree-rewrite helpers, generalized from funxy's
// bytecode-lowering passes to a direct-style-to-CPS AST rewrite.
package cps

import (
	"fmt"

	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

// gensymCounters is the CPS transformer's own two-counter unique-name
// generator, kept entirely separate from the macro expander's hygiene
// counters (spec §9: "SEPARATE from macro hygiene's two-counter scheme").
var gensymCounters struct {
	major, minor uint64
}

// freshContinuationVar produces a globally-unique continuation parameter
// name, recognizable by its ContinuationPrefix so an already-CPS-converted
// application can be told apart from one that still needs converting
// (spec §4.3 "Unique symbol generation", §9 "names starting with the
// continuation prefix recognized specially").
func freshContinuationVar() datum.Symbol {
	gensymCounters.minor++
	if gensymCounters.minor == 0 {
		gensymCounters.major++
	}
	return datum.Symbol(fmt.Sprintf("%sk%d.%d", config.ContinuationPrefix, gensymCounters.major, gensymCounters.minor))
}

// IsContinuationVar reports whether sym names a CPS-generated continuation
// parameter.
func IsContinuationVar(sym datum.Symbol) bool {
	s := string(sym)
	return len(s) > len(config.ContinuationPrefix) && s[:len(config.ContinuationPrefix)] == config.ContinuationPrefix
}

// applicationCPSTag marks an Application node the transformer already
// converted, so the analyzer's application-analysis step (spec §4.6 point
// 1) can recognize and dispatch it directly instead of re-converting
// (spec §4.3 "application tag heist:core:application-cps-tag").
const applicationCPSTag = config.ReservedPrefix + "application-cps-tag"

func tagApplication(e *datum.Expression) *datum.Expression {
	return &datum.Expression{Items: append([]datum.Datum{datum.Symbol(applicationCPSTag)}, e.Items...), Line: e.Line, Column: e.Column}
}

// IsTaggedApplication reports whether e was produced by Transform as an
// already-CPS-converted application, and returns the untagged form.
func IsTaggedApplication(e *datum.Expression) (*datum.Expression, bool) {
	if len(e.Items) == 0 {
		return nil, false
	}
	if sym, ok := e.Items[0].(datum.Symbol); ok && sym == applicationCPSTag {
		return &datum.Expression{Items: e.Items[1:], Line: e.Line, Column: e.Column}, true
	}
	return nil, false
}

var hostSpecialForms = map[datum.Symbol]bool{
	"and": true, "or": true, "cond": true, "case": true,
	"let": true, "let*": true, "letrec": true, "do": true,
	"delay": true, "scons": true, "stream": true,
	"quasiquote": true,
}

func isSelfEvaluating(d datum.Datum) bool {
	switch d.(type) {
	case datum.Number, datum.Character, datum.String, datum.Boolean:
		return true
	default:
		return false
	}
}

func isAtomic(d datum.Datum) bool {
	switch v := d.(type) {
	case datum.Symbol:
		return true
	case *datum.Expression:
		if h, ok := v.Head(); ok {
			return h == "quote" || h == "lambda"
		}
		return false
	default:
		return isSelfEvaluating(d)
	}
}

func kApply(k datum.Datum, value datum.Datum) *datum.Expression {
	return &datum.Expression{Items: []datum.Datum{k, value}}
}
