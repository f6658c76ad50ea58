// Package macro implements hygienic syntax-rules expansion (spec.md §4.2):
// validation at definition time, pattern matching with ellipsis support,
// and template substitution that renames macro-introduced bindings so
// they cannot capture identifiers from the use site. Free identifiers in a
// template are not renamed.
//
// Grounded on the teacher's internal/evaluator/statements_patterns.go
// (tree-shaped pattern matching with position bookkeeping) generalized
// from funxy's match-expression patterns to Scheme's syntax-rules.
package macro

import (
	"fmt"

	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

// hygieneCounters is the two-counter generator spec §4.2/§9 calls for,
// kept separate from the CPS transformer's own two-counter scheme so the
// two namespaces never collide even though both use the same prefix
// family (spec §9 "CPS identifier naming... SEPARATE from macro hygiene's
// two-counter scheme").
var hygieneCounters = struct {
	major, minor uint64
}{}

// freshHygienicName produces a globally-unique renamed identifier for base,
// called once for each binding occurrence a template introduces.
func freshHygienicName(base datum.Symbol) datum.Symbol {
	hygieneCounters.minor++
	if hygieneCounters.minor == 0 {
		hygieneCounters.major++
	}
	return datum.Symbol(fmt.Sprintf("%s%s$%d.%d", config.MacroHygienePrefix, string(base), hygieneCounters.major, hygieneCounters.minor))
}
