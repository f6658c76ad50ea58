package datum

import "fmt"

// SyntaxRule is a single (pattern template) clause of a syntax-rules form.
type SyntaxRule struct {
	Pattern  *Expression
	Template Datum
}

// SyntaxRules is a macro transformer: a label, the literal keyword list,
// and the ordered pattern/template rules tried in order (spec §3, §4.2).
type SyntaxRules struct {
	Label    string
	Literals []Symbol
	Rules    []SyntaxRule
	// Ellipsis is almost always "...", but syntax-rules allows a custom
	// ellipsis identifier as an optional first pattern-list element.
	Ellipsis Symbol
}

func (s *SyntaxRules) Kind() Kind      { return KindSyntaxRule }
func (s *SyntaxRules) Hash() uint32    { return 0 }
func (s *SyntaxRules) Write() string   { return fmt.Sprintf("#<syntax-rules %s>", s.Label) }
func (s *SyntaxRules) Display() string { return s.Write() }
