package datum

import "strings"

// Expression is the syntax-tree representation the reader hands to
// analyze: an ordered sequence of child nodes, each either an atomic
// datum or another Expression (spec §6 "To the reader"). It is distinct
// from Pair — Pair is a runtime cons cell; Expression is pre-analysis
// source shape, e.g. the reader parses `(if a b c)` into
// Expression{Items: [if a b c]}, and `quote`/`quasiquote` analysis is what
// turns a quoted Expression into Pair-building code (spec §4.1 quote).
type Expression struct {
	Items        []Datum
	Line, Column int
}

// DotSymbol marks the dotted-pair position inside a quoted Expression's
// Items (spec §4.1 quote: "at most once, at penultimate position").
const DotSymbol Symbol = "."

func NewExpression(items ...Datum) *Expression { return &Expression{Items: items} }

func (e *Expression) Kind() Kind { return KindExpression }
func (e *Expression) Hash() uint32 { return 0 }

func (e *Expression) Write() string   { return formatExpression(e, func(d Datum) string { return d.Write() }) }
func (e *Expression) Display() string { return formatExpression(e, func(d Datum) string { return d.Display() }) }

func formatExpression(e *Expression, render func(Datum) string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, it := range e.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(render(it))
	}
	b.WriteByte(')')
	return b.String()
}

// Head returns the leading symbol of the expression (the special-form
// tag or operator name), and whether the expression is non-empty and the
// head is actually a symbol.
func (e *Expression) Head() (Symbol, bool) {
	if len(e.Items) == 0 {
		return "", false
	}
	sym, ok := e.Items[0].(Symbol)
	return sym, ok
}

// Args returns the items after the head.
func (e *Expression) Args() []Datum {
	if len(e.Items) == 0 {
		return nil
	}
	return e.Items[1:]
}

// IsTagged reports whether e's head symbol equals tag.
func (e *Expression) IsTagged(tag Symbol) bool {
	head, ok := e.Head()
	return ok && head == tag
}
