package analyzer

import (
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
	"github.com/heist-scheme/heist/internal/macro"
)

// analyzeSyntaxRules builds a SyntaxRules value from (syntax-rules
// [ellipsis] (literal...) (pattern template)...) (spec §4.2). The
// transformer itself has no runtime behavior beyond producing the value;
// installing it into a scope is define-syntax/core-syntax's job.
func (a *Analyzer) analyzeSyntaxRules(e *datum.Expression) datum.Executor {
	args := e.Args()
	if len(args) < 1 {
		return constant(a.State.Errorf(datum.ErrSyntax, "syntax-rules: expected (syntax-rules [ellipsis] (literals...) (pattern template)...), got %s", e.Write()))
	}
	var ellipsis datum.Symbol
	if s, ok := args[0].(datum.Symbol); ok {
		ellipsis = s
		args = args[1:]
	}
	if len(args) < 1 {
		return constant(a.State.Errorf(datum.ErrSyntax, "syntax-rules: missing literal list"))
	}
	litExpr, ok := args[0].(*datum.Expression)
	if !ok {
		return constant(a.State.Errorf(datum.ErrSyntax, "syntax-rules: literal list must be a list, got %s", args[0].Write()))
	}
	literals := make([]datum.Symbol, 0, len(litExpr.Items))
	for _, it := range litExpr.Items {
		s, ok := it.(datum.Symbol)
		if !ok {
			return constant(a.State.Errorf(datum.ErrSyntax, "syntax-rules: literal must be a symbol, got %s", it.Write()))
		}
		literals = append(literals, s)
	}
	ruleExprs := make([]*datum.Expression, 0, len(args)-1)
	for _, it := range args[1:] {
		re, ok := it.(*datum.Expression)
		if !ok {
			return constant(a.State.Errorf(datum.ErrSyntax, "syntax-rules: each rule must be a (pattern template) pair, got %s", it.Write()))
		}
		ruleExprs = append(ruleExprs, re)
	}
	rules, err := macro.Build("syntax-rules", literals, ellipsis, ruleExprs)
	if err != nil {
		return constant(a.State.Errorf(datum.ErrSyntax, "%s", err))
	}
	return constant(rules)
}

// analyzeDefineSyntax installs a runtime macro into the current frame's
// macro table, looked up at application time by walking frames outward
// (spec §4.2 "Runtime (define-syntax)"). Redefining a core-syntax label is
// an error.
func (a *Analyzer) analyzeDefineSyntax(e *datum.Expression) datum.Executor {
	if len(e.Items) != 3 {
		return constant(a.State.Errorf(datum.ErrSyntax, "define-syntax: expected (define-syntax name transformer), got %s", e.Write()))
	}
	name, ok := e.Items[1].(datum.Symbol)
	if !ok {
		return constant(a.State.Errorf(datum.ErrSyntax, "define-syntax: name must be a symbol, got %s", e.Items[1].Write()))
	}
	if _, isCore := lookupCoreSyntax(name); isCore {
		return constant(a.State.Errorf(datum.ErrMacro, "define-syntax: %s is a core-syntax label and cannot be redefined", name))
	}
	transformerExpr, ok := e.Items[2].(*datum.Expression)
	if !ok || !transformerExpr.IsTagged("syntax-rules") {
		return constant(a.State.Errorf(datum.ErrSyntax, "define-syntax: transformer must be a syntax-rules form, got %s", e.Items[2].Write()))
	}
	rulesExec := a.analyzeSyntaxRules(transformerExpr)
	return func(env datum.Environment) datum.Datum {
		rules := rulesExec(env)
		if evaluator.IsError(rules) {
			return rules
		}
		if sr, ok := rules.(*datum.SyntaxRules); ok {
			sr.Label = string(name)
		}
		env.DefineMacro(name, rules)
		return datum.Void
	}
}

// desugarLetSyntax expands (let-syntax/letrec-syntax ((name transformer)...)
// body...) to a let with no value bindings and an inner define-syntax per
// binding, so the macros are scoped to a fresh frame (spec §4.2 "Local
// (let-syntax/letrec-syntax): desugared to a let with inner
// define-syntaxes").
func desugarLetSyntax(e *datum.Expression) (datum.Datum, *datum.Error) {
	args := e.Args()
	if len(args) < 1 {
		return nil, datum.NewError(datum.ErrSyntax, "let-syntax: expected (let-syntax ((name transformer)...) body...), got %s", e.Write())
	}
	bindings, ok := args[0].(*datum.Expression)
	if !ok {
		return nil, datum.NewError(datum.ErrSyntax, "let-syntax: bindings must be a list, got %s", args[0].Write())
	}
	defines := make([]datum.Datum, 0, len(bindings.Items))
	for _, b := range bindings.Items {
		be, ok := b.(*datum.Expression)
		if !ok || len(be.Items) != 2 {
			return nil, datum.NewError(datum.ErrSyntax, "let-syntax: malformed binding: %s", b.Write())
		}
		defines = append(defines, mkExpr(sym("define-syntax"), be.Items[0], be.Items[1]))
	}
	body := append(defines, args[1:]...)
	return mkExpr(append([]datum.Datum{sym("let"), mkExpr()}, body...)...), nil
}

// analyzeCoreSyntax evaluates the transformer in the global environment at
// analysis time and registers the label in the process-global
// analysis-time macro table, consulted before any runtime macro lookup
// (spec §4.2 "Analysis-time (core-syntax)").
func (a *Analyzer) analyzeCoreSyntax(e *datum.Expression) datum.Executor {
	if len(e.Items) != 3 {
		return constant(a.State.Errorf(datum.ErrSyntax, "core-syntax: expected (core-syntax name transformer), got %s", e.Write()))
	}
	name, ok := e.Items[1].(datum.Symbol)
	if !ok {
		return constant(a.State.Errorf(datum.ErrSyntax, "core-syntax: name must be a symbol, got %s", e.Items[1].Write()))
	}
	transformerExpr, ok := e.Items[2].(*datum.Expression)
	if !ok || !transformerExpr.IsTagged("syntax-rules") {
		return constant(a.State.Errorf(datum.ErrSyntax, "core-syntax: transformer must be a syntax-rules form, got %s", e.Items[2].Write()))
	}
	rulesExec := a.analyzeSyntaxRules(transformerExpr)
	rules := rulesExec(a.Global)
	if evaluator.IsError(rules) {
		return constant(rules)
	}
	sr, ok := rules.(*datum.SyntaxRules)
	if !ok {
		return constant(a.State.Errorf(datum.ErrSyntax, "core-syntax: transformer did not produce syntax-rules"))
	}
	sr.Label = string(name)
	defineCoreSyntax(name, sr)
	return constant(datum.Void)
}
