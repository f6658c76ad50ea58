// Package analyzer walks a syntax tree and produces an Executor: a
// function from environment to datum (spec.md §4.1 "analyze(syntax,
// tail-call?, cps-block?) → Executor"). Dispatch is by the syntax form's
// head symbol; several forms reduce to other forms before re-analysis
// (and/or/cond/case/let family/do/quasiquote), mirroring the teacher's
// internal/evaluator/expressions_*.go and statements_*.go dispatch-by-tag
// convention generalized from funxy's bytecode-emitting analysis to a
// direct executor-returning one.
package analyzer

import (
	"sync"

	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
)

// Analyzer owns the evaluator State an analyzed program will run against
// and the global environment core-syntax definitions are evaluated in
// (spec §4.1 "core-syntax evaluates the definition in the global
// environment at analysis time").
type Analyzer struct {
	State  *evaluator.State
	Global datum.Environment
}

// New builds an Analyzer over state and the global environment, and
// installs the handful of primitives the core itself needs (spec §1:
// "apply, force, eval, list construction").
func New(state *evaluator.State, global datum.Environment) *Analyzer {
	a := &Analyzer{State: state, Global: global}
	a.installBuiltins(global)
	return a
}

// coreSyntaxTable is the analysis-time macro registry core-syntax installs
// into (spec §4.2 "Analysis-time (core-syntax): registered in a global
// table consulted during analysis"). It is process-global like the
// gensym counters and reader-syntax tables (spec §5).
var coreSyntaxMu sync.RWMutex
var coreSyntaxTable = map[datum.Symbol]*datum.SyntaxRules{}

func lookupCoreSyntax(name datum.Symbol) (*datum.SyntaxRules, bool) {
	coreSyntaxMu.RLock()
	defer coreSyntaxMu.RUnlock()
	rule, ok := coreSyntaxTable[name]
	return rule, ok
}

func defineCoreSyntax(name datum.Symbol, rule *datum.SyntaxRules) {
	coreSyntaxMu.Lock()
	coreSyntaxTable[name] = rule
	coreSyntaxMu.Unlock()
}

// Analyze is the entry point: dispatch by syntax's Go type, then by head
// symbol for expressions (spec §4.1).
func (a *Analyzer) Analyze(syntax datum.Datum, tail, cpsBlock bool) datum.Executor {
	switch v := syntax.(type) {
	case *datum.Expression:
		return a.analyzeExpression(v, tail, cpsBlock)
	case datum.Symbol:
		return a.analyzeVariable(v)
	default:
		// Self-evaluating: number/string/char/pair-value/vector/boolean/
		// syntax-object/void (spec §4.1 "Self-evaluating").
		return constant(syntax)
	}
}

func constant(value datum.Datum) datum.Executor {
	return func(datum.Environment) datum.Datum { return value }
}

func (a *Analyzer) analyzeVariable(name datum.Symbol) datum.Executor {
	return func(env datum.Environment) datum.Datum {
		v, ok := env.Lookup(name)
		if !ok {
			return a.State.Errorf(datum.ErrUnbound, "unbound variable: %s", name)
		}
		if _, isUndefined := v.(datum.UndefinedType); isUndefined {
			return a.State.Errorf(datum.ErrUndefined, "reference to letrec-bound variable before assignment: %s", name)
		}
		return v
	}
}

// analyzeExpression dispatches an Expression by its head symbol. Order
// matters: forms that reduce to other forms (and/or/cond/case/let
// family/do/quasiquote) are expanded and re-analyzed rather than executed
// directly (spec §4.1).
func (a *Analyzer) analyzeExpression(e *datum.Expression, tail, cpsBlock bool) datum.Executor {
	if len(e.Items) == 0 {
		return constant(datum.EmptyList)
	}
	head, isHead := e.Head()
	if !isHead {
		return a.analyzeApplication(e, tail, cpsBlock)
	}
	switch head {
	case "quote":
		return a.analyzeQuote(e)
	case "quasiquote":
		return a.analyzeQuasiquote(e, cpsBlock)
	case "if":
		return a.analyzeIf(e, tail, cpsBlock)
	case "and":
		return a.Analyze(desugarAnd(e.Args()), tail, cpsBlock)
	case "or":
		return a.Analyze(desugarOr(e.Args()), tail, cpsBlock)
	case "set!":
		return a.analyzeSet(e, cpsBlock)
	case "define":
		return a.analyzeDefine(e, cpsBlock)
	case "lambda":
		return a.analyzeLambda(e, cpsBlock)
	case "begin":
		return a.analyzeBegin(e.Args(), tail, cpsBlock)
	case "cond":
		d, err := desugarCond(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "case":
		d, err := desugarCase(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "let":
		d, err := desugarLet(e)
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "let*":
		d, err := desugarLetStar(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "letrec", "letrec*":
		d, err := desugarLetrec(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "do":
		d, err := desugarDo(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "delay":
		return a.analyzeDelay(e, cpsBlock)
	case "scons":
		d, err := desugarScons(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "stream":
		d, err := desugarStream(e.Args())
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "syntax-rules":
		return a.analyzeSyntaxRules(e)
	case "define-syntax":
		return a.analyzeDefineSyntax(e)
	case "let-syntax", "letrec-syntax":
		d, err := desugarLetSyntax(e)
		if err != nil {
			return constant(err)
		}
		return a.Analyze(d, tail, cpsBlock)
	case "core-syntax":
		return a.analyzeCoreSyntax(e)
	case "scm->cps":
		return a.analyzeScmToCps(e, tail)
	case "cps-quote":
		return a.analyzeCpsQuote(e)
	default:
		return a.analyzeApplication(e, tail, cpsBlock)
	}
}
