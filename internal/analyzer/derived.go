package analyzer

import (
	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

// desugarCond expands to nested if, supporting else (must be last) and =>
// arrow clauses (spec §4.1 cond).
func desugarCond(clauses []datum.Datum) (datum.Datum, *datum.Error) {
	if len(clauses) == 0 {
		return datum.Void, nil
	}
	clauseExpr, ok := clauses[0].(*datum.Expression)
	if !ok || len(clauseExpr.Items) == 0 {
		return nil, datum.NewError(datum.ErrSyntax, "cond: malformed clause: %s", clauses[0].Write())
	}
	rest, rerr := desugarCond(clauses[1:])
	if rerr != nil {
		return nil, rerr
	}
	if headSym, ok := clauseExpr.Items[0].(datum.Symbol); ok && headSym == "else" {
		if len(clauses) != 1 {
			return nil, datum.NewError(datum.ErrSyntax, "cond: else clause must be last")
		}
		return mkExpr(append([]datum.Datum{sym("begin")}, clauseExpr.Items[1:]...)...), nil
	}
	test := clauseExpr.Items[0]
	if len(clauseExpr.Items) == 3 {
		if arrow, ok := clauseExpr.Items[1].(datum.Symbol); ok && arrow == "=>" {
			tmp := sym(config.ReservedPrefix + "cond-tmp")
			proc := clauseExpr.Items[2]
			return mkExpr(sym("let"), mkExpr(mkExpr(tmp, test)),
				mkExpr(sym("if"), tmp, mkExpr(proc, tmp), rest)), nil
		}
	}
	if len(clauseExpr.Items) == 1 {
		tmp := sym(config.ReservedPrefix + "cond-tmp")
		return mkExpr(sym("let"), mkExpr(mkExpr(tmp, test)), mkExpr(sym("if"), tmp, tmp, rest)), nil
	}
	body := append([]datum.Datum{sym("begin")}, clauseExpr.Items[1:]...)
	return mkExpr(sym("if"), test, mkExpr(body...), rest), nil
}

// desugarCase expands to cond with memv equality against each clause's
// literal keys (spec §4.1 case).
func desugarCase(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) < 1 {
		return nil, datum.NewError(datum.ErrSyntax, "case: expected (case key clause...)")
	}
	key := args[0]
	tmp := sym(config.ReservedPrefix + "case-tmp")
	condClauses := make([]datum.Datum, 0, len(args)-1)
	for _, c := range args[1:] {
		ce, ok := c.(*datum.Expression)
		if !ok || len(ce.Items) == 0 {
			return nil, datum.NewError(datum.ErrSyntax, "case: malformed clause: %s", c.Write())
		}
		if headSym, ok := ce.Items[0].(datum.Symbol); ok && headSym == "else" {
			condClauses = append(condClauses, mkExpr(append([]datum.Datum{sym("else")}, ce.Items[1:]...)...))
			continue
		}
		keys, ok := ce.Items[0].(*datum.Expression)
		if !ok {
			return nil, datum.NewError(datum.ErrSyntax, "case: clause keys must be a list, got %s", ce.Items[0].Write())
		}
		test := mkExpr(sym("memv"), tmp, mkExpr(sym("quote"), keys))
		condClauses = append(condClauses, mkExpr(append([]datum.Datum{test}, ce.Items[1:]...)...))
	}
	cond, err := desugarCond(condClauses)
	if err != nil {
		return nil, err
	}
	return mkExpr(sym("let"), mkExpr(mkExpr(tmp, key)), cond), nil
}

// desugarLet handles both plain and named let, each expanding to a lambda
// application; named let expands through letrec so the loop procedure can
// call itself (spec §4.1 let family).
func desugarLet(e *datum.Expression) (datum.Datum, *datum.Error) {
	args := e.Args()
	if len(args) < 1 {
		return nil, datum.NewError(datum.ErrSyntax, "let: expected (let [name] ((var val)...) body...), got %s", e.Write())
	}
	if name, ok := args[0].(datum.Symbol); ok {
		if len(args) < 2 {
			return nil, datum.NewError(datum.ErrSyntax, "let: named let missing bindings")
		}
		names, vals, err := letBindingPairs(args[1])
		if err != nil {
			return nil, err
		}
		body := args[2:]
		lambdaForm := mkExpr(append([]datum.Datum{sym("lambda"), mkExpr(names...)}, body...)...)
		call := mkExpr(append([]datum.Datum{name}, vals...)...)
		return mkExpr(sym("letrec"), mkExpr(mkExpr(name, lambdaForm)), call), nil
	}
	names, vals, err := letBindingPairs(args[0])
	if err != nil {
		return nil, err
	}
	body := args[1:]
	lambdaForm := mkExpr(append([]datum.Datum{sym("lambda"), mkExpr(names...)}, body...)...)
	return mkExpr(append([]datum.Datum{lambdaForm}, vals...)...), nil
}

func letBindingPairs(syntax datum.Datum) (names, vals []datum.Datum, err *datum.Error) {
	bindings, ok := syntax.(*datum.Expression)
	if !ok {
		return nil, nil, datum.NewError(datum.ErrSyntax, "let: bindings must be a list, got %s", syntax.Write())
	}
	for _, b := range bindings.Items {
		be, ok := b.(*datum.Expression)
		if !ok || len(be.Items) != 2 {
			return nil, nil, datum.NewError(datum.ErrSyntax, "let: malformed binding: %s", b.Write())
		}
		names = append(names, be.Items[0])
		vals = append(vals, be.Items[1])
	}
	return names, vals, nil
}

// desugarLetStar expands to nested lets, one binding at a time, so each
// initializer sees the previous bindings (spec §4.1 let family).
func desugarLetStar(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) < 1 {
		return nil, datum.NewError(datum.ErrSyntax, "let*: expected (let* ((var val)...) body...)")
	}
	bindings, ok := args[0].(*datum.Expression)
	if !ok {
		return nil, datum.NewError(datum.ErrSyntax, "let*: bindings must be a list, got %s", args[0].Write())
	}
	body := args[1:]
	if len(bindings.Items) == 0 {
		return mkExpr(append([]datum.Datum{sym("let"), mkExpr()}, body...)...), nil
	}
	first := bindings.Items[0]
	restBindings := mkExpr(bindings.Items[1:]...)
	inner := mkExpr(append([]datum.Datum{sym("let*"), restBindings}, body...)...)
	return mkExpr(sym("let"), mkExpr(first), inner), nil
}

// desugarLetrec pre-binds every name to the datum.Undefined sentinel in a
// let, then set!s each within the body; referencing a not-yet-set name
// errors via analyzeVariable's undefined check (spec §4.1 let family).
func desugarLetrec(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) < 1 {
		return nil, datum.NewError(datum.ErrSyntax, "letrec: expected (letrec ((var val)...) body...)")
	}
	bindings, ok := args[0].(*datum.Expression)
	if !ok {
		return nil, datum.NewError(datum.ErrSyntax, "letrec: bindings must be a list, got %s", args[0].Write())
	}
	preBindings := make([]datum.Datum, 0, len(bindings.Items))
	sets := make([]datum.Datum, 0, len(bindings.Items))
	for _, b := range bindings.Items {
		be, ok := b.(*datum.Expression)
		if !ok || len(be.Items) != 2 {
			return nil, datum.NewError(datum.ErrSyntax, "letrec: malformed binding: %s", b.Write())
		}
		preBindings = append(preBindings, mkExpr(be.Items[0], datum.Undefined))
		sets = append(sets, mkExpr(sym("set!"), be.Items[0], be.Items[1]))
	}
	body := append(sets, args[1:]...)
	return mkExpr(append([]datum.Datum{sym("let"), mkExpr(preBindings...)}, body...)...), nil
}

// desugarDo expands to a letrec of a self-calling loop lambda: the loop
// variables as parameters, an if breaking on the test, the commands, and a
// recursive call with each variable's step expression (spec §4.1 do). A
// binding without a step expression keeps its value across iterations.
func desugarDo(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) < 2 {
		return nil, datum.NewError(datum.ErrSyntax, "do: expected (do ((var init [step])...) (test expr...) body...)")
	}
	bindings, ok := args[0].(*datum.Expression)
	if !ok {
		return nil, datum.NewError(datum.ErrSyntax, "do: bindings must be a list, got %s", args[0].Write())
	}
	testClause, ok := args[1].(*datum.Expression)
	if !ok || len(testClause.Items) == 0 {
		return nil, datum.NewError(datum.ErrSyntax, "do: test clause must be (test expr...), got %s", args[1].Write())
	}
	vars := make([]datum.Datum, 0, len(bindings.Items))
	inits := make([]datum.Datum, 0, len(bindings.Items))
	steps := make([]datum.Datum, 0, len(bindings.Items))
	for _, b := range bindings.Items {
		be, ok := b.(*datum.Expression)
		if !ok || len(be.Items) < 2 || len(be.Items) > 3 {
			return nil, datum.NewError(datum.ErrSyntax, "do: malformed binding: %s", b.Write())
		}
		vars = append(vars, be.Items[0])
		inits = append(inits, be.Items[1])
		if len(be.Items) == 3 {
			steps = append(steps, be.Items[2])
		} else {
			steps = append(steps, be.Items[0])
		}
	}
	loop := sym(config.ReservedPrefix + "do-loop")
	test := testClause.Items[0]
	resultBody := mkExpr(append([]datum.Datum{sym("begin")}, testClause.Items[1:]...)...)
	recur := mkExpr(append([]datum.Datum{loop}, steps...)...)
	loopBody := mkExpr(append(append([]datum.Datum{sym("begin")}, args[2:]...), recur)...)
	ifForm := mkExpr(sym("if"), test, resultBody, loopBody)
	lambdaForm := mkExpr(sym("lambda"), mkExpr(vars...), ifForm)
	call := mkExpr(append([]datum.Datum{loop}, inits...)...)
	return mkExpr(sym("letrec"), mkExpr(mkExpr(loop, lambdaForm)), call), nil
}

// analyzeDelay constructs a Delay value capturing the analyzed expression
// and the environment it is forced in (spec §4.1 delay).
func (a *Analyzer) analyzeDelay(e *datum.Expression, cpsBlock bool) datum.Executor {
	if len(e.Items) != 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "delay: expected (delay expr), got %s", e.Write()))
	}
	bodyExec := a.Analyze(e.Items[1], false, cpsBlock)
	return func(env datum.Environment) datum.Datum {
		return &datum.Delay{Body: bodyExec, Env: env}
	}
}

// desugarScons builds a stream cell from two delayed expressions (spec
// §4.1 scons/stream: "scons desugars to (cons (delay a) (delay b))").
func desugarScons(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) != 2 {
		return nil, datum.NewError(datum.ErrSyntax, "scons: expected (scons a b)")
	}
	return mkExpr(sym("cons"), mkExpr(sym("delay"), args[0]), mkExpr(sym("delay"), args[1])), nil
}

// desugarStream expands to nested scons (spec §4.1 scons/stream: "stream
// desugars to nested scons").
func desugarStream(args []datum.Datum) (datum.Datum, *datum.Error) {
	if len(args) == 0 {
		return datum.EmptyList, nil
	}
	rest, err := desugarStream(args[1:])
	if err != nil {
		return nil, err
	}
	return mkExpr(sym("scons"), args[0], rest), nil
}
