package analyzer

import (
	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

// installBuiltins registers the handful of primitives the core itself
// needs (spec §1: "apply, force, eval, list construction"), plus memv
// (case's expansion target) and the small set of predicates/equality
// primitives the desugared derived forms depend on. Anything beyond this
// minimal set is out of scope (spec §1 Non-goals).
func (a *Analyzer) installBuiltins(env datum.Environment) {
	def := func(name string, fn datum.PrimitiveFn, requiresEnv bool) {
		env.Define(datum.Symbol(name), &datum.Primitive{Name: name, Fn: fn, RequiresEnvironment: requiresEnv})
	}
	def("apply", a.primApply, true)
	def("force", a.primForce, false)
	def("eval", a.primEval, true)
	def("cons", primCons, false)
	def("car", a.primCar, false)
	def("cdr", a.primCdr, false)
	def("list", primList, false)
	def("append", a.primAppend, false)
	def("vector", primVector, false)
	def("memv", primMemv, false)
	def("eq?", a.primEq, false)
	def("eqv?", a.primEqv, false)
	def("equal?", a.primEqual, false)
	def("not", a.primNot, false)
	def("null?", a.primPredicate1("null?", func(d datum.Datum) bool { _, ok := d.(datum.EmptyListType); return ok }), false)
	def("pair?", a.primPredicate1("pair?", func(d datum.Datum) bool { _, ok := d.(*datum.Pair); return ok }), false)
	def("error", a.primError, false)
	def("jump!", a.primJumpBang, false)
	def("catch-jump", a.primCatchJump, true)
	def("inlines-call", a.primInlinesCall, false)
	def("call/ce", a.primCallCE, true)
	def("set-falsey!", a.primSetFalsey, false)
	def("set-truthy!", a.primSetTruthy, false)
	env.Define(datum.Symbol(config.ReservedPrefix+"undefined"), datum.Undefined)
}

func (a *Analyzer) primApply(args []datum.Datum, env datum.Environment) datum.Datum {
	if len(args) < 1 {
		return a.State.Errorf(datum.ErrArity, "apply: expected at least a procedure argument")
	}
	proc := args[0]
	var callArgs []datum.Datum
	if len(args) > 1 {
		callArgs = append(callArgs, args[1:len(args)-1]...)
		last := args[len(args)-1]
		shape, items, _ := datum.ClassifyList(last)
		if shape != datum.ListOK {
			return a.State.Errorf(datum.ErrType, "apply: last argument must be a proper list, got %s", last.Write())
		}
		callArgs = append(callArgs, items...)
	}
	return a.State.Apply(proc, callArgs, env, false)
}

// primForce forces a Delay; a non-promise argument is returned unchanged,
// the common permissive behavior for force applied outside a delay.
func (a *Analyzer) primForce(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "force: expected exactly one argument")
	}
	d, ok := args[0].(*datum.Delay)
	if !ok {
		return args[0]
	}
	return d.Get()
}

// primEval analyzes and evaluates expr in the calling environment. There
// is no environment-as-value datum kind, so eval always runs in the
// caller's lexical environment rather than accepting an explicit second
// argument.
func (a *Analyzer) primEval(args []datum.Datum, env datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "eval: expected exactly one argument")
	}
	exec := a.Analyze(args[0], false, false)
	return exec(env)
}

func primCons(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 2 {
		return datum.NewError(datum.ErrArity, "cons: expected exactly two arguments")
	}
	return datum.Cons(args[0], args[1])
}

func (a *Analyzer) primCar(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "car: expected exactly one argument")
	}
	p, ok := args[0].(*datum.Pair)
	if !ok {
		return a.State.Errorf(datum.ErrType, "car: expected a pair, got %s", args[0].Write())
	}
	return p.Car
}

func (a *Analyzer) primCdr(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "cdr: expected exactly one argument")
	}
	p, ok := args[0].(*datum.Pair)
	if !ok {
		return a.State.Errorf(datum.ErrType, "cdr: expected a pair, got %s", args[0].Write())
	}
	return p.Cdr
}

func primList(args []datum.Datum, _ datum.Environment) datum.Datum {
	return datum.SliceToList(args)
}

func (a *Analyzer) primAppend(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) == 0 {
		return datum.EmptyList
	}
	var items []datum.Datum
	for _, d := range args[:len(args)-1] {
		shape, elems, _ := datum.ClassifyList(d)
		if shape != datum.ListOK {
			return a.State.Errorf(datum.ErrType, "append: every argument but the last must be a proper list, got %s", d.Write())
		}
		items = append(items, elems...)
	}
	return datum.SliceToImproperList(items, args[len(args)-1])
}

func primVector(args []datum.Datum, _ datum.Environment) datum.Datum {
	items := make([]datum.Datum, len(args))
	copy(items, args)
	return datum.NewVector(items)
}

func primMemv(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 2 {
		return datum.NewError(datum.ErrArity, "memv: expected exactly two arguments")
	}
	obj, list := args[0], args[1]
	for {
		p, ok := list.(*datum.Pair)
		if !ok {
			return datum.False
		}
		if datum.Eqv(obj, p.Car) {
			return list
		}
		list = p.Cdr
	}
}

func (a *Analyzer) primEq(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 2 {
		return a.State.Errorf(datum.ErrArity, "eq?: expected exactly two arguments")
	}
	return datum.Boolean(datum.Eq(args[0], args[1]))
}

func (a *Analyzer) primEqv(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 2 {
		return a.State.Errorf(datum.ErrArity, "eqv?: expected exactly two arguments")
	}
	return datum.Boolean(datum.Eqv(args[0], args[1]))
}

func (a *Analyzer) primEqual(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 2 {
		return a.State.Errorf(datum.ErrArity, "equal?: expected exactly two arguments")
	}
	return datum.Boolean(datum.Equal(args[0], args[1]))
}

func (a *Analyzer) primNot(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "not: expected exactly one argument")
	}
	return datum.Boolean(!a.State.IsTruthy(args[0]))
}

// primPredicate1 builds a one-argument type predicate primitive.
func (a *Analyzer) primPredicate1(name string, test func(datum.Datum) bool) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return a.State.Errorf(datum.ErrArity, "%s: expected exactly one argument", name)
		}
		return datum.Boolean(test(args[0]))
	}
}

// primError raises a runtime error carrying the given message and
// irritants (spec §6 "Error signaling is by throwing an error value that
// includes an identifying tag and human-readable context").
func (a *Analyzer) primError(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) == 0 {
		return a.State.Errorf(datum.ErrType, "error")
	}
	msg := args[0].Display()
	for _, irritant := range args[1:] {
		msg += " " + irritant.Write()
	}
	return a.State.Errorf(datum.ErrType, "%s", msg)
}

// primJumpBang raises a single-shot non-local return carrying its argument
// (spec §5 "jump! stores its argument in a process-global slot and throws
// Jump"), unwinding to the nearest catch-jump.
func (a *Analyzer) primJumpBang(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "jump!: expected exactly one argument")
	}
	return a.State.NewJump(args[0])
}

// primCatchJump calls its zero-argument thunk and converts the innermost
// jump! that escapes it into a value (spec §5 "catch-jump converts the
// innermost Jump into the stored value").
func (a *Analyzer) primCatchJump(args []datum.Datum, env datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "catch-jump: expected exactly one argument, a zero-argument thunk")
	}
	return a.State.CatchJump(args[0], env)
}

// primInlinesCall flags a compound procedure so every future call to it
// splices the caller's frames in for dynamic scoping (spec §4.4 point 2,
// §3 Procedure "inlines-call? flag").
func (a *Analyzer) primInlinesCall(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "inlines-call: expected exactly one argument, a compound procedure")
	}
	proc, ok := args[0].(*datum.Procedure)
	if !ok {
		return a.State.Errorf(datum.ErrType, "inlines-call: expected a compound procedure, got %s", args[0].Write())
	}
	proc.InlinesCall = true
	return proc
}

// primCallCE applies proc to the remaining arguments in a call/ce context:
// the caller's frames are spliced in for this call regardless of whether
// proc itself is marked inlines-call (spec §4.4 point 2: "the procedure is
// marked inlines-call or the applicator is in a call/ce context"). The
// splice is scoped to this one call via a shallow copy, leaving proc's own
// inlines-call? flag untouched for ordinary calls to it elsewhere.
func (a *Analyzer) primCallCE(args []datum.Datum, env datum.Environment) datum.Datum {
	if len(args) < 1 {
		return a.State.Errorf(datum.ErrArity, "call/ce: expected at least a procedure argument")
	}
	proc, ok := args[0].(*datum.Procedure)
	if !ok {
		return a.State.Errorf(datum.ErrType, "call/ce: expected a compound procedure, got %s", args[0].Write())
	}
	forced := *proc
	forced.InlinesCall = true
	return a.State.Apply(&forced, args[1:], env, false)
}

// primSetFalsey/primSetTruthy bind State's falsey-set mutators as
// primitives (spec §8 property 6: "set-falsey!"/"set-truthy!").
func (a *Analyzer) primSetFalsey(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "set-falsey!: expected exactly one argument")
	}
	return a.State.SetFalsey(args[0])
}

func (a *Analyzer) primSetTruthy(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return a.State.Errorf(datum.ErrArity, "set-truthy!: expected exactly one argument")
	}
	return a.State.SetTruthy(args[0])
}
