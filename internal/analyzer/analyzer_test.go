package analyzer

import (
	"testing"

	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/environment"
	"github.com/heist-scheme/heist/internal/evaluator"
	"github.com/heist-scheme/heist/internal/numeric"
	"github.com/heist-scheme/heist/internal/reader"
)

// newTestAnalyzer builds an Analyzer over a fresh global environment,
// installing the small set of arithmetic primitives the derived-form tests
// below exercise. The analyzer itself only wires what the core's own
// desugarings need (builtins.go); arithmetic is this test harness's
// responsibility, not the analyzer's.
func newTestAnalyzer() (*Analyzer, datum.Environment) {
	state := evaluator.NewState(config.DefaultProfile())
	global := environment.New()
	a := New(state, global)
	installTestArith(global)
	return a, global
}

func installTestArith(env datum.Environment) {
	def := func(name string, fn datum.PrimitiveFn) {
		env.Define(datum.Symbol(name), &datum.Primitive{Name: name, Fn: fn})
	}
	num := func(d datum.Datum) numeric.Number { return d.(datum.Number).Value }
	def("+", func(args []datum.Datum, _ datum.Environment) datum.Datum {
		acc := numeric.NewInt(0)
		for _, a := range args {
			acc = numeric.Add(acc, num(a))
		}
		return datum.NewNumber(acc)
	})
	def("-", func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) == 1 {
			return datum.NewNumber(numeric.Sub(numeric.NewInt(0), num(args[0])))
		}
		acc := num(args[0])
		for _, a := range args[1:] {
			acc = numeric.Sub(acc, num(a))
		}
		return datum.NewNumber(acc)
	})
	def("*", func(args []datum.Datum, _ datum.Environment) datum.Datum {
		acc := numeric.NewInt(1)
		for _, a := range args {
			acc = numeric.Mul(acc, num(a))
		}
		return datum.NewNumber(acc)
	})
	def("=", func(args []datum.Datum, _ datum.Environment) datum.Datum {
		for i := 1; i < len(args); i++ {
			if numeric.Cmp(num(args[i-1]), num(args[i])) != 0 {
				return datum.False
			}
		}
		return datum.True
	})
	def("<", func(args []datum.Datum, _ datum.Environment) datum.Datum {
		for i := 1; i < len(args); i++ {
			if numeric.Cmp(num(args[i-1]), num(args[i])) >= 0 {
				return datum.False
			}
		}
		return datum.True
	})
}

// run reads src as a sequence of top-level forms, analyzes and evaluates
// each against env in order, and returns the last form's value. It fails
// the test immediately if reading or evaluating errors.
func run(t *testing.T, a *Analyzer, env datum.Environment, src string) datum.Datum {
	t.Helper()
	forms, err := reader.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", src, err)
	}
	var result datum.Datum = datum.Void
	for _, f := range forms {
		exec := a.Analyze(f, false, false)
		result = exec(env)
		if evaluator.IsError(result) {
			t.Fatalf("evaluating %q: %s", src, result.(*datum.Error).Error())
		}
	}
	return result
}

func intVal(t *testing.T, d datum.Datum) string {
	t.Helper()
	n, ok := d.(datum.Number)
	if !ok {
		t.Fatalf("%v is not a number", d)
	}
	return n.Value.String()
}

func TestIfBranchesOnTruthiness(t *testing.T) {
	a, env := newTestAnalyzer()
	if got := run(t, a, env, `(if 1 'yes 'no)`); got != datum.Datum(datum.Symbol("yes")) {
		t.Fatalf("(if 1 'yes 'no) = %v, want yes", got)
	}
	if got := run(t, a, env, `(if #f 'yes 'no)`); got != datum.Datum(datum.Symbol("no")) {
		t.Fatalf("(if #f 'yes 'no) = %v, want no", got)
	}
	if got := run(t, a, env, `(if #f 'yes)`); got != datum.Datum(datum.Void) {
		t.Fatalf("missing alternative = %v, want void", got)
	}
}

func TestAndOrShortCircuitAndReturnLastValue(t *testing.T) {
	a, env := newTestAnalyzer()
	if got := run(t, a, env, `(and 1 2 3)`); intVal(t, got) != "3" {
		t.Fatalf("(and 1 2 3) = %v, want 3", got)
	}
	if got := run(t, a, env, `(and 1 #f 3)`); got != datum.Datum(datum.False) {
		t.Fatalf("(and 1 #f 3) = %v, want #f", got)
	}
	if got := run(t, a, env, `(or #f #f 5)`); intVal(t, got) != "5" {
		t.Fatalf("(or #f #f 5) = %v, want 5", got)
	}
	if got := run(t, a, env, `(or 1 (error "should not run"))`); intVal(t, got) != "1" {
		t.Fatalf("or should short-circuit: got %v", got)
	}
}

func TestDefineAndLambdaApplication(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define (square x) (* x x))`)
	if got := run(t, a, env, `(square 7)`); intVal(t, got) != "49" {
		t.Fatalf("(square 7) = %v, want 49", got)
	}
}

func TestLambdaVariadicCollectsRest(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define (sum-all . xs) (if (null? xs) 0 (+ (car xs) (apply sum-all (cdr xs)))))`)
	if got := run(t, a, env, `(sum-all 1 2 3 4)`); intVal(t, got) != "10" {
		t.Fatalf("(sum-all 1 2 3 4) = %v, want 10", got)
	}
}

func TestSetBangMutatesOuterBinding(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define counter 0)`)
	run(t, a, env, `(define (bump!) (set! counter (+ counter 1)))`)
	run(t, a, env, `(bump!)`)
	run(t, a, env, `(bump!)`)
	if got := run(t, a, env, `counter`); intVal(t, got) != "2" {
		t.Fatalf("counter = %v, want 2", got)
	}
}

func TestBeginReturnsLastValue(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(begin 1 2 3)`)
	if intVal(t, got) != "3" {
		t.Fatalf("(begin 1 2 3) = %v, want 3", got)
	}
}

func TestCondClausesArrowAndElse(t *testing.T) {
	a, env := newTestAnalyzer()
	if got := run(t, a, env, `(cond (#f 'no) (#t 'yes) (else 'fallback))`); got != datum.Datum(datum.Symbol("yes")) {
		t.Fatalf("cond first matching clause = %v, want yes", got)
	}
	if got := run(t, a, env, `(cond (#f 'no) (else 'fallback))`); got != datum.Datum(datum.Symbol("fallback")) {
		t.Fatalf("cond else = %v, want fallback", got)
	}
	if got := run(t, a, env, `(cond (5 => (lambda (x) (* x x))))`); intVal(t, got) != "25" {
		t.Fatalf("cond => clause = %v, want 25", got)
	}
}

func TestCaseDispatchesOnMemvEquality(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(case (* 2 3) ((2 3 5 7) 'prime) ((1 4 6 8 9) 'composite) (else 'other))`)
	if got != datum.Datum(datum.Symbol("composite")) {
		t.Fatalf("case dispatch = %v, want composite", got)
	}
}

func TestLetFamilyScoping(t *testing.T) {
	a, env := newTestAnalyzer()
	if got := run(t, a, env, `(let ((x 1) (y 2)) (+ x y))`); intVal(t, got) != "3" {
		t.Fatalf("let = %v, want 3", got)
	}
	if got := run(t, a, env, `(let* ((x 1) (y (+ x 1))) (+ x y))`); intVal(t, got) != "3" {
		t.Fatalf("let* = %v, want 3", got)
	}
	if got := run(t, a, env, `(letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1)))))
	                                   (odd? (lambda (n) (if (= n 0) #f (even? (- n 1))))))
	                             (even? 10))`); got != datum.Datum(datum.True) {
		t.Fatalf("letrec mutual recursion = %v, want #t", got)
	}
}

func TestNamedLetLoops(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(let loop ((i 0) (acc 0))
	                          (if (= i 5) acc (loop (+ i 1) (+ acc i))))`)
	if intVal(t, got) != "10" {
		t.Fatalf("named let sum 0..4 = %v, want 10", got)
	}
}

func TestDoLoopsAndAccumulates(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(do ((i 0 (+ i 1)) (acc 0 (+ acc i))) ((= i 5) acc))`)
	if intVal(t, got) != "10" {
		t.Fatalf("do sum 0..4 = %v, want 10", got)
	}
}

func TestDelayForceMemoizes(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define calls 0)`)
	run(t, a, env, `(define p (delay (begin (set! calls (+ calls 1)) 42)))`)
	first := run(t, a, env, `(force p)`)
	second := run(t, a, env, `(force p)`)
	if intVal(t, first) != "42" || intVal(t, second) != "42" {
		t.Fatalf("force results: %v, %v, want 42 both times", first, second)
	}
	if got := run(t, a, env, `calls`); intVal(t, got) != "1" {
		t.Fatalf("calls = %v, want 1 (delay should only evaluate its body once)", got)
	}
}

func TestSconsStreamBuildsLazyPairs(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define s (stream 1 2 3))`)
	if got := run(t, a, env, `(force (car s))`); intVal(t, got) != "1" {
		t.Fatalf("first stream element = %v, want 1", got)
	}
	if got := run(t, a, env, `(force (car (force (cdr s))))`); intVal(t, got) != "2" {
		t.Fatalf("second stream element = %v, want 2", got)
	}
}

func TestQuoteConvertsDottedPairsAndVectors(t *testing.T) {
	a, env := newTestAnalyzer()
	if got := run(t, a, env, `(quote (1 . 2))`); got.Write() != "(1 . 2)" {
		t.Fatalf("quoted dotted pair = %s, want (1 . 2)", got.Write())
	}
	if got := run(t, a, env, `(quote #(1 2 3))`); got.Write() != "#(1 2 3)" {
		t.Fatalf("quoted vector = %s, want #(1 2 3)", got.Write())
	}
}

func TestQuasiquoteSplicesUnquotes(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define x 5)`)
	got := run(t, a, env, "`(a ,x c)")
	if got.Write() != "(a 5 c)" {
		t.Fatalf("quasiquote unquote = %s, want (a 5 c)", got.Write())
	}
	got = run(t, a, env, "`(1 ,@(list 2 3) 4)")
	if got.Write() != "(1 2 3 4)" {
		t.Fatalf("quasiquote unquote-splicing = %s, want (1 2 3 4)", got.Write())
	}
}

func TestDefineSyntaxExpandsAtApplicationTime(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(define-syntax my-unless
	                   (syntax-rules ()
	                     ((_ test body) (if test #f body))))`)
	if got := run(t, a, env, `(my-unless #f 'ran)`); got != datum.Datum(datum.Symbol("ran")) {
		t.Fatalf("(my-unless #f 'ran) = %v, want ran", got)
	}
	if got := run(t, a, env, `(my-unless #t 'ran)`); got != datum.Datum(datum.False) {
		t.Fatalf("(my-unless #t 'ran) = %v, want #f", got)
	}
}

func TestLetSyntaxScopesMacroToBody(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(let-syntax ((twice (syntax-rules () ((_ e) (+ e e)))))
	                          (twice 21))`)
	if intVal(t, got) != "42" {
		t.Fatalf("let-syntax twice 21 = %v, want 42", got)
	}
}

func TestCoreSyntaxDefinesAnExpandableSwapMacro(t *testing.T) {
	a, env := newTestAnalyzer()
	run(t, a, env, `(core-syntax my-swap-test-core
	                   (syntax-rules ()
	                     ((_ a b) (let ((tmp a)) (set! a b) (set! b tmp)))))`)
	run(t, a, env, `(define p 1)`)
	run(t, a, env, `(define q 2)`)
	run(t, a, env, `(my-swap-test-core p q)`)
	if got := run(t, a, env, `p`); intVal(t, got) != "2" {
		t.Fatalf("p after swap = %v, want 2", got)
	}
	if got := run(t, a, env, `q`); intVal(t, got) != "1" {
		t.Fatalf("q after swap = %v, want 1", got)
	}
}

func TestScmToCpsEvaluatesOrdinaryExpressions(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(scm->cps (+ 1 2))`)
	if intVal(t, got) != "3" {
		t.Fatalf("(scm->cps (+ 1 2)) = %v, want 3", got)
	}
}

func TestScmToCpsCallCCResumesWithSuppliedValue(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(scm->cps (+ 1 (call/cc (lambda (k) (k 10)))))`)
	if intVal(t, got) != "11" {
		t.Fatalf("call/cc resuming normally = %v, want 11", got)
	}
}

func TestScmToCpsCallCCEscapesDiscardingRemainingWork(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(scm->cps (+ 1 (call/cc (lambda (k) (k 10) 999))))`)
	if intVal(t, got) != "11" {
		t.Fatalf("call/cc escape = %v, want 11 (999 must never be reached)", got)
	}
}

func TestCpsQuoteReturnsTransformedSyntaxAsData(t *testing.T) {
	a, env := newTestAnalyzer()
	got := run(t, a, env, `(cps-quote (+ 1 2))`)
	if _, ok := got.(*datum.Pair); !ok {
		if got.Kind() != datum.KindEmptyList {
			t.Fatalf("cps-quote should yield list-shaped syntax data, got %s", got.Write())
		}
	}
}

func TestUnboundVariableErrors(t *testing.T) {
	a, env := newTestAnalyzer()
	forms, err := reader.ReadAll(`never-defined-anywhere`)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	exec := a.Analyze(forms[0], false, false)
	result := exec(env)
	if !evaluator.IsError(result) {
		t.Fatal("referencing an unbound variable should error")
	}
	e, ok := result.(*datum.Error)
	if !ok || e.Category != datum.ErrUnbound {
		t.Fatalf("expected an ErrUnbound error, got %v", result)
	}
}

func TestLetrecReferencingBindingBeforeAssignmentErrors(t *testing.T) {
	a, env := newTestAnalyzer()
	forms, err := reader.ReadAll(`(letrec ((x x)) x)`)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	exec := a.Analyze(forms[0], false, false)
	result := exec(env)
	if !evaluator.IsError(result) {
		t.Fatal("referencing a letrec binding before it is assigned should error")
	}
}

func TestAnalyzeIsIdempotentAcrossRepeatedCalls(t *testing.T) {
	// Running the same analyzed Executor twice must behave the same way
	// both times: no call-site state should leak between runs.
	a, env := newTestAnalyzer()
	run(t, a, env, `(define (double x) (* x 2))`)
	exec := a.Analyze(mustParseOne(t, `(double 21)`), false, false)
	first := exec(env)
	second := exec(env)
	if intVal(t, first) != "42" || intVal(t, second) != "42" {
		t.Fatalf("repeated execution: %v, %v, want 42 both times", first, second)
	}
}

func mustParseOne(t *testing.T, src string) datum.Datum {
	t.Helper()
	forms, err := reader.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadAll(%q): got %d forms, want 1", src, len(forms))
	}
	return forms[0]
}
