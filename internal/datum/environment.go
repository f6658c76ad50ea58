package datum

// Environment is the minimal contract Executors, Procedures, and Delays
// close over. The concrete frame-chain implementation — with its
// sync.RWMutex-guarded store, macro tables, and dynamic-scope splicing —
// lives in package environment; it is kept out of package datum only to
// avoid an import cycle (Procedure/Delay/Executor are data, Environment's
// implementation is behavior). Defining the interface at the consumer
// (datum) rather than the implementer (environment) mirrors how the
// teacher repo keeps Object and Environment in the same package — here
// the two-package split forces the seam to be explicit instead.
type Environment interface {
	// Lookup walks frames outward looking for name.
	Lookup(name Symbol) (Datum, bool)
	// Define creates or updates name in the leaf frame.
	Define(name Symbol, value Datum)
	// SetBang mutates the binding in the frame where name is found,
	// walking outward; reports whether a binding was found.
	SetBang(name Symbol, value Datum) bool
	// Extend returns a new environment with a fresh leaf frame whose
	// outer is this environment.
	Extend() Environment
	// DefineMacro installs a macro in the leaf frame's macro table.
	DefineMacro(name Symbol, rule Datum)
	// LookupMacro walks frames outward looking for a macro named name.
	LookupMacro(name Symbol) (Datum, bool)
}

// Executor is a function from environment to datum, produced by analyze
// (spec §4.1: "analyze(syntax, tail-call?, cps-block?) → Executor, where
// Executor = fn(&Environment) → Datum").
type Executor func(Environment) Datum
