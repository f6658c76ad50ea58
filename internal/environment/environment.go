// Package environment implements the frame chain that maps symbols to
// value cells and macro bindings (spec.md §3 Environment, §9 "Environment
// as linked frames"). It mirrors the teacher repo's
// internal/evaluator/environment.go — a sync.RWMutex-guarded store plus an
// outer pointer — generalized with a parallel macro table per frame and
// the dynamic-scope splicing the spec's applicator needs for
// inlines-call/call/ce (spec §4.4 point 2, §9 Open Questions).
package environment

import (
	"sync"

	"github.com/heist-scheme/heist/internal/datum"
)

// Environment is one frame in the chain, leaf frame first. store and
// macros are shared pointers: cloning a frame's link (see Splice) keeps
// the same underlying maps so mutation through any clone is visible
// everywhere, exactly like the teacher's map-backed frame.
type Environment struct {
	mu     *sync.RWMutex
	store  map[datum.Symbol]datum.Datum
	macros map[datum.Symbol]datum.Datum
	outer  *Environment
}

// New creates a fresh top-level (global) environment with no outer frame.
func New() *Environment {
	return &Environment{
		mu:     &sync.RWMutex{},
		store:  make(map[datum.Symbol]datum.Datum),
		macros: make(map[datum.Symbol]datum.Datum),
	}
}

// Extend returns a new environment with a fresh leaf frame enclosing e.
func (e *Environment) Extend() datum.Environment {
	return &Environment{
		mu:     &sync.RWMutex{},
		store:  make(map[datum.Symbol]datum.Datum),
		macros: make(map[datum.Symbol]datum.Datum),
		outer:  e,
	}
}

// Lookup walks frames outward looking for name (spec §3: "Lookups walk
// frames outward").
func (e *Environment) Lookup(name datum.Symbol) (datum.Datum, bool) {
	for f := e; f != nil; f = f.outer {
		f.mu.RLock()
		v, ok := f.store[name]
		f.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Define creates or updates name in the leaf frame (spec §3: "define
// creates or updates in the leaf frame").
func (e *Environment) Define(name datum.Symbol, value datum.Datum) {
	e.mu.Lock()
	e.store[name] = value
	e.mu.Unlock()
}

// SetBang mutates the binding in the frame where name is found, walking
// outward (spec §3: "set! mutates the binding in the frame where it is
// found").
func (e *Environment) SetBang(name datum.Symbol, value datum.Datum) bool {
	for f := e; f != nil; f = f.outer {
		f.mu.Lock()
		if _, ok := f.store[name]; ok {
			f.store[name] = value
			f.mu.Unlock()
			return true
		}
		f.mu.Unlock()
	}
	return false
}

// DefineMacro installs a macro in the leaf frame's macro table (spec §4.2
// Runtime scope: "stored in the current frame's macro list").
func (e *Environment) DefineMacro(name datum.Symbol, rule datum.Datum) {
	e.mu.Lock()
	e.macros[name] = rule
	e.mu.Unlock()
}

// LookupMacro walks frames outward looking for a macro named name (spec
// §4.2: "looked up at application time by walking frames outward").
func (e *Environment) LookupMacro(name datum.Symbol) (datum.Datum, bool) {
	for f := e; f != nil; f = f.outer {
		f.mu.RLock()
		v, ok := f.macros[name]
		f.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// IsGlobal reports whether e has no enclosing frame.
func (e *Environment) IsGlobal() bool { return e.outer == nil }

// Root walks outward to the global environment.
func (e *Environment) Root() *Environment {
	f := e
	for f.outer != nil {
		f = f.outer
	}
	return f
}

// cloneLink returns a new Environment sharing f's store/macros/mu but
// with a different outer pointer — a "ghost" frame used only to retopologize
// a chain without copying or disturbing the original bindings.
func cloneLink(f *Environment, newOuter *Environment) *Environment {
	return &Environment{mu: f.mu, store: f.store, macros: f.macros, outer: newOuter}
}

// Splice inserts caller's frame chain (down to, but not including, base)
// between leaf and base, implementing the dynamic-scope injection
// spec §4.4 point 2 and §9 describe for inlines-call/call-ce: "a
// 'dynamic scope' splice inserts the caller's frames between the new
// frame and the captured base". Frame data (store/macros) is shared with
// the originals via cloneLink, so mutation through the splice is visible
// to the caller's own view of those frames and vice versa.
func Splice(leaf *Environment, caller *Environment, base *Environment) {
	var chain []*Environment
	for f := caller; f != nil && f != base; f = f.outer {
		chain = append(chain, f)
	}
	cur := base
	for i := len(chain) - 1; i >= 0; i-- {
		cur = cloneLink(chain[i], cur)
	}
	leaf.outer = cur
}

// AsDatumEnv upcasts *Environment to the datum.Environment interface; it
// exists only for call sites constructing the interface value explicitly
// (Go already does this implicitly in most positions).
func AsDatumEnv(e *Environment) datum.Environment { return e }
