package datum

import "fmt"

// Prototype is a class/prototype descriptor for the object-oriented
// extension: a member-name list, a method-name list, and an optional
// super prototype for inheritance (spec §3 Object / Class-Prototype).
type Prototype struct {
	Name        string
	MemberNames []Symbol
	MethodNames []Symbol
	Methods     map[Symbol]*Procedure
	Super       *Prototype
}

func (p *Prototype) Kind() Kind      { return KindPrototype }
func (p *Prototype) Hash() uint32    { return 0 }
func (p *Prototype) Write() string   { return fmt.Sprintf("#<class %s>", p.Name) }
func (p *Prototype) Display() string { return p.Write() }

// LookupMethod walks the Super chain looking for name.
func (p *Prototype) LookupMethod(name Symbol) (*Procedure, bool) {
	for proto := p; proto != nil; proto = proto.Super {
		if m, ok := proto.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Object is a live instance of a Prototype: member values are shared and
// mutable, like every other aggregate Datum (spec §3 Ownership).
type Object struct {
	Proto   *Prototype
	Members *map[Symbol]Datum
}

func NewObject(proto *Prototype) *Object {
	members := make(map[Symbol]Datum, len(proto.MemberNames))
	for _, name := range proto.MemberNames {
		members[name] = Undefined
	}
	return &Object{Proto: proto, Members: &members}
}

func (o *Object) Kind() Kind   { return KindInstance }
func (o *Object) Hash() uint32 { return 0 }
func (o *Object) Write() string {
	name := "anonymous"
	if o.Proto != nil {
		name = o.Proto.Name
	}
	return fmt.Sprintf("#<object:%s>", name)
}
func (o *Object) Display() string { return o.Write() }

func (o *Object) Get(name Symbol) (Datum, bool) {
	v, ok := (*o.Members)[name]
	return v, ok
}

func (o *Object) Set(name Symbol, v Datum) { (*o.Members)[name] = v }
