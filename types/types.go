package types

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Type is one of Base, Array, Function or Unknown. Values are immutable;
// Substitute returns a new Type rather than modifying the receiver.
type Type interface {
	Equal(Type) bool
	// Contains reports whether u occurs anywhere inside the type.
	Contains(u Unknown) bool
	// Substitute replaces every occurrence of u with t.
	Substitute(u Unknown, t Type) Type
	String() string
	isType()
}

var (
	_ Type = Base(0)
	_ Type = Array{}
	_ Type = Function{}
	_ Type = Unknown{}
)

type Base int

const (
	Int Base = iota
	Bool
)

var BaseMap = map[string]Base{
	"int":  Int,
	"bool": Bool,
}

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		panic("unreachable")
	}
}

func (t1 Base) Equal(t2 Type) bool {
	if t2, ok := t2.(Base); ok {
		return t1 == t2
	}
	return false
}

func (Base) Contains(Unknown) bool { return false }

func (b Base) Substitute(Unknown, Type) Type { return b }

func (Base) isType() {}

type Array struct {
	Elem Type
}

func (t1 Array) Equal(t2 Type) bool {
	if t2, ok := t2.(Array); ok {
		return t1.Elem.Equal(t2.Elem)
	}
	return false
}

func (a Array) Contains(u Unknown) bool { return a.Elem.Contains(u) }

func (a Array) Substitute(u Unknown, t Type) Type {
	return Array{Elem: a.Elem.Substitute(u, t)}
}

func (a Array) String() string {
	return fmt.Sprintf("tab[%s]", a.Elem)
}

func (Array) isType() {}

type Function struct {
	Return Type
	Params []Type
}

func (f Function) Arity() int { return len(f.Params) }

func (t1 Function) Equal(t2 Type) bool {
	t2f, ok := t2.(Function)
	if !ok || !t1.Return.Equal(t2f.Return) {
		return false
	}
	return slices.EqualFunc(t1.Params, t2f.Params, Type.Equal)
}

func (f Function) Contains(u Unknown) bool {
	return f.Return.Contains(u) || lo.SomeBy(f.Params, func(p Type) bool {
		return p.Contains(u)
	})
}

func (f Function) Substitute(u Unknown, t Type) Type {
	return Function{
		Return: f.Return.Substitute(u, t),
		Params: lo.Map(f.Params, func(p Type, _ int) Type {
			return p.Substitute(u, t)
		}),
	}
}

func (f Function) String() string {
	var sb strings.Builder
	sb.WriteString("( ")
	for _, p := range f.Params {
		sb.WriteString(p.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(")->")
	sb.WriteString(f.Return.String())
	return sb.String()
}

func (Function) isType() {}

// Unknown is a type variable. A named Unknown stands for the type of a source
// identifier; an anonymous one is minted fresh by a Unifier and identified by
// its index.
type Unknown struct {
	Name  string
	Index int
}

// Named returns the Unknown bound to the identifier name.
func Named(name string) Unknown {
	return Unknown{Name: name}
}

func (u Unknown) IsNamed() bool { return u.Name != "" }

// key normalizes u so that Go equality on the result matches Equal.
func (u Unknown) key() Unknown {
	if u.IsNamed() {
		return Unknown{Name: u.Name}
	}
	return u
}

func (u Unknown) Equal(t Type) bool {
	v, ok := t.(Unknown)
	if !ok || u.IsNamed() != v.IsNamed() {
		return false
	}
	if u.IsNamed() {
		return u.Name == v.Name
	}
	return u.Index == v.Index
}

func (u Unknown) Contains(v Unknown) bool { return u.Equal(v) }

func (u Unknown) Substitute(v Unknown, t Type) Type {
	if u.Equal(v) {
		return t
	}
	return u
}

func (u Unknown) String() string {
	return fmt.Sprintf("UnknownType(%s, %d)", u.Name, u.Index)
}

func (Unknown) isType() {}

// Unknowns lists the distinct type variables occurring in t, in order of first
// appearance.
func Unknowns(t Type) []Unknown {
	var acc []Unknown
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case Unknown:
			acc = append(acc, t.key())
		case Array:
			walk(t.Elem)
		case Function:
			walk(t.Return)
			lo.ForEach(t.Params, func(p Type, _ int) { walk(p) })
		}
	}
	walk(t)
	return lo.Uniq(acc)
}

// IsConcrete reports whether t contains no Unknown at any depth.
func IsConcrete(t Type) bool {
	return len(Unknowns(t)) == 0
}

func IsFunction(t Type) bool {
	_, ok := t.(Function)
	return ok
}
