package types

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Binding associates a type variable with its best known type.
type Binding struct {
	ID   Unknown
	Type Type
	// Func marks a name introduced by a function declaration. Such names stay
	// visible across function boundaries.
	Func bool
	// Param marks a function parameter, which may take on a function type.
	Param bool
}

// Frame holds the bindings of one block.
type Frame struct {
	order []Unknown
	vars  map[Unknown]*Binding
}

func newFrame() *Frame {
	return &Frame{vars: make(map[Unknown]*Binding)}
}

func (f *Frame) lookup(u Unknown) (*Binding, bool) {
	b, ok := f.vars[u.key()]
	return b, ok
}

func (f *Frame) add(b *Binding) {
	b.ID = b.ID.key()
	if _, ok := f.vars[b.ID]; !ok {
		f.order = append(f.order, b.ID)
	}
	f.vars[b.ID] = b
}

// Env is a stack of scope frames. Frame 0 is the global frame and is always
// visible.
type Env struct {
	frames []*Frame
	// floor is the index of the innermost function's parameter frame; frames
	// between the global frame and floor are hidden from lookups.
	floor    int
	resolved *Table
}

func NewEnv() *Env {
	return &Env{
		frames:   []*Frame{newFrame()},
		resolved: &Table{},
	}
}

func (e *Env) Depth() int { return len(e.frames) }

func (e *Env) top() *Frame {
	return e.frames[len(e.frames)-1]
}

func (e *Env) EnterBlock() {
	e.frames = append(e.frames, newFrame())
}

// LeaveBlock pops the innermost frame and records its bindings in the
// resolved table. Bindings of an inner scope overwrite those of an outer one
// with the same name.
func (e *Env) LeaveBlock() {
	f := e.top()
	for _, id := range f.order {
		e.resolved.Set(id, f.vars[id].Type)
	}
	e.frames = e.frames[:len(e.frames)-1]
	if e.floor >= len(e.frames) {
		e.floor = 0
	}
}

// EnterFunction pushes the parameter frame of a function body. The returned
// function pops it and restores the visibility of the enclosing scopes.
func (e *Env) EnterFunction() (leave func()) {
	saved := e.floor
	e.EnterBlock()
	e.floor = len(e.frames) - 1
	return func() {
		e.LeaveBlock()
		e.floor = saved
	}
}

// AssignVar binds id in the innermost frame.
func (e *Env) AssignVar(id Unknown, t Type) {
	e.top().add(&Binding{ID: id, Type: t})
}

// DeclareParam binds a parameter name in the innermost frame.
func (e *Env) DeclareParam(name string, t Type) {
	e.top().add(&Binding{ID: Named(name), Type: t, Param: true})
}

// DeclareFunc binds the name of a function in the innermost frame.
func (e *Env) DeclareFunc(name string, t Function) {
	e.top().add(&Binding{ID: Named(name), Type: t, Func: true})
}

func (e *Env) visible(i int, b *Binding) bool {
	return i == 0 || i >= e.floor || b.Func
}

// LookupBinding finds the innermost visible binding of name.
func (e *Env) LookupBinding(name string) (*Binding, bool) {
	id := Named(name)
	for i := len(e.frames) - 1; i >= 0; i-- {
		if b, ok := e.frames[i].lookup(id); ok && e.visible(i, b) {
			return b, true
		}
	}
	return nil, false
}

func (e *Env) LookupByName(name string) (Type, bool) {
	b, ok := e.LookupBinding(name)
	if !ok {
		return nil, false
	}
	return b.Type, true
}

func (e *Env) ContainsVarName(name string) bool {
	_, ok := e.LookupBinding(name)
	return ok
}

func (e *Env) IsDeclaredInCurrentFrame(name string) bool {
	_, ok := e.top().lookup(Named(name))
	return ok
}

// IsDeclaredGlobally reports whether name is bound in the global frame.
func (e *Env) IsDeclaredGlobally(name string) bool {
	_, ok := e.frames[0].lookup(Named(name))
	return ok
}

// find searches every frame, ignoring function boundaries, for the binding of
// id.
func (e *Env) find(id Unknown) (*Binding, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if b, ok := e.frames[i].lookup(id); ok {
			return b, true
		}
	}
	return nil, false
}

// bound returns the type currently bound to id, looking in the live frames
// and then, for fresh variables, in the resolved table.
func (e *Env) bound(id Unknown) (Type, bool) {
	if b, ok := e.find(id); ok {
		return b.Type, true
	}
	if id.IsNamed() {
		return nil, false
	}
	return e.resolved.Get(id)
}

// Resolve substitutes the bound type of every fresh variable occurring in t.
func (e *Env) Resolve(t Type) Type {
	for {
		changed := false
		for _, u := range Unknowns(t) {
			if u.IsNamed() {
				continue
			}
			if bt, ok := e.bound(u); ok && !bt.Equal(u) {
				t = t.Substitute(u, bt)
				changed = true
			}
		}
		if !changed {
			return t
		}
	}
}

// Resolved is the table of bindings recorded by LeaveBlock.
func (e *Env) Resolved() *Table {
	return e.resolved
}

func frameString(w io.Writer, f *Frame) {
	if len(f.order) == 0 {
		fmt.Fprintf(w, "(empty)\n")
		return
	}
	for _, id := range f.order {
		name := id.Name
		if !id.IsNamed() {
			name = fmt.Sprintf("$%d", id.Index)
		}
		fmt.Fprintf(w, "%s:\t%s\n", name, f.vars[id].Type)
	}
}

// String lists the frames outermost first, one binding per line.
func (e *Env) String() string {
	sb := new(strings.Builder)
	buf := tabwriter.NewWriter(sb, 0, 0, 1, ' ', 0)
	for i, f := range e.frames {
		if i > 0 {
			fmt.Fprint(buf, "\u2191\n")
		}
		frameString(buf, f)
	}
	buf.Flush()
	return sb.String()
}
