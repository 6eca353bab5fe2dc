package types

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/smasher164/autotype/ast"
)

// funcContext is the function whose body is being checked.
type funcContext struct {
	name string
	ret  Type
}

// checker holds the state of one inference pass. Nothing in it is shared
// between passes.
type checker struct {
	env    *Env
	uf     Unifier
	typeOf map[*ast.Node]Type
	sigs   map[*ast.Node]Function
	fn     *funcContext
	main   *Function

	traceW io.Writer
	indent int
}

type Option func(*checker)

// WithTrace writes an indented trace of the nodes visited to w.
func WithTrace(w io.Writer) Option {
	return func(c *checker) { c.traceW = w }
}

func (c *checker) trace(n *ast.Node) func() {
	if c.traceW != nil {
		fmt.Fprintf(c.traceW, "%*s%s @%s\n", c.indent*2, "", n.Kind, n.Span())
		c.indent++
		return func() {
			c.indent--
		}
	}
	return func() {}
}

// traceEnv writes the live frames to the trace.
func (c *checker) traceEnv() {
	if c.traceW == nil {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(c.env.String(), "\n"), "\n") {
		fmt.Fprintf(c.traceW, "%*s| %s\n", c.indent*2, "", line)
	}
}

// Check infers and verifies the types of prog. It stops at the first error,
// which is always a *TypeError.
func Check(prog *ast.Node, opts ...Option) (*Result, error) {
	c := &checker{
		env:    NewEnv(),
		typeOf: make(map[*ast.Node]Type),
		sigs:   make(map[*ast.Node]Function),
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := c.visit(prog); err != nil {
		return nil, err
	}
	c.traceEnv()
	c.env.LeaveBlock()

	table := c.env.Resolved()
	table.Each(func(u Unknown, t Type) {
		table.Set(u, c.env.Resolve(t))
	})
	for n, t := range c.typeOf {
		c.typeOf[n] = c.env.Resolve(t)
	}
	res := &Result{types: c.typeOf, table: table}
	if c.main != nil {
		res.Root = c.env.Resolve(*c.main)
	}
	return res, nil
}

// Result is the outcome of a successful Check.
type Result struct {
	// Root is the signature of main, or nil if the program declares none.
	Root  Type
	types map[*ast.Node]Type
	table *Table
}

// TypeOf returns the type inferred for an expression or return statement.
func (r *Result) TypeOf(n *ast.Node) (Type, bool) {
	t, ok := r.types[n]
	return t, ok
}

// Lookup returns the final type recorded for a source identifier. When
// several scopes declare the same name, the innermost one left last wins.
func (r *Result) Lookup(name string) (Type, bool) {
	return r.table.Get(Named(name))
}

// Bindings lists the source identifiers in the order they were first
// recorded.
func (r *Result) Bindings() []Binding {
	return lo.FilterMap(r.table.Keys(), func(u Unknown, _ int) (Binding, bool) {
		t, _ := r.table.Get(u)
		return Binding{ID: u, Type: t}, u.IsNamed()
	})
}

// Table is every type variable bound during the pass, fresh ones included.
func (r *Result) Table() *Table {
	return r.table
}

// typeFromAnnotation converts a written type into a Type. auto becomes a
// fresh variable.
func (c *checker) typeFromAnnotation(n *ast.Node) (Type, error) {
	switch n.Kind {
	case ast.ArrayType:
		elem, err := c.typeFromAnnotation(n.Children[0])
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case ast.TypeName:
		if n.Text() == "auto" {
			return c.uf.Fresh(), nil
		}
		if b, ok := BaseMap[n.Text()]; ok {
			return b, nil
		}
	}
	return nil, errorf(ErrUnknownBaseType, n, "unknown type %s", n.Text())
}

// expect makes t and want equal, binding whatever variables that takes. On
// failure the error points at x and, if format is not empty, carries that
// message instead of the unifier's. Occurs check failures keep the unifier's
// message.
func (c *checker) expect(x *ast.Node, t, want Type, format string, args ...any) error {
	cs, err := c.uf.Unify(c.env.Resolve(t), c.env.Resolve(want))
	if err == nil {
		err = c.env.Apply(&c.uf, cs)
	}
	if err == nil {
		return nil
	}
	terr := wrap(x, err)
	if format != "" && !errors.Is(err, ErrOccursCheck) {
		terr.Msg = fmt.Sprintf(format, args...)
	}
	return terr
}

func (c *checker) unify(x *ast.Node, a, b Type) error {
	return c.expect(x, a, b, "")
}

func wrap(x *ast.Node, err error) *TypeError {
	var terr *TypeError
	if errors.As(err, &terr) {
		return terr
	}
	var uerr *UnifyError
	if errors.As(err, &uerr) {
		return &TypeError{Kind: uerr.Kind, Msg: uerr.Error(), Node: x, Cause: uerr}
	}
	return &TypeError{Kind: ErrTypeMismatch, Msg: err.Error(), Node: x, Cause: err}
}

func (c *checker) visit(n *ast.Node) (Type, error) {
	defer c.trace(n)()
	var t Type
	var err error
	if n.Kind.IsExpr() {
		t, err = c.visitExpr(n)
	} else {
		t, err = c.visitStmt(n)
	}
	if err != nil {
		return nil, err
	}
	if t != nil {
		c.typeOf[n] = t
	}
	return t, nil
}
