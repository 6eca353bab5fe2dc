package types

import (
	"fmt"

	"github.com/smasher164/autotype/ast"
)

func (c *checker) visitExpr(n *ast.Node) (Type, error) {
	switch n.Kind {
	case ast.IntLit:
		return Int, nil
	case ast.BoolLit:
		return Bool, nil
	case ast.Ident:
		t, ok := c.env.LookupByName(n.Text())
		if !ok {
			return nil, errorf(ErrUndefinedVariable, n, "undefined variable %s", n.Text())
		}
		return c.env.Resolve(t), nil
	case ast.Not:
		return Bool, c.unary(n, Bool)
	case ast.Neg:
		return Int, c.unary(n, Int)
	case ast.Compare:
		return Bool, c.binary(n, Int)
	case ast.And, ast.Or:
		return Bool, c.binary(n, Bool)
	case ast.Add, ast.Mul:
		return Int, c.binary(n, Int)
	case ast.Equality:
		return c.equality(n)
	case ast.Index:
		return c.index(n)
	case ast.ArrayLit:
		return c.arrayLit(n)
	case ast.Call:
		return c.call(n)
	}
	panic(fmt.Sprintf("unexpected expression %s", n.Kind))
}

// operand visits x and requires its type to be want.
func (c *checker) operand(x *ast.Node, want Type, what string) error {
	t, err := c.visit(x)
	if err != nil {
		return err
	}
	return c.expect(x, t, want, "%s has type %s, expected %s", what, c.env.Resolve(t), want)
}

func (c *checker) unary(n *ast.Node, want Type) error {
	return c.operand(n.Children[0], want, fmt.Sprintf("operand of %q", n.Text()))
}

func (c *checker) binary(n *ast.Node, want Type) error {
	what := fmt.Sprintf("operand of %q", n.Text())
	for _, x := range n.Children {
		if err := c.operand(x, want, what); err != nil {
			return err
		}
	}
	return nil
}

// equality accepts operands of any type, as long as both have the same one.
func (c *checker) equality(n *ast.Node) (Type, error) {
	left, err := c.visit(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := c.visit(n.Children[1])
	if err != nil {
		return nil, err
	}
	if err := c.expect(n.Children[1], left, right, "mismatched types %s and %s in %q",
		c.env.Resolve(left), c.env.Resolve(right), n.Text()); err != nil {
		return nil, err
	}
	return Bool, nil
}

func (c *checker) index(n *ast.Node) (Type, error) {
	arr, idx := n.Children[0], n.Children[1]
	t, err := c.visit(arr)
	if err != nil {
		return nil, err
	}
	elem := c.uf.Fresh()
	if err := c.expect(arr, t, Array{Elem: elem}, "cannot index %s of type %s", arr.Text(), c.env.Resolve(t)); err != nil {
		return nil, err
	}
	if err := c.operand(idx, Int, "index"); err != nil {
		return nil, err
	}
	return c.env.Resolve(elem), nil
}

func (c *checker) arrayLit(n *ast.Node) (Type, error) {
	elem := Type(c.uf.Fresh())
	for _, x := range n.Children {
		t, err := c.visit(x)
		if err != nil {
			return nil, err
		}
		if t = c.env.Resolve(t); IsFunction(t) {
			return nil, errorf(ErrInvalidOperand, x, "array element %s has function type %s", x.Text(), t)
		}
		if err := c.expect(x, elem, t, "mismatched element types %s and %s in array", c.env.Resolve(elem), t); err != nil {
			return nil, err
		}
	}
	return Array{Elem: c.env.Resolve(elem)}, nil
}

func (c *checker) call(n *ast.Node) (Type, error) {
	name := n.Text()
	t, ok := c.env.LookupByName(name)
	if !ok {
		return nil, errorf(ErrUndefinedFunction, n, "undefined function %s", name)
	}
	var sig Function
	switch t := c.env.Resolve(t).(type) {
	case Function:
		sig = t
	case Unknown:
		// a variable of unknown type takes on the shape of the call
		sig = Function{Return: c.uf.Fresh(), Params: make([]Type, len(n.Children))}
		for i := range sig.Params {
			sig.Params[i] = c.uf.Fresh()
		}
		if err := c.unify(n, t, sig); err != nil {
			return nil, err
		}
	default:
		return nil, errorf(ErrInvalidOperand, n, "cannot call non-function %s of type %s", name, t)
	}
	if len(n.Children) != sig.Arity() {
		return nil, errorf(ErrArityMismatch, n, "%s expects %d arguments, got %d", name, sig.Arity(), len(n.Children))
	}
	for i, x := range n.Children {
		at, err := c.visit(x)
		if err != nil {
			return nil, err
		}
		pt := c.env.Resolve(sig.Params[i])
		if err := c.expect(x, pt, at, "cannot use %s as argument %d of %s, expected %s",
			c.env.Resolve(at), i+1, name, pt); err != nil {
			return nil, err
		}
	}
	return c.env.Resolve(sig.Return), nil
}
