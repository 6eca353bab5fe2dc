package types

import (
	"fmt"

	"github.com/smasher164/autotype/ast"
)

// column offsets of a statement's operand, past its keyword
const (
	returnOffset = len("return ")
	printOffset  = len("print(")
)

var mainSig = Function{Return: Int}

func (c *checker) visitStmt(n *ast.Node) (Type, error) {
	switch n.Kind {
	case ast.Program:
		return nil, c.stmts(n.Children)
	case ast.Block:
		c.env.EnterBlock()
		if err := c.stmts(n.Children); err != nil {
			return nil, err
		}
		c.traceEnv()
		c.env.LeaveBlock()
		return nil, nil
	case ast.FuncDecl:
		return nil, c.funcDecl(n)
	case ast.VarDecl:
		return nil, c.varDecl(n)
	case ast.If, ast.While:
		if err := c.cond(n, n.Children[0]); err != nil {
			return nil, err
		}
		for _, s := range n.Children[1:] {
			if _, err := c.visit(s); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case ast.For:
		return nil, c.forStmt(n)
	case ast.Return:
		return c.returnStmt(n)
	case ast.Print:
		t, err := c.visit(n.Children[0])
		if err != nil {
			return nil, err
		}
		if t = c.env.Resolve(t); IsFunction(t) {
			terr := errorf(ErrInvalidOperand, n, "cannot print function %s of type %s", n.Children[0].Text(), t)
			terr.Offset = printOffset
			return nil, terr
		}
		return nil, nil
	case ast.Assign:
		return nil, c.assign(n)
	case ast.ExprStmt:
		_, err := c.visit(n.Children[0])
		return nil, err
	case ast.Empty:
		return nil, nil
	}
	panic(fmt.Sprintf("unexpected statement %s", n.Kind))
}

// stmts checks a statement list in the current frame. Function declarations
// are registered first, so they may call each other regardless of order.
func (c *checker) stmts(list []*ast.Node) error {
	for _, s := range list {
		if s.Kind == ast.FuncDecl {
			if err := c.declareFunc(s); err != nil {
				return err
			}
		}
	}
	for _, s := range list {
		if _, err := c.visit(s); err != nil {
			return err
		}
	}
	return nil
}

// declareFunc binds the signature written in a function declaration.
func (c *checker) declareFunc(n *ast.Node) error {
	name := n.Text()
	if c.env.IsDeclaredInCurrentFrame(name) {
		return errorf(ErrRedeclaration, n, "function %s redeclared in this block", name)
	}
	if c.env.Depth() > 1 && c.env.IsDeclaredGlobally(name) {
		return errorf(ErrRedeclaration, n, "function %s redeclared, %s is declared at top level", name, name)
	}
	ret, err := c.typeFromAnnotation(n.Children[0])
	if err != nil {
		return err
	}
	sig := Function{Return: ret}
	for _, p := range funcParams(n) {
		pt, err := c.typeFromAnnotation(p.Children[0])
		if err != nil {
			return err
		}
		sig.Params = append(sig.Params, pt)
	}
	if name == "main" && c.env.Depth() == 1 {
		if err := c.expect(n, sig, mainSig, "func main must have signature %s, found %s", mainSig, sig); err != nil {
			return err
		}
		c.main = &sig
	}
	c.sigs[n] = sig
	c.env.DeclareFunc(name, sig)
	return nil
}

func funcParams(n *ast.Node) []*ast.Node {
	return n.Children[1 : len(n.Children)-1]
}

func (c *checker) funcDecl(n *ast.Node) error {
	sig := c.sigs[n]
	outer := c.fn
	c.fn = &funcContext{name: n.Text(), ret: sig.Return}
	defer func() { c.fn = outer }()

	leave := c.env.EnterFunction()
	for i, p := range funcParams(n) {
		name := p.Text()
		if c.env.IsDeclaredInCurrentFrame(name) {
			return errorf(ErrRedeclaration, p, "parameter %s redeclared", name)
		}
		v := c.uf.Fresh()
		c.env.DeclareParam(name, v)
		if err := c.unify(p, v, sig.Params[i]); err != nil {
			return err
		}
		c.typeOf[p] = v
	}
	body := n.Children[len(n.Children)-1]
	if err := c.stmts(body.Children); err != nil {
		return err
	}

	// settle the signature against what the body observed
	declared := c.env.Resolve(sig)
	observed := Function{
		Return: c.env.Resolve(c.fn.ret),
		Params: make([]Type, len(sig.Params)),
	}
	for i, p := range sig.Params {
		observed.Params[i] = c.env.Resolve(p)
	}
	if err := c.unify(n, declared, observed); err != nil {
		return err
	}
	c.traceEnv()
	leave()
	return nil
}

func (c *checker) varDecl(n *ast.Node) error {
	name := n.Text()
	if c.env.IsDeclaredInCurrentFrame(name) {
		return errorf(ErrRedeclaration, n, "%s redeclared in this block", name)
	}
	var initT Type
	if init := n.Child(1); init != nil {
		t, err := c.visit(init)
		if err != nil {
			return err
		}
		initT = t
	}
	declT, err := c.typeFromAnnotation(n.Children[0])
	if err != nil {
		return err
	}
	v := c.uf.Fresh()
	c.env.AssignVar(Named(name), v)
	if err := c.unify(n, v, declT); err != nil {
		return err
	}
	if initT != nil {
		if err := c.expect(n.Children[1], v, initT, "cannot initialize %s of type %s with value of type %s",
			name, c.env.Resolve(v), c.env.Resolve(initT)); err != nil {
			return err
		}
	}
	if t := c.env.Resolve(v); IsFunction(t) {
		return errorf(ErrInvalidOperand, n, "cannot declare variable %s of function type %s", name, t)
	}
	return nil
}

func (c *checker) cond(stmt, x *ast.Node) error {
	t, err := c.visit(x)
	if err != nil {
		return err
	}
	return c.expect(x, t, Bool, "condition of %q has type %s, expected bool", stmt.Text(), c.env.Resolve(t))
}

// forStmt checks a for loop. Variables declared in its init statement are
// scoped to the loop.
func (c *checker) forStmt(n *ast.Node) error {
	c.env.EnterBlock()
	if _, err := c.visit(n.Children[0]); err != nil {
		return err
	}
	if cond := n.Children[1]; cond.Kind != ast.Empty {
		if err := c.cond(n, cond); err != nil {
			return err
		}
	}
	for _, s := range n.Children[2:] {
		if _, err := c.visit(s); err != nil {
			return err
		}
	}
	c.env.LeaveBlock()
	return nil
}

func (c *checker) returnStmt(n *ast.Node) (Type, error) {
	if c.fn == nil {
		return nil, errorf(ErrReturnOutsideFunction, n, "return outside function")
	}
	x := n.Child(0)
	if x == nil {
		terr := errorf(ErrInvalidOperand, n, "missing return value in function %s", c.fn.name)
		terr.Offset = returnOffset
		return nil, terr
	}
	t, err := c.visit(x)
	if err != nil {
		return nil, err
	}
	want := c.env.Resolve(c.fn.ret)
	if err := c.expect(n, want, t, "cannot return %s from function %s returning %s",
		c.env.Resolve(t), c.fn.name, want); err != nil {
		err.(*TypeError).Offset = returnOffset
		return nil, err
	}
	return t, nil
}

func (c *checker) assign(n *ast.Node) error {
	target, value := n.Children[0], n.Children[1]
	var indices []*ast.Node
	for target.Kind == ast.Index {
		indices = append(indices, target.Children[1])
		target = target.Children[0]
	}
	for i := len(indices) - 1; i >= 0; i-- {
		if err := c.operand(indices[i], Int, "index"); err != nil {
			return err
		}
	}
	vt, err := c.visit(value)
	if err != nil {
		return err
	}
	name := target.Text()
	b, ok := c.env.LookupBinding(name)
	if !ok {
		return errorf(ErrUndefinedVariable, target, "undefined variable %s", name)
	}
	varT := c.env.Resolve(b.Type)
	if IsFunction(varT) {
		return errorf(ErrInvalidOperand, target, "cannot assign to function %s", name)
	}
	c.typeOf[target] = varT
	wrapped := vt
	for range indices {
		wrapped = Array{Elem: wrapped}
	}
	if err := c.expect(value, varT, wrapped, "cannot assign %s to %s of type %s",
		describeAssigned(c.env.Resolve(vt), len(indices)), name, varT); err != nil {
		return err
	}
	// only parameters may hold functions
	if t := c.env.Resolve(vt); IsFunction(t) && !b.Param {
		return errorf(ErrInvalidOperand, value, "cannot assign %s of function type %s to %s", value.Text(), t, name)
	}
	return nil
}

func describeAssigned(t Type, depth int) string {
	if depth == 0 {
		return t.String()
	}
	return fmt.Sprintf("%s at index depth %d", t, depth)
}
