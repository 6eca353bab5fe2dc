package types

import (
	"errors"
	"fmt"

	"github.com/smasher164/autotype/ast"
	"github.com/smasher164/autotype/lexer"
)

var (
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrOccursCheck           = errors.New("occurs check failure")
	ErrArityMismatch         = errors.New("arity mismatch")
	ErrUndefinedVariable     = errors.New("undefined variable")
	ErrUndefinedFunction     = errors.New("undefined function")
	ErrRedeclaration         = errors.New("redeclaration")
	ErrInvalidOperand        = errors.New("invalid operand kind")
	ErrUnknownBaseType       = errors.New("unknown base type")
	ErrReturnOutsideFunction = errors.New("return outside function")
)

// Kinds lists every error kind, for lookup by name.
var Kinds = map[string]error{
	"TypeMismatch":          ErrTypeMismatch,
	"OccursCheckFailure":    ErrOccursCheck,
	"ArityMismatch":         ErrArityMismatch,
	"UndefinedVariable":     ErrUndefinedVariable,
	"UndefinedFunction":     ErrUndefinedFunction,
	"Redeclaration":         ErrRedeclaration,
	"InvalidOperandKind":    ErrInvalidOperand,
	"UnknownBaseType":       ErrUnknownBaseType,
	"ReturnOutsideFunction": ErrReturnOutsideFunction,
}

// UnifyError is a unification failure. It carries no source position; the
// checker wraps it in a TypeError.
type UnifyError struct {
	Kind  error
	Left  Type
	Right Type
}

func (e *UnifyError) Error() string {
	switch e.Kind {
	case ErrOccursCheck:
		return fmt.Sprintf("cannot unify %s to %s", e.Left, e.Right)
	case ErrArityMismatch:
		return fmt.Sprintf("cannot unify %s with %s: parameter counts differ", e.Left, e.Right)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

func (e *UnifyError) Unwrap() error { return e.Kind }

// TypeError is a diagnostic attached to the node that caused it. Offset moves
// the reported column right, to point inside the node.
type TypeError struct {
	Kind   error
	Msg    string
	Node   *ast.Node
	Offset int
	Cause  error
}

func (e *TypeError) Pos() lexer.Pos {
	return e.Node.Span().Start
}

func (e *TypeError) Error() string {
	pos := e.Pos()
	return fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column+e.Offset, e.Msg)
}

func (e *TypeError) Unwrap() error { return e.Kind }

func errorf(kind error, n *ast.Node, format string, args ...any) *TypeError {
	return &TypeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Node: n}
}
