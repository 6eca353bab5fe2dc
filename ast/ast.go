package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/smasher164/autotype/lexer"
)

// Kind tags a Node. The child layout of each kind is fixed and listed next to
// the constant.
type Kind int

const (
	Illegal Kind = iota

	Program  // top-level statements and function declarations
	FuncDecl // Tok: name; Children: return type, Param..., Block
	Param    // Tok: name; Children: type
	VarDecl  // Tok: name; Children: type, [initializer]
	TypeName // Tok: base type identifier
	ArrayType

	Block    // Children: statements
	If       // Children: cond, then, [else]
	While    // Children: cond, body
	For      // Children: init, cond, post, body (Empty when omitted)
	Return   // Children: [value]
	Print    // Children: argument
	Assign   // Tok: '='; Children: target (Ident or Index chain), value
	ExprStmt // Children: expression
	Empty

	Not      // Tok: '!'; Children: operand
	Neg      // Tok: '-'; Children: operand
	Compare  // Tok: < <= > >=; Children: left, right
	Equality // Tok: == !=
	And
	Or
	Add // Tok: + -
	Mul // Tok: * / %
	IntLit
	BoolLit
	Ident
	Index    // Tok: '['; Children: array, index
	ArrayLit // Tok: '{'; Children: elements
	Call     // Tok: callee name; Children: arguments
)

var kindNames = [...]string{
	Illegal:   "Illegal",
	Program:   "Program",
	FuncDecl:  "FuncDecl",
	Param:     "Param",
	VarDecl:   "VarDecl",
	TypeName:  "TypeName",
	ArrayType: "ArrayType",
	Block:     "Block",
	If:        "If",
	While:     "While",
	For:       "For",
	Return:    "Return",
	Print:     "Print",
	Assign:    "Assign",
	ExprStmt:  "ExprStmt",
	Empty:     "Empty",
	Not:       "Not",
	Neg:       "Neg",
	Compare:   "Compare",
	Equality:  "Equality",
	And:       "And",
	Or:        "Or",
	Add:       "Add",
	Mul:       "Mul",
	IntLit:    "IntLit",
	BoolLit:   "BoolLit",
	Ident:     "Ident",
	Index:     "Index",
	ArrayLit:  "ArrayLit",
	Call:      "Call",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsExpr reports whether nodes of kind k produce a value.
func (k Kind) IsExpr() bool {
	return k >= Not && k <= Call
}

type Node struct {
	Kind     Kind
	Tok      lexer.Token
	Children []*Node
}

func New(kind Kind, tok lexer.Token, children ...*Node) *Node {
	return &Node{Kind: kind, Tok: tok, Children: children}
}

// Child returns the i'th child, or nil if there is none.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Text is the source spelling of the node's token.
func (n *Node) Text() string {
	return n.Tok.Text()
}

func (n *Node) Span() lexer.Span {
	if n == nil {
		return lexer.Span{}
	}
	span := n.Tok.Span
	for _, c := range n.Children {
		span = span.Add(c.Span())
	}
	return span
}

func (n *Node) LeadingTrivia() []lexer.Token {
	if n == nil {
		return nil
	}
	if len(n.Children) > 0 {
		if first := n.Children[0]; first.Span().Start.Offset < n.Tok.Span.Start.Offset {
			return first.LeadingTrivia()
		}
	}
	return n.Tok.LeadingTrivia
}

func indent(depth int) string {
	return fmt.Sprintf("%*s", depth*2, "")
}

func (n *Node) ASTString(depth int) string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	if text := n.Text(); text != "" {
		fmt.Fprintf(&sb, " %q", text)
	}
	if n.Tok.Span.Start.Column != 0 {
		fmt.Fprintf(&sb, " @%s", n.Tok.Span)
	}
	for _, c := range n.Children {
		fmt.Fprintf(&sb, "\n%s%s", indent(depth+1), c.ASTString(depth+1))
	}
	return sb.String()
}

func PrintAST(w io.Writer, root *Node) {
	fmt.Fprintln(w, root.ASTString(0))
}

var dumpOptions = litter.Options{
	HidePrivateFields: true,
	HideZeroValues:    true,
	Compact:           false,
	StripPackageNames: true,
}

// Dump renders the full structure of n, token trivia included.
func Dump(n *Node) string {
	return dumpOptions.Sdump(n)
}

// Walk calls f for n and every descendant in depth-first pre-order. Returning
// false from f skips the children of that node.
func Walk(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, f)
	}
}
