package parser

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/smasher164/autotype/ast"
	"github.com/smasher164/autotype/lexer"
)

type parser struct {
	l      Lexer
	tok    lexer.Token
	buf    []lexer.Token
	indent int
	traceW io.Writer
}

type Lexer interface {
	Next() lexer.Token
}

// Error is a syntax error. Parsing stops at the first one.
type Error struct {
	Span lexer.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

type bailout struct{ err *Error }

type Option func(*parser)

// WithTrace writes an indented trace of the productions entered to w.
func WithTrace(w io.Writer) Option {
	return func(p *parser) { p.traceW = w }
}

func (p *parser) trace(msg string) func() {
	if p.traceW != nil {
		fmt.Fprintf(p.traceW, "%*s%s %s\n", p.indent*2, "", msg, p.tok)
		p.indent++
		return func() {
			p.indent--
		}
	}
	return func() {}
}

func ParseFile(fsys fs.FS, filename string, opts ...Option) (*ast.Node, error) {
	l, err := lexer.NewLexer(fsys, filename)
	if err != nil {
		return nil, err
	}
	n, err := Parse(l, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return n, nil
}

func ParseString(src string, opts ...Option) (*ast.Node, error) {
	return Parse(lexer.New(src), opts...)
}

func Parse(l Lexer, opts ...Option) (root *ast.Node, err error) {
	p := &parser{l: l}
	for _, opt := range opts {
		opt(p)
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			root, err = nil, b.err
		}
	}()
	return p.parseProgram(), nil
}

func (p *parser) errorf(span lexer.Span, format string, args ...any) {
	panic(bailout{&Error{Span: span, Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) next() {
	if len(p.buf) > 0 {
		p.tok = p.buf[0]
		p.buf = p.buf[1:]
	} else {
		p.tok = p.l.Next()
	}
	if p.tok.Type == lexer.Illegal {
		p.errorf(p.tok.Span, "%s", p.tok.Data)
	}
}

func (p *parser) peek() lexer.Token {
	if len(p.buf) == 0 {
		p.buf = append(p.buf, p.l.Next())
	}
	return p.buf[0]
}

func (p *parser) peek2() lexer.Token {
	p.peek()
	if len(p.buf) < 2 {
		p.buf = append(p.buf, p.l.Next())
	}
	return p.buf[1]
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Text())
}

func (p *parser) expect(ttyp lexer.TokenType, what string) lexer.Token {
	tok := p.tok
	if tok.Type != ttyp {
		p.errorf(tok.Span, "expected %s, found %s", what, describe(tok))
	}
	p.next()
	return tok
}

func (p *parser) parseProgram() *ast.Node {
	defer p.trace("parseProgram")()
	p.next()
	prog := ast.New(ast.Program, lexer.Token{})
	for p.tok.Type != lexer.EOF {
		prog.Children = append(prog.Children, p.parseStatement())
	}
	return prog
}

// startsDecl reports whether the current token begins a declaration: a type
// name followed by an identifier, possibly with [] suffixes in between.
func (p *parser) startsDecl() bool {
	if p.tok.Type != lexer.Ident {
		return false
	}
	switch p.peek().Type {
	case lexer.Ident:
		return true
	case lexer.LeftBracket:
		return p.peek2().Type == lexer.RightBracket
	}
	return false
}

func (p *parser) parseStatement() *ast.Node {
	defer p.trace("parseStatement")()
	switch p.tok.Type {
	case lexer.LeftBrace:
		return p.parseBlock()
	case lexer.If:
		return p.parseIf()
	case lexer.While:
		return p.parseWhile()
	case lexer.For:
		return p.parseFor()
	case lexer.Return:
		return p.parseReturn()
	case lexer.Print:
		return p.parsePrint()
	case lexer.Semicolon:
		tok := p.tok
		p.next()
		return ast.New(ast.Empty, tok)
	}
	if p.startsDecl() {
		return p.parseDecl()
	}
	s := p.parseSimpleStmt()
	p.expect(lexer.Semicolon, "';'")
	return s
}

func (p *parser) parseType() *ast.Node {
	defer p.trace("parseType")()
	name := p.expect(lexer.Ident, "type name")
	t := ast.New(ast.TypeName, name)
	for p.tok.Type == lexer.LeftBracket {
		lbrack := p.tok
		p.next()
		rbrack := p.expect(lexer.RightBracket, "']'")
		lbrack.Span = lbrack.Span.Add(rbrack.Span)
		t = ast.New(ast.ArrayType, lbrack, t)
	}
	return t
}

// parseDecl parses a variable declaration or, when the name is followed by a
// parameter list, a function declaration.
func (p *parser) parseDecl() *ast.Node {
	defer p.trace("parseDecl")()
	typ := p.parseType()
	name := p.expect(lexer.Ident, "identifier")
	if p.tok.Type == lexer.LeftParen {
		return p.parseFuncRest(typ, name)
	}
	decl := ast.New(ast.VarDecl, name, typ)
	if p.tok.Type == lexer.Assign {
		p.next()
		decl.Children = append(decl.Children, p.parseExpr())
	}
	p.expect(lexer.Semicolon, "';'")
	return decl
}

func (p *parser) parseFuncRest(ret *ast.Node, name lexer.Token) *ast.Node {
	defer p.trace("parseFuncRest")()
	fn := ast.New(ast.FuncDecl, name, ret)
	p.expect(lexer.LeftParen, "'('")
	for p.tok.Type != lexer.RightParen {
		if len(fn.Children) > 1 {
			p.expect(lexer.Comma, "',' or ')'")
		}
		typ := p.parseType()
		pname := p.expect(lexer.Ident, "parameter name")
		fn.Children = append(fn.Children, ast.New(ast.Param, pname, typ))
	}
	p.next()
	if p.tok.Type != lexer.LeftBrace {
		p.errorf(p.tok.Span, "expected function body, found %s", describe(p.tok))
	}
	fn.Children = append(fn.Children, p.parseBlock())
	return fn
}

func (p *parser) parseBlock() *ast.Node {
	defer p.trace("parseBlock")()
	block := ast.New(ast.Block, p.expect(lexer.LeftBrace, "'{'"))
	for p.tok.Type != lexer.RightBrace {
		if p.tok.Type == lexer.EOF {
			p.errorf(p.tok.Span, "expected '}', found end of file")
		}
		block.Children = append(block.Children, p.parseStatement())
	}
	p.next()
	return block
}

func (p *parser) parseCond() *ast.Node {
	p.expect(lexer.LeftParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.RightParen, "')'")
	return cond
}

func (p *parser) parseIf() *ast.Node {
	defer p.trace("parseIf")()
	tok := p.tok
	p.next()
	n := ast.New(ast.If, tok, p.parseCond(), p.parseStatement())
	if p.tok.Type == lexer.Else {
		p.next()
		n.Children = append(n.Children, p.parseStatement())
	}
	return n
}

func (p *parser) parseWhile() *ast.Node {
	defer p.trace("parseWhile")()
	tok := p.tok
	p.next()
	return ast.New(ast.While, tok, p.parseCond(), p.parseStatement())
}

func (p *parser) parseFor() *ast.Node {
	defer p.trace("parseFor")()
	tok := p.tok
	p.next()
	p.expect(lexer.LeftParen, "'('")
	var init *ast.Node
	switch {
	case p.tok.Type == lexer.Semicolon:
		init = ast.New(ast.Empty, p.tok)
		p.next()
	case p.startsDecl():
		init = p.parseDecl()
	default:
		init = p.parseSimpleStmt()
		p.expect(lexer.Semicolon, "';'")
	}
	var cond *ast.Node
	if p.tok.Type == lexer.Semicolon {
		cond = ast.New(ast.Empty, p.tok)
	} else {
		cond = p.parseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	var post *ast.Node
	if p.tok.Type == lexer.RightParen {
		post = ast.New(ast.Empty, p.tok)
	} else {
		post = p.parseSimpleStmt()
	}
	p.expect(lexer.RightParen, "')'")
	return ast.New(ast.For, tok, init, cond, post, p.parseStatement())
}

func (p *parser) parseReturn() *ast.Node {
	defer p.trace("parseReturn")()
	n := ast.New(ast.Return, p.tok)
	p.next()
	if p.tok.Type != lexer.Semicolon {
		n.Children = append(n.Children, p.parseExpr())
	}
	p.expect(lexer.Semicolon, "';'")
	return n
}

func (p *parser) parsePrint() *ast.Node {
	defer p.trace("parsePrint")()
	tok := p.tok
	p.next()
	n := ast.New(ast.Print, tok, p.parseCond())
	p.expect(lexer.Semicolon, "';'")
	return n
}

func isAssignable(n *ast.Node) bool {
	for n.Kind == ast.Index {
		n = n.Children[0]
	}
	return n.Kind == ast.Ident
}

// parseSimpleStmt parses an assignment or an expression statement, without
// the terminating semicolon.
func (p *parser) parseSimpleStmt() *ast.Node {
	defer p.trace("parseSimpleStmt")()
	x := p.parseExpr()
	if p.tok.Type == lexer.Assign {
		if !isAssignable(x) {
			p.errorf(x.Span(), "cannot assign to %s", x.Kind)
		}
		tok := p.tok
		p.next()
		return ast.New(ast.Assign, tok, x, p.parseExpr())
	}
	return ast.New(ast.ExprStmt, lexer.Token{}, x)
}

func (p *parser) parseExpr() *ast.Node {
	return p.parseBinaryExpr(lexer.MinPrec)
}

func binaryKind(op lexer.Token) ast.Kind {
	switch {
	case op.Type == lexer.LogicalOr:
		return ast.Or
	case op.Type == lexer.LogicalAnd:
		return ast.And
	case op.IsEquality():
		return ast.Equality
	case op.IsComparison():
		return ast.Compare
	case op.IsAdditive():
		return ast.Add
	case op.IsMultiplicative():
		return ast.Mul
	}
	return ast.Illegal
}

// precedence climbing; every binary operator is left associative
func (p *parser) parseBinaryExpr(minPrec int) *ast.Node {
	defer p.trace("parseBinaryExpr")()
	lhs := p.parseUnaryExpr()
	for p.tok.IsBinaryOp() && p.tok.Prec() >= minPrec {
		op := p.tok
		p.next()
		rhs := p.parseBinaryExpr(op.Prec() + 1)
		lhs = ast.New(binaryKind(op), op, lhs, rhs)
	}
	return lhs
}

func (p *parser) parseUnaryExpr() *ast.Node {
	defer p.trace("parseUnaryExpr")()
	if p.tok.IsPrefixOp() {
		op := p.tok
		p.next()
		kind := ast.Not
		if op.Type == lexer.Minus {
			kind = ast.Neg
		}
		return ast.New(kind, op, p.parseUnaryExpr())
	}
	return p.parsePostfixExpr()
}

func (p *parser) parsePostfixExpr() *ast.Node {
	defer p.trace("parsePostfixExpr")()
	x := p.parsePrimaryExpr()
	for {
		switch p.tok.Type {
		case lexer.LeftBracket:
			lbrack := p.tok
			p.next()
			idx := p.parseExpr()
			rbrack := p.expect(lexer.RightBracket, "']'")
			lbrack.Span = lbrack.Span.Add(rbrack.Span)
			x = ast.New(ast.Index, lbrack, x, idx)
		case lexer.LeftParen:
			if x.Kind != ast.Ident {
				p.errorf(p.tok.Span, "only named functions can be called")
			}
			call := ast.New(ast.Call, x.Tok)
			p.next()
			for p.tok.Type != lexer.RightParen {
				if len(call.Children) > 0 {
					p.expect(lexer.Comma, "',' or ')'")
				}
				call.Children = append(call.Children, p.parseExpr())
			}
			p.next()
			x = call
		default:
			return x
		}
	}
}

func (p *parser) parsePrimaryExpr() *ast.Node {
	defer p.trace("parsePrimaryExpr")()
	tok := p.tok
	switch tok.Type {
	case lexer.Number:
		p.next()
		return ast.New(ast.IntLit, tok)
	case lexer.True, lexer.False:
		p.next()
		return ast.New(ast.BoolLit, tok)
	case lexer.Ident:
		p.next()
		return ast.New(ast.Ident, tok)
	case lexer.LeftParen:
		p.next()
		x := p.parseExpr()
		p.expect(lexer.RightParen, "')'")
		return x
	case lexer.LeftBrace:
		p.next()
		lit := ast.New(ast.ArrayLit, tok)
		for p.tok.Type != lexer.RightBrace {
			if len(lit.Children) > 0 {
				p.expect(lexer.Comma, "',' or '}'")
			}
			lit.Children = append(lit.Children, p.parseExpr())
		}
		p.next()
		return lit
	}
	p.errorf(tok.Span, "expected expression, found %s", describe(tok))
	return nil
}
