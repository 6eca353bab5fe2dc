package lexer

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type TokenType int

const (
	EOF TokenType = iota
	Plus
	Minus
	Times
	Divide
	Remainder
	LessThan
	GreaterThan
	Assign
	Not
	Comma
	Semicolon
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket

	LogicalAnd
	LogicalOr
	LogicalEquals
	NotEquals
	LessThanEquals
	GreaterThanEquals

	If
	Else
	While
	For
	Return
	Print
	True
	False

	Ident
	Number
	Whitespace
	SingleLineComment
	Illegal
)

var tokenNames = [...]string{
	EOF:               "EOF",
	Plus:              "Plus",
	Minus:             "Minus",
	Times:             "Times",
	Divide:            "Divide",
	Remainder:         "Remainder",
	LessThan:          "LessThan",
	GreaterThan:       "GreaterThan",
	Assign:            "Assign",
	Not:               "Not",
	Comma:             "Comma",
	Semicolon:         "Semicolon",
	LeftParen:         "LeftParen",
	RightParen:        "RightParen",
	LeftBrace:         "LeftBrace",
	RightBrace:        "RightBrace",
	LeftBracket:       "LeftBracket",
	RightBracket:      "RightBracket",
	LogicalAnd:        "LogicalAnd",
	LogicalOr:         "LogicalOr",
	LogicalEquals:     "LogicalEquals",
	NotEquals:         "NotEquals",
	LessThanEquals:    "LessThanEquals",
	GreaterThanEquals: "GreaterThanEquals",
	If:                "If",
	Else:              "Else",
	While:             "While",
	For:               "For",
	Return:            "Return",
	Print:             "Print",
	True:              "True",
	False:             "False",
	Ident:             "Ident",
	Number:            "Number",
	Whitespace:        "Whitespace",
	SingleLineComment: "SingleLineComment",
	Illegal:           "Illegal",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var SingleCharTokens = map[rune]TokenType{
	'+': Plus,
	'-': Minus,
	'*': Times,
	'/': Divide,
	'%': Remainder,
	'<': LessThan,
	'>': GreaterThan,
	'=': Assign,
	'!': Not,
	',': Comma,
	';': Semicolon,
	'(': LeftParen,
	')': RightParen,
	'{': LeftBrace,
	'}': RightBrace,
	'[': LeftBracket,
	']': RightBracket,
	eof: EOF,
}

var DoubleCharTokens = map[[2]rune]TokenType{
	{'&', '&'}: LogicalAnd,
	{'|', '|'}: LogicalOr,
	{'=', '='}: LogicalEquals,
	{'!', '='}: NotEquals,
	{'<', '='}: LessThanEquals,
	{'>', '='}: GreaterThanEquals,
}

// Type names (int, bool, auto) are deliberately absent. They lex as identifiers
// so that the checker decides which base types exist.
var Keywords = map[string]TokenType{
	"if":     If,
	"else":   Else,
	"while":  While,
	"for":    For,
	"return": Return,
	"print":  Print,
	"true":   True,
	"false":  False,
}

var operatorText = map[TokenType]string{
	Plus:              "+",
	Minus:             "-",
	Times:             "*",
	Divide:            "/",
	Remainder:         "%",
	LessThan:          "<",
	GreaterThan:       ">",
	Assign:            "=",
	Not:               "!",
	Comma:             ",",
	Semicolon:         ";",
	LeftParen:         "(",
	RightParen:        ")",
	LeftBrace:         "{",
	RightBrace:        "}",
	LeftBracket:       "[",
	RightBracket:      "]",
	LogicalAnd:        "&&",
	LogicalOr:         "||",
	LogicalEquals:     "==",
	NotEquals:         "!=",
	LessThanEquals:    "<=",
	GreaterThanEquals: ">=",
}

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

type Span struct {
	Start Pos
	End   Pos
}

func (span Span) Add(other Span) Span {
	return Span{span.Start.Min(other.Start), span.End.Max(other.End)}
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

type Token struct {
	LeadingTrivia []Token
	Type          TokenType
	Span          Span
	Data          string
}

func (t Token) String() string {
	if t.Data == "" {
		return fmt.Sprintf("%s:%s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s:%s %q", t.Span, t.Type, t.Data)
}

// Text is the source spelling of the token.
func (t Token) Text() string {
	if t.Data != "" {
		return t.Data
	}
	if s, ok := operatorText[t.Type]; ok {
		return s
	}
	for kw, ttyp := range Keywords {
		if ttyp == t.Type {
			return kw
		}
	}
	return ""
}

func (b Token) Eq(a Token) bool {
	return a.Type == b.Type && a.Data == b.Data
}

func (a Token) ExactEq(b Token) bool {
	return a.Type == b.Type && a.Span == b.Span && a.Data == b.Data && slices.EqualFunc(a.LeadingTrivia, b.LeadingTrivia, Token.ExactEq)
}

func (t Token) IsComparison() bool {
	switch t.Type {
	case LessThan, GreaterThan, LessThanEquals, GreaterThanEquals:
		return true
	}
	return false
}

func (t Token) IsEquality() bool {
	return t.Type == LogicalEquals || t.Type == NotEquals
}

func (t Token) IsAdditive() bool {
	return t.Type == Plus || t.Type == Minus
}

func (t Token) IsMultiplicative() bool {
	switch t.Type {
	case Times, Divide, Remainder:
		return true
	}
	return false
}

const MinPrec = 1

func (t Token) Prec() int {
	switch t.Type {
	case Times, Divide, Remainder:
		return 6
	case Plus, Minus:
		return 5
	case LessThan, GreaterThan, LessThanEquals, GreaterThanEquals:
		return 4
	case LogicalEquals, NotEquals:
		return 3
	case LogicalAnd:
		return 2
	case LogicalOr:
		return 1
	}
	return 0
}

func (t Token) IsBinaryOp() bool {
	return t.Prec() >= MinPrec
}

func (t Token) IsPrefixOp() bool {
	return t.Type == Not || t.Type == Minus
}
