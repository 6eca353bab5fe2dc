package lexer

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/smasher164/xid"
)

// Ext is the file extension of source files.
const Ext = ".at"

type Lexer struct {
	ch   rune
	pos  int
	i    int // position in buffer
	err  error
	buf  []rune
	rdr  io.RuneReader
	line []int // offsets at which each line starts
}

const eof = -1

func (l *Lexer) lexWS() Token {
	startPos := l.pos
	for unicode.IsSpace(l.ch) {
		l.next()
	}
	return Token{Type: Whitespace, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

func isLetter(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

func (l *Lexer) lexIdentOrKeyword() Token {
	startPos := l.pos
	l.next()
	for xid.Continue(l.ch) {
		l.next()
	}
	ident := l.bufString()
	if ttyp, ok := Keywords[ident]; ok {
		return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
	}
	return Token{Type: Ident, Span: l.spanOf(startPos, l.pos-1), Data: ident}
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

func (l *Lexer) lexNumber() Token {
	startPos := l.pos
	leadingZero := l.ch == '0'
	for isDecimal(l.ch) {
		l.next()
	}
	if isLetter(l.ch) {
		for xid.Continue(l.ch) {
			l.next()
		}
		return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: fmt.Sprintf("malformed number %q", l.bufString())}
	}
	num := l.bufString()
	if leadingZero && len(num) > 1 {
		return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: fmt.Sprintf("leading zero in number %q", num)}
	}
	return Token{Type: Number, Span: l.spanOf(startPos, l.pos-1), Data: num}
}

func (l *Lexer) lexLineComment() Token {
	startPos := l.pos
	l.until('\n')
	return Token{Type: SingleLineComment, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

func (l *Lexer) next() {
	if l.ch == eof {
		return
	}
	if l.ch == '\n' {
		if n := len(l.line); l.line[n-1] <= l.pos {
			l.line = append(l.line, l.pos+1)
		}
	}
	l.i++
	l.pos++
	if l.i < len(l.buf) {
		l.ch = l.buf[l.i]
	} else {
		r, _, err := l.rdr.ReadRune()
		if err != nil {
			l.ch = eof
			if err != io.EOF {
				l.err = err
			}
		} else {
			l.ch = r
		}
		l.buf = append(l.buf, l.ch)
	}
}

func (l *Lexer) backup() {
	if l.i > 0 {
		l.i--
		l.pos--
		l.ch = l.buf[l.i]
	}
}

func (l *Lexer) peek() rune {
	if l.ch == eof {
		return eof
	}
	l.next()
	ch := l.ch
	l.backup()
	return ch
}

func (l *Lexer) until(r rune) (dst []rune) {
	for l.ch != r && l.ch != eof {
		dst = append(dst, l.ch)
		l.next()
	}
	return dst
}

func (l *Lexer) bufString() string {
	return string(l.buf[:l.i])
}

func (l *Lexer) lineIndex(offset int) int {
	// index of the last line starting at or before offset
	return sort.Search(len(l.line), func(i int) bool {
		return l.line[i] > offset
	}) - 1
}

func (l *Lexer) posOf(offset int) Pos {
	line := l.lineIndex(offset)
	return Pos{Offset: offset, Line: line + 1, Column: offset - l.line[line] + 1}
}

func (l *Lexer) spanOf(off1, off2 int) Span {
	if off2 < off1 {
		off2 = off1
	}
	start := l.posOf(off1)
	var end Pos
	if off1 == off2 {
		end = start
	} else {
		end = l.posOf(off2)
	}
	return Span{Start: start, End: end}
}

func (l *Lexer) resetPos() {
	l.buf = l.buf[l.i:]
	l.i = 0
	l.ch = l.buf[l.i]
}

// Err reports a read failure from the underlying reader, if any.
func (l *Lexer) Err() error {
	return l.err
}

func (l *Lexer) NextToken() Token {
	defer l.resetPos()
	startPos := l.pos
	switch {
	case unicode.IsSpace(l.ch):
		return l.lexWS()
	case isLetter(l.ch):
		return l.lexIdentOrKeyword()
	case isDecimal(l.ch):
		return l.lexNumber()
	case l.ch == '/' && l.peek() == '/':
		return l.lexLineComment()
	}
	if ttyp, ok := DoubleCharTokens[[2]rune{l.ch, l.peek()}]; ok {
		l.next()
		l.next()
		return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
	}
	if ttyp, ok := SingleCharTokens[l.ch]; ok {
		l.next()
		return Token{Type: ttyp, Span: l.spanOf(startPos, startPos)}
	}
	ch := l.ch
	l.next()
	return Token{Type: Illegal, Span: l.spanOf(startPos, startPos), Data: fmt.Sprintf("unexpected character %q", ch)}
}

// Next returns the next significant token, with any whitespace and comments
// that precede it attached as leading trivia.
func (l *Lexer) Next() Token {
	var t Token
	var trivia []Token
	for t = l.NextToken(); t.Type == Whitespace || t.Type == SingleLineComment; t = l.NextToken() {
		trivia = append(trivia, t)
	}
	t.LeadingTrivia = trivia
	return t
}

func newLexer(rdr io.RuneReader) *Lexer {
	l := &Lexer{
		rdr:  rdr,
		i:    -1,
		pos:  -1,
		line: []int{0},
	}
	l.next()
	return l
}

func NewLexer(fsys fs.FS, filename string) (*Lexer, error) {
	if filepath.Ext(filename) != Ext {
		return nil, fmt.Errorf("invalid file extension %q, expected %q", filepath.Ext(filename), Ext)
	}
	f, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	return newLexer(bufio.NewReader(f)), nil
}

// New lexes src in memory.
func New(src string) *Lexer {
	return newLexer(strings.NewReader(src))
}
