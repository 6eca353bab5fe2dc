// Package diag renders checker and parser errors against their source.
package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smasher164/autotype/lexer"
	"github.com/smasher164/autotype/parser"
	"github.com/smasher164/autotype/types"
)

// Fprint writes err to w in the form
//
//	Error line 3 column 5 : undefined variable y
//	    y = 1;
//	    ^
//
// The caret is shifted right by the error's column offset, if it has one.
// Errors without a source position are written on a single line.
func Fprint(w io.Writer, src string, err error) {
	pos, offset, msg, ok := locate(err)
	if !ok {
		fmt.Fprintf(w, "Error : %s\n", err)
		return
	}
	fmt.Fprintf(w, "Error line %d column %d : %s\n", pos.Line, pos.Column, msg)
	line, ok := sourceLine(src, pos.Line)
	if !ok {
		return
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%s^\n", padding(line, pos.Column-1+offset))
}

func locate(err error) (pos lexer.Pos, offset int, msg string, ok bool) {
	var terr *types.TypeError
	if errors.As(err, &terr) {
		return terr.Pos(), terr.Offset, terr.Msg, true
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		return perr.Span.Start, 0, perr.Msg, true
	}
	return lexer.Pos{}, 0, "", false
}

func sourceLine(src string, n int) (string, bool) {
	lines := strings.Split(src, "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// padding returns n columns of blank space that line up with line, keeping
// its tabs.
func padding(line string, n int) string {
	var sb strings.Builder
	for _, r := range line {
		if n <= 0 {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		n--
	}
	sb.WriteString(strings.Repeat(" ", max(n, 0)))
	return sb.String()
}
