package diag_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/smasher164/autotype/diag"
	"github.com/smasher164/autotype/parser"
	"github.com/smasher164/autotype/types"
)

func render(t *testing.T, src string) string {
	t.Helper()
	var sb strings.Builder
	prog, err := parser.ParseString(src)
	if err == nil {
		_, err = types.Check(prog)
	}
	if err == nil {
		t.Fatalf("expected an error for %q", src)
	}
	diag.Fprint(&sb, src, err)
	return sb.String()
}

func TestFprint(t *testing.T) {
	run := func(name, src string, expected ...string) {
		t.Run(name, func(t *testing.T) {
			be.Equal(t, render(t, src), strings.Join(expected, "\n")+"\n")
		})
	}

	run("type error", "int x;\nx = true;",
		"Error line 2 column 5 : cannot assign bool to x of type int",
		"x = true;",
		"    ^")
	run("offset", "int f() { return 1; }\nprint(f);",
		"Error line 2 column 1 : cannot print function f of type ( )->int",
		"print(f);",
		"      ^")
	run("tabs", "auto g(bool b) {\n\tif (b) { return 1; }\n\treturn true;\n}",
		"Error line 3 column 2 : cannot return bool from function g returning int",
		"\treturn true;",
		"\t       ^")
	run("syntax error", "x = ;",
		"Error line 1 column 5 : expected expression, found \";\"",
		"x = ;",
		"    ^")
	run("undefined", "int a;\n  y = 1;",
		"Error line 2 column 3 : undefined variable y",
		"  y = 1;",
		"  ^")
}

func TestFprintUnpositioned(t *testing.T) {
	var sb strings.Builder
	diag.Fprint(&sb, "int a;", errors.New("boom"))
	be.Equal(t, sb.String(), "Error : boom\n")
}

func TestFprintWrapped(t *testing.T) {
	prog, err := parser.ParseString("bool b = 1;")
	be.Err(t, err, nil)
	_, err = types.Check(prog)
	var sb strings.Builder
	diag.Fprint(&sb, "bool b = 1;", fmt.Errorf("checking: %w", err))
	be.True(t, strings.HasPrefix(sb.String(), "Error line 1 column 10 : cannot initialize b"))
}

func TestFprintLineOutOfRange(t *testing.T) {
	var sb strings.Builder
	diag.Fprint(&sb, "", &parser.Error{Msg: "lost"})
	be.Equal(t, sb.String(), "Error line 0 column 0 : lost\n")
}
