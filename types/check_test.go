package types_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/nalgeon/be"

	"github.com/smasher164/autotype/ast"
	"github.com/smasher164/autotype/parser"
	. "github.com/smasher164/autotype/types"
)

func check(t *testing.T, src string, opts ...Option) (*Result, error) {
	t.Helper()
	prog, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Check(prog, opts...)
}

func checkOK(t *testing.T, src string) *Result {
	t.Helper()
	res, err := check(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func checkErr(t *testing.T, src string, kind error) *TypeError {
	t.Helper()
	_, err := check(t, src)
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var terr *TypeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TypeError, got %T", err)
	}
	return terr
}

func typeOf(t *testing.T, res *Result, name string) string {
	t.Helper()
	typ, ok := res.Lookup(name)
	if !ok {
		t.Fatalf("%s has no recorded type", name)
	}
	return typ.String()
}

func TestCheckTypes(t *testing.T) {
	run := func(name, src string, expected map[string]string) {
		t.Run(name, func(t *testing.T) {
			res := checkOK(t, src)
			got := map[string]string{}
			for name := range expected {
				got[name] = typeOf(t, res, name)
			}
			if diff := pretty.Diff(expected, got); len(diff) > 0 {
				t.Errorf("%v", diff)
			}
		})
	}

	run("auto int", "auto a = 5;", map[string]string{"a": "int"})
	run("auto bool", "auto a = true;", map[string]string{"a": "bool"})
	run("assign then print", "int x; x = 3; print(x);", map[string]string{"x": "int"})
	run("arrays", "int[] a; a = {1,2,3}; int v; v = a[0];", map[string]string{"a": "tab[int]", "v": "int"})
	run("call result", "bool f(int x) { return x > 0; } auto r = f(3);", map[string]string{"r": "bool", "f": "( int )->bool"})
	run("auto params", "auto id(auto x) { return x + 1; } auto r = id(2);",
		map[string]string{"id": "( int )->int", "x": "int", "r": "int"})
	run("empty array", "auto a = {}; a[0] = true;", map[string]string{"a": "tab[bool]"})
	run("nested arrays", "int[][] m; m[0][1] = 5; auto row = m[0];",
		map[string]string{"m": "tab[tab[int]]", "row": "tab[int]"})
	run("array of auto", "auto a; auto b = {a, 1};", map[string]string{"a": "int", "b": "tab[int]"})
	run("equality of arrays", "int[] a; auto b = {}; bool e = a == b;", map[string]string{"b": "tab[int]", "e": "bool"})
	run("operators", "auto n = -(1 + 2 * 3 % 4 / 5); auto b = !(n < 3) && n >= 0 || n != 2;",
		map[string]string{"n": "int", "b": "bool"})
	run("recursion", `
		int fact(int n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		auto r = fact(5);
	`, map[string]string{"fact": "( int )->int", "r": "int"})
	run("mutual recursion", `
		bool even(int n) {
			if (n == 0) { return true; }
			return odd(n - 1);
		}
		bool odd(int n) {
			if (n == 0) { return false; }
			return even(n - 1);
		}
	`, map[string]string{"even": "( int )->bool", "odd": "( int )->bool"})
	run("nested function", `
		int outer() {
			int count(int n) {
				if (n > 0) { return count(n - 1); }
				return 0;
			}
			return count(3);
		}
	`, map[string]string{"count": "( int )->int", "outer": "( )->int"})
	run("function parameters", `
		int apply(auto h, auto k) {
			int r = k(1);
			h = k;
			return h(2);
		}
	`, map[string]string{"r": "int", "h": "( int )->int", "k": "( int )->int"})
	run("globals inside functions", "int g = 1; auto f() { return g; }", map[string]string{"f": "( )->int"})
	run("loops", `
		int total = 0;
		for (int i = 0; i < 10; i = i + 1) {
			total = total + i;
		}
		while (total > 0) total = total - 1;
		for (;;) { }
	`, map[string]string{"total": "int", "i": "int"})
	run("auto return from later use", `
		auto first(auto[] xs) { return xs[0]; }
		bool b = first({true});
	`, map[string]string{"first": "( tab[bool] )->bool"})
}

func TestCheckErrors(t *testing.T) {
	run := func(name, src string, kind error, msg string) {
		t.Run(name, func(t *testing.T) {
			terr := checkErr(t, src, kind)
			if msg != "" && !strings.Contains(terr.Msg, msg) {
				t.Errorf("message %q does not contain %q", terr.Msg, msg)
			}
		})
	}

	run("redeclaration", "int a; bool a;", ErrRedeclaration, "a redeclared")
	run("redeclaration same type", "int a; int a;", ErrRedeclaration, "")
	run("redeclared block", "{ int a; { int a; } auto a; }", ErrRedeclaration, "")
	run("redeclared param", "int f(int a, bool a) { return 1; }", ErrRedeclaration, "parameter a")
	run("param redeclared in body", "int f(int a) { int a; return a; }", ErrRedeclaration, "")
	run("function redeclared", "int f() { return 1; } int f() { return 2; }", ErrRedeclaration, "function f")
	run("nested function named like global variable", "int f; int g() { int f() { return 1; } return f(); }",
		ErrRedeclaration, "f is declared at top level")
	run("nested function named like global function", "int f() { return 1; } int g() { bool f() { return true; } return 1; }",
		ErrRedeclaration, "f is declared at top level")
	run("function in nested block", "int f() { return 1; } { int f() { return 2; } }", ErrRedeclaration, "")
	run("redeclared before initializer", "int a; int a = b;", ErrRedeclaration, "a redeclared")
	run("mixed array", "auto a = {1, true};", ErrTypeMismatch, "mismatched element types int and bool")
	run("assign int to bool", "bool b; int y; b = y;", ErrTypeMismatch, "cannot assign int to b of type bool")
	run("arity", "bool f(int x) { return x > 0; } f(3, 4);", ErrArityMismatch, "f expects 1 arguments, got 2")
	run("argument", "bool f(int x) { return x > 0; } f(true);", ErrTypeMismatch, "argument 1 of f")
	run("undefined variable", "x = 1;", ErrUndefinedVariable, "undefined variable x")
	run("undefined in print", "print(y);", ErrUndefinedVariable, "")
	run("undefined function", "g();", ErrUndefinedFunction, "undefined function g")
	run("call non-function", "int g; g();", ErrInvalidOperand, "cannot call non-function g")
	run("unknown base type", "float x;", ErrUnknownBaseType, "unknown type float")
	run("unknown param type", "int f(string s) { return 1; }", ErrUnknownBaseType, "")
	run("return outside function", "return 1;", ErrReturnOutsideFunction, "")
	run("bare return", "int f() { return; }", ErrInvalidOperand, "missing return value")
	run("print function", "int f() { return 1; } print(f);", ErrInvalidOperand, "cannot print function f")
	run("function element", "int f() { return 1; } auto a = {f};", ErrInvalidOperand, "function type")
	run("function variable", "int f() { return 1; } auto g = f;", ErrInvalidOperand, "cannot declare variable g")
	run("assign to function", "int f() { return 1; } f = 2;", ErrInvalidOperand, "cannot assign to function f")
	run("function assigned to variable", "int f() { return 1; } auto g; g = f;", ErrInvalidOperand,
		"cannot assign f of function type ( )->int to g")
	run("function stored in array", "int f() { return 1; } auto a = {}; a[0] = f;", ErrInvalidOperand, "function type")
	run("not", "bool b = !1;", ErrTypeMismatch, `operand of "!" has type int, expected bool`)
	run("negate", "int n = -true;", ErrTypeMismatch, `operand of "-" has type bool, expected int`)
	run("add", "int s = 1 + true;", ErrTypeMismatch, `operand of "+" has type bool`)
	run("and", "bool c = true && 1;", ErrTypeMismatch, `operand of "&&"`)
	run("compare", "bool c = true < false;", ErrTypeMismatch, `operand of "<"`)
	run("equality", "bool e = 1 == true;", ErrTypeMismatch, "mismatched types int and bool")
	run("if condition", "if (1) { }", ErrTypeMismatch, `condition of "if" has type int, expected bool`)
	run("while condition", "while (0) { }", ErrTypeMismatch, `condition of "while"`)
	run("for condition", "for (int i = 0; i; i = i + 1) { }", ErrTypeMismatch, `condition of "for"`)
	run("for scope", "for (int i = 0; i < 3; i = i + 1) { } print(i);", ErrUndefinedVariable, "")
	run("index type", "int[] a; int v = a[true];", ErrTypeMismatch, "index has type bool")
	run("index non-array", "int a; int v = a[0];", ErrTypeMismatch, "cannot index a of type int")
	run("index depth", "int[][] m; m[0] = 5;", ErrTypeMismatch, "cannot assign int at index depth 1")
	run("initializer", "int x = true;", ErrTypeMismatch, "cannot initialize x of type int")
	run("occurs", "auto a; auto b; a = {b}; b = a;", ErrOccursCheck, "cannot unify")
	run("occurs nested", "auto a; a = {{a}};", ErrOccursCheck, "cannot unify")
	run("no capture", `
		int f() {
			int local = 1;
			int g() { return local; }
			return g();
		}
	`, ErrUndefinedVariable, "undefined variable local")
	run("main returns bool", "bool main() { return true; }", ErrTypeMismatch, "func main must have signature ( )->int")
	run("main with params", "int main(int a) { return a; }", ErrArityMismatch, "func main")
	run("return mismatch declared", "int f() { return true; }", ErrTypeMismatch, "cannot return bool from function f returning int")
}

func TestReturnPaths(t *testing.T) {
	src := "auto g(bool b) {\n" +
		"\tif (b) { return 1; }\n" +
		"\treturn true;\n" +
		"}\n"
	terr := checkErr(t, src, ErrTypeMismatch)
	be.Equal(t, terr.Pos().Line, 3)
	be.Equal(t, terr.Pos().Column, 2)
	be.Equal(t, terr.Offset, len("return "))
	be.Equal(t, terr.Node.Kind, ast.Return)
}

func TestErrorPosition(t *testing.T) {
	terr := checkErr(t, "int x;\nx = true;", ErrTypeMismatch)
	be.Equal(t, terr.Error(), "2:5: cannot assign bool to x of type int")
	be.Equal(t, terr.Node.Kind, ast.BoolLit)

	terr = checkErr(t, "int f() { return 1; }\nprint(f);", ErrInvalidOperand)
	be.Equal(t, terr.Pos().Column, 1)
	be.Equal(t, terr.Offset, len("print("))
	be.Equal(t, terr.Error(), "2:7: cannot print function f of type ( )->int")
}

func TestErrorCause(t *testing.T) {
	terr := checkErr(t, "bool b = 1;", ErrTypeMismatch)
	var uerr *UnifyError
	be.True(t, errors.As(terr.Cause, &uerr))
	be.True(t, errors.Is(terr.Cause, ErrTypeMismatch))
}

func TestTypeOf(t *testing.T) {
	prog, err := parser.ParseString("bool f(int x) { return x > 0; } auto r = f(3); auto a = {f(1)};")
	be.Err(t, err, nil)
	res, err := Check(prog)
	be.Err(t, err, nil)

	var calls, literals int
	ast.Walk(prog, func(n *ast.Node) bool {
		typ, ok := res.TypeOf(n)
		switch n.Kind {
		case ast.Call:
			calls++
			be.True(t, ok)
			be.Equal(t, typ.String(), "bool")
		case ast.ArrayLit:
			be.Equal(t, typ.String(), "tab[bool]")
		case ast.IntLit:
			literals++
			be.Equal(t, typ.String(), "int")
		case ast.Return:
			be.Equal(t, typ.String(), "bool")
		case ast.VarDecl, ast.Block:
			be.True(t, !ok)
		}
		return true
	})
	be.Equal(t, calls, 2)
	be.Equal(t, literals, 3)
}

func TestResultSurface(t *testing.T) {
	res := checkOK(t, "int main() { return 0; } int a; bool b; { int[] a; }")
	be.Equal(t, res.Root.String(), "( )->int")

	// the global a is left last, so it wins over the block's a
	be.Equal(t, typeOf(t, res, "a"), "int")

	var names []string
	for _, b := range res.Bindings() {
		names = append(names, b.ID.Name)
	}
	be.Equal(t, names, []string{"a", "main", "b"})

	// fresh variables are in the table too, fully resolved
	res.Table().Each(func(u Unknown, typ Type) {
		be.True(t, IsConcrete(typ))
	})

	res = checkOK(t, "int x;")
	be.True(t, res.Root == nil)
}

func TestCheckIsRepeatable(t *testing.T) {
	src := "auto id(auto x) { return x; } auto a = id({1}); int[] b = a;"
	first, second := checkOK(t, src), checkOK(t, src)
	be.Equal(t, first.Table().String(), second.Table().String())
}

func TestTrace(t *testing.T) {
	var sb strings.Builder
	_, err := check(t, "int f(int x) { return x; } int y = f(1);", WithTrace(&sb))
	be.Err(t, err, nil)
	out := sb.String()
	be.True(t, strings.HasPrefix(out, "Program"))
	be.True(t, strings.Contains(out, "  FuncDecl @1:1"))
	be.True(t, strings.Contains(out, "| x:"))
	be.True(t, strings.Contains(out, "| y:"))
	be.True(t, strings.Contains(out, "| \u2191"))
}
