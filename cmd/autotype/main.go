// Command autotype infers and checks the types of a program and prints the
// type of every variable it declares.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smasher164/autotype/ast"
	"github.com/smasher164/autotype/diag"
	"github.com/smasher164/autotype/lexer"
	"github.com/smasher164/autotype/parser"
	"github.com/smasher164/autotype/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("autotype", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default "+DefaultConfig+" if present)")
	trace := fs.Bool("trace", false, "trace the parser and checker to stderr")
	format := fs.String("format", "", "output format: text or yaml")
	fresh := fs.Bool("fresh", false, "include anonymous type variables in the output")
	dumpAST := fs.Bool("ast", false, "print the syntax tree before checking")
	dump := fs.Bool("dump", false, "print the full node structure before checking")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: autotype [options] <file"+lexer.Ext+">")
		fs.PrintDefaults()
		return 2
	}

	path := *configPath
	if path == "" {
		path = DefaultConfig
	}
	cfg, err := loadConfig(path, *configPath != "")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// flags given on the command line override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "format":
			cfg.Format = *format
		case "fresh":
			cfg.Fresh = *fresh
		case "ast":
			cfg.AST = *dumpAST
		case "dump":
			cfg.Dump = *dump
		}
	})
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	filename := fs.Arg(0)
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	var parseOpts []parser.Option
	var checkOpts []types.Option
	if cfg.Trace {
		parseOpts = append(parseOpts, parser.WithTrace(stderr))
		checkOpts = append(checkOpts, types.WithTrace(stderr))
	}
	prog, err := parser.ParseFile(os.DirFS(filepath.Dir(filename)), filepath.Base(filename), parseOpts...)
	if err != nil {
		diag.Fprint(stderr, string(src), err)
		return 1
	}
	if cfg.AST {
		ast.PrintAST(stdout, prog)
	}
	if cfg.Dump {
		fmt.Fprintln(stdout, ast.Dump(prog))
	}
	res, err := types.Check(prog, checkOpts...)
	if err != nil {
		diag.Fprint(stderr, string(src), err)
		return 1
	}
	if err := writeBindings(stdout, cfg, res); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

type bindingOut struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type resultOut struct {
	Main     string       `yaml:"main,omitempty"`
	Bindings []bindingOut `yaml:"bindings"`
}

func collect(cfg Config, res *types.Result) resultOut {
	var out resultOut
	if res.Root != nil {
		out.Main = res.Root.String()
	}
	res.Table().Each(func(u types.Unknown, t types.Type) {
		if !u.IsNamed() && !cfg.Fresh {
			return
		}
		name := u.Name
		if !u.IsNamed() {
			name = u.String()
		}
		out.Bindings = append(out.Bindings, bindingOut{Name: name, Type: t.String()})
	})
	return out
}

func writeBindings(w io.Writer, cfg Config, res *types.Result) error {
	out := collect(cfg, res)
	if cfg.Format == "text" {
		for _, b := range out.Bindings {
			fmt.Fprintf(w, "%s : %s\n", b.Name, b.Type)
		}
		return nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
