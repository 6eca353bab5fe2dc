// Package casebook reads type-inference test cases out of Markdown documents.
//
// A case starts at a heading of the form "Test: <name>" and is followed by a
// program fence and one assertion fence:
//
//	```program
//	auto a = 5;
//	```
//
//	```types
//	a : int
//	```
//
// An error fence names the expected error kind on its first line and may give
// a fragment of the expected message on the second.
package casebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/smasher164/autotype/types"
)

const (
	FenceProgram = "program"
	FenceTypes   = "types"
	FenceError   = "error"
)

// Binding is one expected "name : type" line.
type Binding struct {
	Name string
	Type string
}

type ErrorExpectation struct {
	Kind string
	// Msg, if set, must occur in the error message.
	Msg string
}

func (e *ErrorExpectation) Err() error {
	return types.Kinds[e.Kind]
}

type Case struct {
	Name    string
	Line    int
	Program string
	Types   []Binding
	Error   *ErrorExpectation
}

// Extract returns the cases of a Markdown document in order of appearance.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var cur *Case
	finish := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur); err != nil {
			return err
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, markdown)
			name, ok := strings.CutPrefix(title, "Test: ")
			if !ok {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{Name: name, Line: lineOf(n, markdown)}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if cur == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
				}
				return ast.WalkContinue, nil
			}
			if err := cur.addFence(lang, fenceContent(n, markdown)); err != nil {
				return ast.WalkStop, fmt.Errorf("line %d: test %q: %w", line, cur.Name, err)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *Case) addFence(lang, content string) error {
	switch lang {
	case FenceProgram:
		if c.Program != "" {
			return fmt.Errorf("multiple %s fences", lang)
		}
		c.Program = content
	case FenceTypes:
		for _, line := range nonEmptyLines(content) {
			name, typ, ok := strings.Cut(line, ":")
			if !ok {
				return fmt.Errorf("malformed binding %q, want \"name : type\"", line)
			}
			c.Types = append(c.Types, Binding{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)})
		}
	case FenceError:
		if c.Error != nil {
			return fmt.Errorf("multiple %s fences", lang)
		}
		lines := nonEmptyLines(content)
		if len(lines) == 0 || len(lines) > 2 {
			return fmt.Errorf("error fence wants a kind and an optional message")
		}
		c.Error = &ErrorExpectation{Kind: lines[0]}
		if _, ok := types.Kinds[c.Error.Kind]; !ok {
			return fmt.Errorf("unknown error kind %q", c.Error.Kind)
		}
		if len(lines) == 2 {
			c.Error.Msg = lines[1]
		}
	case "":
		// unlabeled fences are prose
	default:
		return fmt.Errorf("unknown fence language %q", lang)
	}
	return nil
}

func validate(c *Case) error {
	if c.Program == "" {
		return fmt.Errorf("test %q has no %s fence", c.Name, FenceProgram)
	}
	if c.Error != nil && len(c.Types) > 0 {
		return fmt.Errorf("test %q expects both an error and types", c.Name)
	}
	return nil
}

func nonEmptyLines(s string) []string {
	lines := lo.Map(strings.Split(s, "\n"), func(l string, _ int) string {
		return strings.TrimSpace(l)
	})
	return lo.Filter(lines, func(l string, _ int) bool { return l != "" })
}

func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(n *ast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func lineOf(n ast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(src[:n.Lines().At(0).Start], []byte("\n")) + 1
}
