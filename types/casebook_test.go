package types_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smasher164/autotype/casebook"
	"github.com/smasher164/autotype/parser"
	"github.com/smasher164/autotype/types"
)

func TestCasebook(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test documents in testdata")
	}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		cases, err := casebook.Extract(src)
		if err != nil {
			t.Fatalf("%s: %v", file, err)
		}
		for _, tc := range cases {
			t.Run(filepath.Base(file)+"/"+tc.Name, func(t *testing.T) {
				runCase(t, file, tc)
			})
		}
	}
}

func runCase(t *testing.T, file string, tc casebook.Case) {
	prog, err := parser.ParseString(tc.Program)
	if err != nil {
		t.Fatalf("%s:%d: parse: %v", file, tc.Line, err)
	}
	res, err := types.Check(prog)
	if tc.Error != nil {
		if !errors.Is(err, tc.Error.Err()) {
			t.Fatalf("%s:%d: expected %s error, got %v", file, tc.Line, tc.Error.Kind, err)
		}
		if !strings.Contains(err.Error(), tc.Error.Msg) {
			t.Errorf("%s:%d: error %q does not contain %q", file, tc.Line, err, tc.Error.Msg)
		}
		return
	}
	if err != nil {
		t.Fatalf("%s:%d: %v", file, tc.Line, err)
	}
	for _, b := range tc.Types {
		got, ok := res.Lookup(b.Name)
		if !ok {
			t.Errorf("%s:%d: no type recorded for %s", file, tc.Line, b.Name)
			continue
		}
		if got.String() != b.Type {
			t.Errorf("%s:%d: %s : %s, expected %s", file, tc.Line, b.Name, got, b.Type)
		}
	}
}
