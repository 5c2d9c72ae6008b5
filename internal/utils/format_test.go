package utils

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSourcesIndentWithTabs walks the module and checks that code lines are
// indented with tabs, as gofmt writes them.  Lines inside raw strings and
// comments are left alone.
func TestSourcesIndentWithTabs(t *testing.T) {
	root := filepath.Join("..", "..")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, line := range spaceIndentedLines(t, path, src) {
			t.Errorf("%s:%d is indented with spaces", path, line)
		}
		return nil
	})
	require.NoError(t, err)
}

func spaceIndentedLines(t *testing.T, path string, src []byte) []int {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if !assert.NoError(t, err, path) {
		return nil
	}

	// continuation lines of raw strings and block comments are verbatim
	verbatim := map[int]bool{}
	mark := func(from, to token.Pos) {
		first, last := fset.Position(from).Line, fset.Position(to).Line
		for l := first + 1; l <= last; l++ {
			verbatim[l] = true
		}
	}
	ast.Inspect(f, func(n ast.Node) bool {
		if lit, ok := n.(*ast.BasicLit); ok && lit.Kind == token.STRING {
			mark(lit.Pos(), lit.End())
		}
		return true
	})
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			mark(c.Pos(), c.End())
		}
	}

	var bad []int
	for i, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, " ") && !verbatim[i+1] {
			bad = append(bad, i+1)
		}
	}
	return bad
}
