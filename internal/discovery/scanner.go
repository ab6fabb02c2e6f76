// Package discovery finds e2e test names in a Go test package.
//
// The [Scanner] parses the *_test.go files of a single directory and
// collects top-level test functions, so workflows can be generated for a
// whole suite without listing every test by hand.
package discovery

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

var (
	// ErrNotADirectory is returned when the scan root is missing or is a file.
	ErrNotADirectory = zerr.New("test path is not a directory")

	// ErrParseFailed is returned when a test file does not parse.
	ErrParseFailed = zerr.New("failed to parse test file")

	// ErrNoTestsFound is returned when a scan finds no test functions.
	ErrNoTestsFound = zerr.New("no tests found")
)

// Scanner collects test function names from a Go package directory.
type Scanner struct {
	fs afero.Fs
}

// NewScanner creates a [Scanner] reading from fs.
func NewScanner(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// Scan returns the names of the test functions declared in the *_test.go
// files of dir.
//
// Files are visited in lexical order and functions in source order. A name
// declared in more than one file (possible across build tags) is returned
// once. Subdirectories are not scanned. Returns [ErrNoTestsFound] when the
// directory holds no test functions.
func (s *Scanner) Scan(dir string) ([]string, error) {
	dir = filepath.Clean(dir)

	info, err := s.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read test directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	fset := token.NewFileSet()
	seen := make(map[string]bool)
	var names []string

	for _, path := range files {
		src, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read test file %s: %w", path, err)
		}

		f, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrParseFailed, path, err)
		}

		for _, name := range testFuncs(f) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTestsFound, dir)
	}
	return names, nil
}

// testFuncs returns the test functions declared in f, in source order.
func testFuncs(f *ast.File) []string {
	var names []string
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		if isTestFunc(fn) {
			names = append(names, fn.Name.Name)
		}
	}
	return names
}

// isTestFunc reports whether fn has the shape go test runs:
// func TestXxx(t *testing.T), where Xxx does not start with a lower-case
// letter.
func isTestFunc(fn *ast.FuncDecl) bool {
	name := fn.Name.Name
	if !strings.HasPrefix(name, "Test") || name == "TestMain" {
		return false
	}
	if rest := name[len("Test"):]; rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsLower(r) {
			return false
		}
	}

	if fn.Type.TypeParams != nil || fn.Type.Results != nil {
		return false
	}
	params := fn.Type.Params.List
	if len(params) != 1 || len(params[0].Names) > 1 {
		return false
	}

	star, ok := params[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "T" {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "testing"
}
