package httpserver

import (
	"encoding/json"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

// registeredRoutes maps handler method name to its mux pattern, read from this package's sources.
func registeredRoutes(t *testing.T) (map[string]string, map[string]string) {
	t.Helper()
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}

	routes := map[string]string{}
	annotated := map[string]string{}
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.CallExpr:
				sel, ok := node.Fun.(*ast.SelectorExpr)
				if !ok || sel.Sel.Name != "HandleFunc" || len(node.Args) != 2 {
					return true
				}
				lit, ok := node.Args[0].(*ast.BasicLit)
				handler, ok2 := node.Args[1].(*ast.SelectorExpr)
				if !ok || !ok2 {
					return true
				}
				pattern, err := strconv.Unquote(lit.Value)
				if err != nil {
					t.Fatalf("pattern %s: %v", lit.Value, err)
				}
				routes[handler.Sel.Name] = pattern
			case *ast.FuncDecl:
				if node.Doc == nil {
					return true
				}
				for _, c := range node.Doc.List {
					if router, ok := strings.CutPrefix(c.Text, "// @Router "); ok {
						annotated[node.Name.Name] = router
					}
				}
			}
			return true
		})
	}
	return routes, annotated
}

func TestEveryRouteIsAnnotatedAndInSwaggerDoc(t *testing.T) {
	routes, annotated := registeredRoutes(t)
	if len(routes) < 30 {
		t.Fatalf("expected the full route table, found %d routes", len(routes))
	}

	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read swagger doc: %v", err)
	}
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode swagger doc: %v", err)
	}

	documented := 0
	for handler, pattern := range routes {
		method, path, _ := strings.Cut(pattern, " ")
		method = strings.ToLower(method)

		want := path + " [" + method + "]"
		if got := annotated[handler]; got != want {
			t.Errorf("%s serves %q but is annotated @Router %q", handler, pattern, got)
		}
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("swagger doc is missing %s %s", method, path)
		}
		documented++
	}

	operations := 0
	for _, methods := range doc.Paths {
		operations += len(methods)
	}
	if operations != documented {
		t.Fatalf("swagger doc lists %d operations, mux serves %d", operations, documented)
	}
}
