package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "lyceum"

// sharedKernel packages may be imported by any layer of any context.
var sharedKernel = []string{
	modulePath + "/internal/shared/gate",
	modulePath + "/internal/shared/validation",
}

// applicationLibraries are third-party packages the application layer may use.
var applicationLibraries = []string{
	"golang.org/x/sync",
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	root := flag.String("root", "contexts", "directory holding bounded contexts")
	flag.Parse()

	violations := collectViolations(*root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks contexts/<context>/<service>/<layer>/... and checks
// every non-test Go file against the layer rules.
func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, relErr := filepath.Rel(filepath.Dir(root), path)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 {
			return nil
		}

		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, validateFile(path, filepath.ToSlash(rel), parts[3], servicePrefix)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations
}

func validateFile(path string, displayPath string, layer string, servicePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: displayPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{File: displayPath, Line: line, Import: importPath, Rule: rule})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, servicePrefix) {
			add("cross-context imports are forbidden; wire through bootstrap adapters")
		}

		switch layer {
		case "domain":
			if rule := checkCoreImport(importPath, "domain", []string{servicePrefix + "/domain"}); rule != "" {
				add(rule)
			}
		case "application":
			allowed := []string{
				servicePrefix + "/application",
				servicePrefix + "/domain",
				servicePrefix + "/ports",
			}
			allowed = append(allowed, applicationLibraries...)
			if rule := checkCoreImport(importPath, "application", allowed); rule != "" {
				add(rule)
			}
		case "ports":
			if strings.Contains(importPath, "/adapters/") {
				add("ports must not import adapters")
			}
		}
	}
	return violations
}

// checkCoreImport returns the violated rule for an inner-layer import, or "".
func checkCoreImport(importPath string, layer string, allowed []string) string {
	switch {
	case strings.Contains(importPath, "/adapters/"):
		return layer + " must not import adapters"
	case isAllowed(importPath, sharedKernel):
		return ""
	case hasPrefix(importPath, modulePath+"/internal"):
		return layer + " must not import runtime infrastructure"
	case isStdlib(importPath) || isAllowed(importPath, allowed):
		return ""
	default:
		return layer + " import is outside explicit allowlist"
	}
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
