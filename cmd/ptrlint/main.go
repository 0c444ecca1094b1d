// Command ptrlint audits the handful of files in zbuf that convert
// unsafe.Pointer to or from the tagged control word, flagging any
// conversion that isn't visibly guarded by one of the promotion helpers.
//
// This is a narrow, repo-local check -- not a whole-program analysis --
// grounded on the same need the teacher's go/pointer-based kernel tooling
// serves (auditing raw pointer arithmetic against a hand-maintained
// invariant) but scaled to a single package with no cgo or bootloader
// boundary, so go/ast + go/parser + go/token from the standard library are
// enough; it deliberately does not pull in golang.org/x/tools.
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
)

// maxUnsafeConversions is a pinned baseline: the count of
// unsafe.Pointer(...) conversions across the audited files as of the last
// time this check and the buffer implementation were reviewed together.
// Bump it (and explain why in the commit) only alongside a matching test
// addition, per spec.md §9's warning that the promotion CAS is the
// subtlest piece of the library.
const maxUnsafeConversions = 40

var guardedCallees = map[string]bool{
	"promoteWithSlice":  true,
	"loadCtl":           true,
	"increment":         true,
	"release":           true,
	"releaseIntoSlice":  true,
	"isUnique":          true,
	"ptrOffsetWithin":   true,
	"sliceOffsetWithin": true,
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{"ctl.go", "shared.go", "mut.go"}
	}

	fset := token.NewFileSet()
	total := 0
	var unguarded []string

	for _, path := range files {
		src, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ptrlint: %v\n", err)
			os.Exit(1)
		}

		ast.Inspect(src, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isUnsafePointerConversion(call.Fun) {
				return true
			}
			total++
			if !enclosingCallGuarded(src, call, guardedCallees) {
				pos := fset.Position(call.Pos())
				unguarded = append(unguarded, fmt.Sprintf("%s:%d: unguarded unsafe.Pointer conversion", pos.Filename, pos.Line))
			}
			return true
		})
	}

	for _, msg := range unguarded {
		fmt.Fprintln(os.Stderr, msg)
	}
	if total > maxUnsafeConversions {
		fmt.Fprintf(os.Stderr, "ptrlint: %d unsafe.Pointer conversions exceeds pinned baseline of %d\n", total, maxUnsafeConversions)
		os.Exit(1)
	}
	if len(unguarded) > 0 {
		os.Exit(1)
	}
}

// isUnsafePointerConversion reports whether fun names unsafe.Pointer (a
// type conversion, unsafe.Pointer(x)) or one of unsafe.Add, unsafe.Slice
// and unsafe.SliceData, so that a call through it counts as a conversion.
func isUnsafePointerConversion(fun ast.Expr) bool {
	sel, ok := fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok || ident.Name != "unsafe" {
		return false
	}
	switch sel.Sel.Name {
	case "Pointer", "Add", "Slice", "SliceData":
		return true
	}
	return false
}

// enclosingCallGuarded reports whether call's position falls lexically
// inside a function whose name is one of the recognized promotion/release
// helpers -- a coarse but adequate proxy for "this conversion happens
// inside code that already reasons about the tagged word's invariants".
func enclosingCallGuarded(file *ast.File, call *ast.CallExpr, allow map[string]bool) bool {
	var enclosing string
	ast.Inspect(file, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok {
			return true
		}
		if fn.Pos() <= call.Pos() && call.Pos() <= fn.End() {
			enclosing = fn.Name.Name
		}
		return true
	})
	return allow[enclosing]
}
