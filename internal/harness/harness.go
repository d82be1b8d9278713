package harness

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/roach88/routegen/internal/gen"
	"github.com/roach88/routegen/internal/ir"
)

// Run renders the scenario's namespace and evaluates it.
//
// Execution flow:
//  1. Normalize the API (an empty type kind means struct)
//  2. Validate and render through gen.Generator, writing nothing
//  3. Parse the namespace file and build its Snapshot
//  4. Check the structural invariants every client file must hold
//  5. Evaluate the scenario's assertions
//
// A rendering failure is reported in Result.Err; it fails the result
// unless the scenario expects it. The returned error is reserved for
// failures of the harness itself.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with an explicit context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult(scenario.Namespace)
	api := normalize(scenario.API)

	g := gen.New(gen.Config{
		Options: gen.Options{
			SDKPackage:   scenario.Options.SDKPackage,
			Header:       scenario.Options.Header,
			StrictUnions: scenario.Options.StrictUnions,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	files, err := g.Render(ctx, &api)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil || scenario.ExpectError != "" {
		result.Err = err
		checkExpectedError(result, scenario.ExpectError, err)
		return result, nil
	}

	var src []byte
	for _, f := range files {
		if f.Namespace == scenario.Namespace {
			src = f.Content
		}
	}
	if src == nil {
		result.AddError(fmt.Sprintf("namespace %s produced no file", scenario.Namespace))
		return result, nil
	}
	result.Source = string(src)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, gen.FileName, src, parser.ParseComments)
	if err != nil {
		result.AddError(fmt.Sprintf("generated file does not parse: %v", err))
		return result, nil
	}
	result.Snapshot = BuildSnapshot(file)

	for _, msg := range CheckInvariants(file) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func checkExpectedError(result *Result, want string, err error) {
	switch {
	case want == "":
		result.AddError(fmt.Sprintf("render failed: %v", err))
	case err == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, render succeeded", want))
	case !strings.Contains(err.Error(), want):
		result.AddError(fmt.Sprintf("expected error containing %q, got %q", want, err.Error()))
	}
}

// normalize returns a copy of api with defaults applied to type kinds.
func normalize(api ir.API) ir.API {
	out := ir.API{Namespaces: make([]ir.Namespace, len(api.Namespaces))}
	for i, ns := range api.Namespaces {
		ns.Types = append([]ir.TypeDef(nil), ns.Types...)
		for j := range ns.Types {
			if ns.Types[j].Kind == "" {
				ns.Types[j].Kind = ir.DefStruct
			}
		}
		out.Namespaces[i] = ns
	}
	return out
}

// BuildSnapshot summarizes a parsed client file.
func BuildSnapshot(file *ast.File) *Snapshot {
	snap := &Snapshot{
		Package:  file.Name.Name,
		Header:   []string{},
		Imports:  []string{},
		Decls:    []string{},
		Methods:  []string{},
		Requests: map[string]map[string]string{},
	}

	for _, cg := range file.Comments {
		if cg.End() >= file.Package {
			break
		}
		for _, c := range cg.List {
			snap.Header = append(snap.Header, strings.TrimSpace(strings.TrimPrefix(c.Text, "//")))
		}
	}

	for _, spec := range file.Imports {
		p, _ := strconv.Unquote(spec.Path.Value)
		if spec.Name != nil {
			p = spec.Name.Name + " " + p
		}
		snap.Imports = append(snap.Imports, p)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				snap.Decls = append(snap.Decls, "type "+ts.Name.Name)
				if iface, ok := ts.Type.(*ast.InterfaceType); ok && ts.Name.Name == "Client" {
					snap.Methods = interfaceMethods(iface)
				}
			}
		case *ast.FuncDecl:
			snap.Decls = append(snap.Decls, funcDeclName(d))
			if d.Recv == nil || d.Body == nil {
				continue
			}
			if fields := requestFields(d.Body); fields != nil {
				snap.Requests[d.Name.Name] = fields
			}
		}
	}
	return snap
}

func funcDeclName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return "func " + d.Name.Name
	}
	return "func (" + types.ExprString(d.Recv.List[0].Type) + ") " + d.Name.Name
}

// interfaceMethods renders each method as "Name(params) (results)".
func interfaceMethods(iface *ast.InterfaceType) []string {
	methods := []string{}
	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			continue
		}
		methods = append(methods, field.Names[0].Name+signature(ft))
	}
	return methods
}

// signature renders a function type without the func keyword.
func signature(ft *ast.FuncType) string {
	return strings.TrimPrefix(types.ExprString(ft), "func")
}

// requestFields returns the fields of the first dropbox.Request literal in
// body, or nil when there is none.
func requestFields(body *ast.BlockStmt) map[string]string {
	var fields map[string]string
	ast.Inspect(body, func(n ast.Node) bool {
		if fields != nil {
			return false
		}
		lit, ok := n.(*ast.CompositeLit)
		if !ok {
			return true
		}
		sel, ok := lit.Type.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "Request" {
			return true
		}
		fields = map[string]string{}
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			fields[types.ExprString(kv.Key)] = types.ExprString(kv.Value)
		}
		return false
	})
	return fields
}

// importName returns the name an import is referred to by in the file.
func importName(spec *ast.ImportSpec) string {
	if spec.Name != nil {
		return spec.Name.Name
	}
	p, _ := strconv.Unquote(spec.Path.Value)
	base := path.Base(p)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(p))
	}
	return base
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
