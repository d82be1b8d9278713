package harness

import (
	"fmt"
	"go/ast"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/routegen/internal/gen"
)

// CheckInvariants checks the structure every client file must have,
// whatever the routes in it:
//
//   - every Client method is implemented by *apiImpl with the same signature
//   - each route's context variant takes ctx first and otherwise has the
//     default variant's parameters and results
//   - each default variant only delegates to its context variant
//   - each route has an <Ident>APIError wrapper embedding the runtime
//     APIError and carrying EndpointError under the "error" JSON key
//   - every import is used
//
// It returns one message per violation.
func CheckInvariants(file *ast.File) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	iface := clientInterface(file)
	if iface == nil {
		return []string{"no Client interface declared"}
	}

	impl := make(map[string]*ast.FuncDecl)
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Recv != nil && len(fd.Recv.List) > 0 &&
			types.ExprString(fd.Recv.List[0].Type) == "*apiImpl" {
			impl[fd.Name.Name] = fd
		}
	}

	sigs := make(map[string]*ast.FuncType)
	var order []string
	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			fail("Client embeds %s", types.ExprString(field.Type))
			continue
		}
		name := field.Names[0].Name
		sigs[name] = ft
		order = append(order, name)

		fd, ok := impl[name]
		if !ok {
			fail("%s: not implemented by *apiImpl", name)
			continue
		}
		if got, want := signature(fd.Type), signature(ft); got != want {
			fail("%s: implementation signature %s differs from interface %s", name, got, want)
		}
	}

	// Methods come in pairs: the default variant, then its context variant.
	if len(order)%2 != 0 {
		fail("Client declares %d methods, want default and context pairs", len(order))
	}
	wrappers := typeSpecs(file)
	for i := 0; i+1 < len(order); i += 2 {
		name, ctxName := order[i], order[i+1]
		if ctxName != name+gen.ContextSuffix {
			fail("%s: followed by %s, want %s%s", name, ctxName, name, gen.ContextSuffix)
			continue
		}
		checkVariants(name, sigs[name], sigs[ctxName], fail)
		if fd, ok := impl[name]; ok {
			checkDelegation(name, fd, fail)
		}
		checkWrapper(name+"APIError", wrappers, fail)
	}

	errs = append(errs, unusedImports(file)...)
	return errs
}

func clientInterface(file *ast.File) *ast.InterfaceType {
	for _, ts := range typeSpecs(file) {
		if iface, ok := ts.Type.(*ast.InterfaceType); ok && ts.Name.Name == "Client" {
			return iface
		}
	}
	return nil
}

func typeSpecs(file *ast.File) map[string]*ast.TypeSpec {
	specs := make(map[string]*ast.TypeSpec)
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				specs[ts.Name.Name] = ts
			}
		}
	}
	return specs
}

// fieldStrings flattens a field list to "name type" entries.
func fieldStrings(fl *ast.FieldList) []string {
	out := []string{}
	if fl == nil {
		return out
	}
	for _, f := range fl.List {
		typ := types.ExprString(f.Type)
		if len(f.Names) == 0 {
			out = append(out, typ)
			continue
		}
		for _, n := range f.Names {
			out = append(out, n.Name+" "+typ)
		}
	}
	return out
}

func checkVariants(name string, def, ctx *ast.FuncType, fail func(string, ...any)) {
	defParams, ctxParams := fieldStrings(def.Params), fieldStrings(ctx.Params)
	if len(ctxParams) == 0 || ctxParams[0] != "ctx context.Context" {
		fail("%s%s: first parameter must be ctx context.Context", name, gen.ContextSuffix)
		return
	}
	if !reflect.DeepEqual(defParams, ctxParams[1:]) {
		fail("%s: parameters %v differ from context variant %v", name, defParams, ctxParams[1:])
	}
	if d, c := fieldStrings(def.Results), fieldStrings(ctx.Results); !reflect.DeepEqual(d, c) {
		fail("%s: results %v differ from context variant %v", name, d, c)
	}
}

// checkDelegation verifies the body is exactly
// return dbx.<name>Context(context.Background(), params...).
func checkDelegation(name string, fd *ast.FuncDecl, fail func(string, ...any)) {
	want := []string{"context.Background()"}
	for _, p := range fieldStrings(fd.Type.Params) {
		want = append(want, strings.Fields(p)[0])
	}

	if len(fd.Body.List) != 1 {
		fail("%s: body must be a single return", name)
		return
	}
	ret, ok := fd.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		fail("%s: body must be a single return", name)
		return
	}
	call, ok := ret.Results[0].(*ast.CallExpr)
	if !ok || types.ExprString(call.Fun) != "dbx."+name+gen.ContextSuffix {
		fail("%s: must delegate to dbx.%s%s", name, name, gen.ContextSuffix)
		return
	}
	got := make([]string, len(call.Args))
	for i, a := range call.Args {
		got[i] = types.ExprString(a)
	}
	if !reflect.DeepEqual(got, want) {
		fail("%s: delegates with %v, want %v", name, got, want)
	}
}

func checkWrapper(name string, specs map[string]*ast.TypeSpec, fail func(string, ...any)) {
	ts, ok := specs[name]
	if !ok {
		fail("%s: not declared", name)
		return
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok || len(st.Fields.List) != 2 {
		fail("%s: must be a struct with two fields", name)
		return
	}
	embedded, endpoint := st.Fields.List[0], st.Fields.List[1]
	if len(embedded.Names) != 0 || !strings.HasSuffix(types.ExprString(embedded.Type), ".APIError") {
		fail("%s: first field must embed APIError", name)
	}
	if len(endpoint.Names) != 1 || endpoint.Names[0].Name != "EndpointError" {
		fail("%s: second field must be EndpointError", name)
		return
	}
	tag := ""
	if endpoint.Tag != nil {
		tag, _ = strconv.Unquote(endpoint.Tag.Value)
	}
	if tag != `json:"error"` {
		fail("%s: EndpointError tag is %q, want %q", name, tag, `json:"error"`)
	}
}

func unusedImports(file *ast.File) []string {
	used := make(map[string]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})

	var errs []string
	for _, spec := range file.Imports {
		if name := importName(spec); name != "_" && !used[name] {
			errs = append(errs, fmt.Sprintf("import %s is not used", spec.Path.Value))
		}
	}
	return errs
}
