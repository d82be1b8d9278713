package gen

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/tools/imports"

	"github.com/roach88/routegen/internal/ir"
)

// docWidth is the wrap width of route documentation in the Client interface.
const docWidth = 75

// docRef matches references such as :route:`list_folder` in documentation.
var docRef = regexp.MustCompile(":([a-z]+):`([^`]*)`")

// Assembler builds one file per namespace.
type Assembler struct {
	api   *ir.API
	opts  Options
	types *TypeFormatter
}

// NewAssembler returns an assembler for api.
func NewAssembler(api *ir.API, opts Options) *Assembler {
	opts = opts.WithDefaults()
	return &Assembler{api: api, opts: opts, types: NewTypeFormatter(api, opts)}
}

// routeArtifacts is everything emitted for one route.
type routeArtifacts struct {
	route      ir.Route
	shape      RouteShape
	defaultSig Signature
	contextSig Signature
}

// Assemble builds the client file of namespace ns. A namespace without
// routes has no file; Assemble returns nil for it.
func (a *Assembler) Assemble(ns *ir.Namespace) (*jen.File, error) {
	if !ns.HasRoutes() {
		return nil, nil
	}

	routes := make([]routeArtifacts, 0, len(ns.Routes))
	methods := make(map[string]string, 2*len(ns.Routes))
	for _, r := range ns.Routes {
		wire := WireRouteName(r)
		// Both variants share the method set, so list_context collides
		// with the context variant of list.
		names := []string{MethodName(r), ContextMethodName(r)}
		for _, name := range names {
			if prev, ok := methods[name]; ok {
				return nil, &Error{Namespace: ns.Name, Route: wire,
					Err: fmt.Errorf("%w: %s is also generated for route %s", ErrDuplicateMethod, name, prev)}
			}
		}
		for _, name := range names {
			methods[name] = wire
		}

		art, err := a.artifacts(ns.Name, r)
		if err != nil {
			return nil, &Error{Namespace: ns.Name, Route: wire, Err: err}
		}
		routes = append(routes, art)
	}

	f := jen.NewFilePathName(a.opts.NamespacePath(ns.Name), ns.Name)
	for _, line := range a.opts.Header {
		f.HeaderComment(line)
	}
	f.ImportName(a.opts.SDKPackage, a.opts.sdkName())
	for _, other := range append([]string{authNamespace}, namespaceNames(a.api)...) {
		if other != ns.Name {
			f.ImportName(a.opts.NamespacePath(other), other)
		}
	}

	f.Comment("Client interface describes all routes in this namespace")
	f.Type().Id("Client").Interface(a.interfaceMethods(routes)...)
	f.Line()

	f.Type().Id("apiImpl").Qual(a.opts.SDKPackage, "Context")
	f.Line()

	for _, art := range routes {
		if err := a.emitRoute(f, ns.Name, art); err != nil {
			return nil, &Error{Namespace: ns.Name, Route: WireRouteName(art.route), Err: err}
		}
	}

	f.Comment("New returns a Client implementation for this namespace")
	f.Func().Id("New").Params(jen.Id("c").Qual(a.opts.SDKPackage, "Config")).Id("Client").Block(
		jen.Id("ctx").Op(":=").Id("apiImpl").Call(jen.Qual(a.opts.SDKPackage, "NewContext").Call(jen.Id("c"))),
		jen.Return(jen.Op("&").Id("ctx")),
	)
	return f, nil
}

// Render assembles and formats the client file of namespace ns. It returns
// nil for a namespace without routes.
func (a *Assembler) Render(ns *ir.Namespace) ([]byte, error) {
	f, err := a.Assemble(ns)
	if err != nil || f == nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, &Error{Namespace: ns.Name, Err: fmt.Errorf("render: %w", err)}
	}
	// jen emits one sorted import block; split the standard library from
	// the SDK packages as gofmt-compatible groups.
	src, err := imports.Process(FileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, &Error{Namespace: ns.Name, Err: fmt.Errorf("group imports: %w", err)}
	}
	return src, nil
}

func (a *Assembler) artifacts(ns string, r ir.Route) (routeArtifacts, error) {
	shape, err := ShapeOf(a.api, ns, r)
	if err != nil {
		return routeArtifacts{}, err
	}
	def, err := buildSignature(a.types, ns, r, shape, VariantDefault)
	if err != nil {
		return routeArtifacts{}, err
	}
	ctx, err := buildSignature(a.types, ns, r, shape, VariantContext)
	if err != nil {
		return routeArtifacts{}, err
	}
	return routeArtifacts{route: r, shape: shape, defaultSig: def, contextSig: ctx}, nil
}

func (a *Assembler) interfaceMethods(routes []routeArtifacts) []jen.Code {
	var methods []jen.Code
	for _, art := range routes {
		for _, line := range routeDoc(art.route) {
			methods = append(methods, jen.Comment(line))
		}
		methods = append(methods, art.defaultSig.Code(), art.contextSig.Code())
	}
	return methods
}

// routeDoc returns the interface comment lines of a route: its wrapped
// documentation and a deprecation marker.
func routeDoc(r ir.Route) []string {
	var lines []string
	if doc := strings.Join(strings.Fields(docRef.ReplaceAllStringFunc(r.Doc, docReference)), " "); doc != "" {
		wrapped := wordwrap.WrapString(MethodName(r)+" : "+doc, docWidth)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	if r.Deprecated != nil {
		if by := r.Deprecated.By; by != nil {
			lines = append(lines, fmt.Sprintf("Deprecated: Use `%s` instead", replacementName(*by)))
		} else {
			lines = append(lines, "Deprecated:")
		}
	}
	return lines
}

// docReference renders one documentation reference. Routes are named by
// their lower-camel method identifier, as in "`listFolderV2`" for
// :route:`list_folder:2`; other references keep their text.
func docReference(ref string) string {
	m := docRef.FindStringSubmatch(ref)
	if m[1] != "route" {
		return "`" + m[2] + "`"
	}
	target, version := m[2], 1
	if name, v, ok := strings.Cut(target, ":"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			target, version = name, n
		}
	}
	var ns string
	if i := strings.LastIndex(target, "."); i >= 0 {
		ns, target = target[:i+1], target[i+1:]
	}
	return "`" + ns + versioned(strcase.ToLowerCamel(exportedIdent(target)), version) + "`"
}

func (a *Assembler) emitRoute(f *jen.File, ns string, art routeArtifacts) error {
	wrapper, err := a.errorWrapper(ns, art.route)
	if err != nil {
		return err
	}
	f.Add(wrapper)
	f.Line()

	body, err := a.contextBody(ns, art.route, art.shape)
	if err != nil {
		return err
	}
	f.Add(method(art.contextSig, body))
	f.Line()

	f.Add(method(art.defaultSig, defaultBody(art.route, art.defaultSig)))
	f.Line()
	return nil
}

func method(sig Signature, body []jen.Code) *jen.Statement {
	return jen.Func().Params(jen.Id("dbx").Op("*").Id("apiImpl")).
		Id(sig.Name).Params(sig.paramCode()...).Params(sig.resultCode()...).
		Block(body...)
}

func namespaceNames(api *ir.API) []string {
	names := make([]string, len(api.Namespaces))
	for i, ns := range api.Namespaces {
		names[i] = ns.Name
	}
	return names
}
