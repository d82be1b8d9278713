package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/routegen/internal/ir"
)

// ErrUnresolvedType is returned when a type reference names no declared type.
var ErrUnresolvedType = errors.New("unresolved type")

// ExprKind classifies a Go type expression.
type ExprKind int

const (
	ExprVoid ExprKind = iota
	ExprBuiltin
	ExprNamed
	ExprSlice
	ExprMap
)

// TypeExpr is a Go type expression produced from an IR type reference.
type TypeExpr struct {
	Kind ExprKind

	// Name is the builtin or type identifier.
	Name string

	// Package and Import qualify a named type declared in another package.
	// Both are empty for types local to the file being emitted.
	Package string
	Import  string

	Pointer bool

	// Elem is the element type of slices and the value type of maps.
	Elem *TypeExpr
}

var (
	voidExpr       = TypeExpr{Kind: ExprVoid}
	errorExpr      = TypeExpr{Kind: ExprBuiltin, Name: "error"}
	contextExpr    = qualifiedExpr("context", "Context")
	readerExpr     = qualifiedExpr("io", "Reader")
	readCloserExpr = qualifiedExpr("io", "ReadCloser")
)

func qualifiedExpr(importPath, name string) TypeExpr {
	return TypeExpr{Kind: ExprNamed, Name: name, Package: packageName(importPath), Import: importPath}
}

var primitiveExprs = map[string]TypeExpr{
	ir.PrimString:    {Kind: ExprBuiltin, Name: "string"},
	ir.PrimBoolean:   {Kind: ExprBuiltin, Name: "bool"},
	ir.PrimInt32:     {Kind: ExprBuiltin, Name: "int32"},
	ir.PrimInt64:     {Kind: ExprBuiltin, Name: "int64"},
	ir.PrimUInt32:    {Kind: ExprBuiltin, Name: "uint32"},
	ir.PrimUInt64:    {Kind: ExprBuiltin, Name: "uint64"},
	ir.PrimFloat32:   {Kind: ExprBuiltin, Name: "float32"},
	ir.PrimFloat64:   {Kind: ExprBuiltin, Name: "float64"},
	ir.PrimTimestamp: qualifiedExpr("time", "Time"),
	ir.PrimBytes:     {Kind: ExprSlice, Elem: &TypeExpr{Kind: ExprBuiltin, Name: "byte"}},
}

// IsVoid reports whether the expression is empty.
func (e TypeExpr) IsVoid() bool { return e.Kind == ExprVoid }

// String renders the expression as Go source.
func (e TypeExpr) String() string {
	switch e.Kind {
	case ExprVoid:
		return ""
	case ExprBuiltin:
		return e.Name
	case ExprNamed:
		var b strings.Builder
		if e.Pointer {
			b.WriteByte('*')
		}
		if e.Package != "" {
			b.WriteString(e.Package)
			b.WriteByte('.')
		}
		b.WriteString(e.Name)
		return b.String()
	case ExprSlice:
		return "[]" + e.Elem.String()
	case ExprMap:
		return "map[string]" + e.Elem.String()
	}
	return fmt.Sprintf("<expr %d>", e.Kind)
}

// Code returns the expression as a jen fragment. Qualified names register
// their import with the file the fragment is rendered into.
func (e TypeExpr) Code() *jen.Statement {
	switch e.Kind {
	case ExprBuiltin:
		return jen.Id(e.Name)
	case ExprNamed:
		name := jen.Id(e.Name)
		if e.Import != "" {
			name = jen.Qual(e.Import, e.Name)
		}
		if e.Pointer {
			return jen.Op("*").Add(name)
		}
		return name
	case ExprSlice:
		return jen.Index().Add(e.Elem.Code())
	case ExprMap:
		return jen.Map(jen.String()).Add(e.Elem.Code())
	}
	return jen.Null()
}

// TypeFormatter maps IR type references to Go type expressions.
// It holds no state beyond the API it resolves against.
type TypeFormatter struct {
	api  *ir.API
	opts Options
}

// NewTypeFormatter returns a formatter resolving names against api.
func NewTypeFormatter(api *ir.API, opts Options) *TypeFormatter {
	return &TypeFormatter{api: api, opts: opts.WithDefaults()}
}

// Format converts ref, as it appears in namespace ns, to a Go type.
// Structs and unions become pointers; a struct with enumerated subtypes
// becomes its Is<Name> interface when useInterface is set. Nullability does
// not change the Go type.
func (f *TypeFormatter) Format(ns string, ref ir.TypeRef, useInterface bool) (TypeExpr, error) {
	switch ref.Kind {
	case ir.KindVoid, "":
		return voidExpr, nil
	case ir.KindPrimitive:
		e, ok := primitiveExprs[ref.Name]
		if !ok {
			return TypeExpr{}, fmt.Errorf("%w: primitive %q", ErrUnresolvedType, ref.Name)
		}
		return e, nil
	case ir.KindList, ir.KindMap:
		if ref.Elem == nil {
			return TypeExpr{}, fmt.Errorf("%w: %s without element type", ErrUnresolvedType, ref)
		}
		elem, err := f.Format(ns, *ref.Elem, useInterface)
		if err != nil {
			return TypeExpr{}, err
		}
		if elem.IsVoid() {
			return TypeExpr{}, fmt.Errorf("%w: %s has void element", ErrUnresolvedType, ref)
		}
		kind := ExprSlice
		if ref.Kind == ir.KindMap {
			kind = ExprMap
		}
		return TypeExpr{Kind: kind, Elem: &elem}, nil
	case ir.KindNamed:
		return f.formatNamed(ns, ref, useInterface)
	}
	return TypeExpr{}, fmt.Errorf("%w: unknown kind %q", ErrUnresolvedType, ref.Kind)
}

func (f *TypeFormatter) formatNamed(ns string, ref ir.TypeRef, useInterface bool) (TypeExpr, error) {
	defNS := ref.DefiningNamespace(ns)
	def, ok := f.api.LookupType(defNS, ref.Name)
	if !ok {
		return TypeExpr{}, fmt.Errorf("%w: %s.%s", ErrUnresolvedType, defNS, ref.Name)
	}

	e := TypeExpr{Kind: ExprNamed, Name: def.Name, Pointer: true}
	if useInterface && def.HasEnumeratedSubtypes() {
		e.Name = "Is" + def.Name
		e.Pointer = false
	}
	if defNS != ns {
		e.Package = defNS
		e.Import = f.opts.NamespacePath(defNS)
	}
	return e, nil
}

// Resolve parses a Go type expression produced by Format in namespace ns
// back into an IR type reference. Named references come back qualified.
func (f *TypeFormatter) Resolve(ns, expr string) (ir.TypeRef, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "":
		return ir.Void(), nil
	case s == "[]byte":
		return ir.Primitive(ir.PrimBytes), nil
	case s == "time.Time":
		return ir.Primitive(ir.PrimTimestamp), nil
	case strings.HasPrefix(s, "[]"):
		elem, err := f.Resolve(ns, s[len("[]"):])
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.ListOf(elem), nil
	case strings.HasPrefix(s, "map[string]"):
		elem, err := f.Resolve(ns, s[len("map[string]"):])
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.MapOf(elem), nil
	}

	for prim, e := range primitiveExprs {
		if e.Kind == ExprBuiltin && e.Name == s {
			return ir.Primitive(prim), nil
		}
	}

	pointer := strings.HasPrefix(s, "*")
	s = strings.TrimPrefix(s, "*")
	defNS := ns
	if pkg, name, ok := strings.Cut(s, "."); ok {
		defNS, s = pkg, name
	}

	if pointer {
		if _, ok := f.api.LookupType(defNS, s); ok {
			return ir.QualifiedNamed(defNS, s), nil
		}
	} else if name, ok := strings.CutPrefix(s, "Is"); ok {
		if def, ok := f.api.LookupType(defNS, name); ok && def.HasEnumeratedSubtypes() {
			return ir.QualifiedNamed(defNS, name), nil
		}
	}
	return ir.TypeRef{}, fmt.Errorf("%w: %q in namespace %s", ErrUnresolvedType, expr, ns)
}
