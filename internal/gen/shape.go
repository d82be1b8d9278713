package gen

import (
	"fmt"

	"github.com/roach88/routegen/internal/ir"
)

// ResultShape is how a route's result is decoded.
type ResultShape int

const (
	// ResultVoid: nothing is decoded.
	ResultVoid ResultShape = iota
	// ResultStruct: the body is unmarshalled into res. Covers every
	// non-void result that is not a struct with enumerated subtypes.
	ResultStruct
	// ResultUnion: the body is unmarshalled into the union shadow and the
	// discriminant selects which variant is assigned to res.
	ResultUnion
)

func (s ResultShape) String() string {
	switch s {
	case ResultVoid:
		return "void"
	case ResultStruct:
		return "struct"
	case ResultUnion:
		return "union"
	}
	return fmt.Sprintf("ResultShape(%d)", int(s))
}

// RouteShape is the attribute tuple every emitter keys its choices on.
type RouteShape struct {
	ArgVoid    bool
	Result     ResultShape
	Style      ir.Style
	Deprecated bool

	// Union is the polymorphic result type when Result is ResultUnion.
	Union *ir.TypeDef
}

// styleFragments lists the stream-related fragments a style switches on.
type styleFragments struct {
	// StreamParam adds "content io.Reader" after arg.
	StreamParam bool
	// StreamResult adds "content io.ReadCloser" before err.
	StreamResult bool
	// ExecuteBody passes content as the request body instead of nil.
	ExecuteBody bool
	// BindStream assigns the response stream to content instead of
	// discarding it.
	BindStream bool
}

var styleTable = map[ir.Style]styleFragments{
	ir.StyleRPC:      {},
	ir.StyleUpload:   {StreamParam: true, ExecuteBody: true},
	ir.StyleDownload: {StreamResult: true, BindStream: true},
}

// resultFragments lists what a result shape contributes.
type resultFragments struct {
	// ResultParam adds "res T" to the return tuple.
	ResultParam bool
	// UseInterface formats the result with its Is<Name> interface.
	UseInterface bool
}

var resultTable = map[ResultShape]resultFragments{
	ResultVoid:   {},
	ResultStruct: {ResultParam: true, UseInterface: true},
	ResultUnion:  {ResultParam: true, UseInterface: true},
}

func (s RouteShape) style() styleFragments { return styleTable[s.Style] }

func (s RouteShape) result() resultFragments { return resultTable[s.Result] }

// ShapeOf classifies route r declared in namespace ns.
func ShapeOf(api *ir.API, ns string, r ir.Route) (RouteShape, error) {
	shape := RouteShape{
		ArgVoid:    r.Arg.IsVoid(),
		Style:      r.Style(),
		Deprecated: r.IsDeprecated(),
	}
	if _, ok := styleTable[shape.Style]; !ok {
		return RouteShape{}, fmt.Errorf("unknown style %q", shape.Style)
	}

	switch {
	case r.Result.IsVoid():
		shape.Result = ResultVoid
	case r.Result.Kind == ir.KindNamed:
		defNS := r.Result.DefiningNamespace(ns)
		def, ok := api.LookupType(defNS, r.Result.Name)
		if !ok {
			return RouteShape{}, fmt.Errorf("%w: result %s", ErrUnresolvedType, r.Result)
		}
		shape.Result = ResultStruct
		if def.HasEnumeratedSubtypes() {
			shape.Result = ResultUnion
			shape.Union = def
		}
	default:
		shape.Result = ResultStruct
	}
	return shape, nil
}
