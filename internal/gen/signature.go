package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/routegen/internal/ir"
)

// Variant selects one of the two methods emitted per route.
type Variant int

const (
	// VariantDefault runs with context.Background().
	VariantDefault Variant = iota
	// VariantContext takes ctx as its first parameter.
	VariantContext
)

// Param is a named parameter or result.
type Param struct {
	Name string
	Type TypeExpr
}

func (p Param) String() string { return p.Name + " " + p.Type.String() }

func (p Param) code() jen.Code { return jen.Id(p.Name).Add(p.Type.Code()) }

// Signature is a method signature. Results are always named.
type Signature struct {
	Name    string
	Params  []Param
	Results []Param
}

// String renders the signature as it appears in the Client interface.
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	results := make([]string, len(s.Results))
	for i, p := range s.Results {
		results[i] = p.String()
	}
	return s.Name + "(" + strings.Join(params, ", ") + ") (" + strings.Join(results, ", ") + ")"
}

// ParamNames returns the parameter names in order.
func (s Signature) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Code returns the signature as an interface method specification.
func (s Signature) Code() *jen.Statement {
	return jen.Id(s.Name).Params(s.paramCode()...).Params(s.resultCode()...)
}

func (s Signature) paramCode() []jen.Code {
	out := make([]jen.Code, len(s.Params))
	for i, p := range s.Params {
		out[i] = p.code()
	}
	return out
}

func (s Signature) resultCode() []jen.Code {
	out := make([]jen.Code, len(s.Results))
	for i, p := range s.Results {
		out[i] = p.code()
	}
	return out
}

// BuildSignature returns the signature of one variant of route r.
func BuildSignature(f *TypeFormatter, ns string, r ir.Route, v Variant) (Signature, error) {
	shape, err := ShapeOf(f.api, ns, r)
	if err != nil {
		return Signature{}, err
	}
	return buildSignature(f, ns, r, shape, v)
}

func buildSignature(f *TypeFormatter, ns string, r ir.Route, shape RouteShape, v Variant) (Signature, error) {
	sig := Signature{Name: MethodName(r)}
	if v == VariantContext {
		sig.Name = ContextMethodName(r)
		sig.Params = append(sig.Params, Param{"ctx", contextExpr})
	}

	if !shape.ArgVoid {
		arg, err := f.Format(ns, r.Arg, false)
		if err != nil {
			return Signature{}, err
		}
		sig.Params = append(sig.Params, Param{"arg", arg})
	}
	if shape.style().StreamParam {
		sig.Params = append(sig.Params, Param{"content", readerExpr})
	}

	if rf := shape.result(); rf.ResultParam {
		res, err := f.Format(ns, r.Result, rf.UseInterface)
		if err != nil {
			return Signature{}, err
		}
		sig.Results = append(sig.Results, Param{"res", res})
	}
	if shape.style().StreamResult {
		sig.Results = append(sig.Results, Param{"content", readCloserExpr})
	}
	sig.Results = append(sig.Results, Param{"err", errorExpr})
	return sig, nil
}
