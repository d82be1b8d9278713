package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/routegen/internal/ir"
)

// requestFields renders the request literal one field per line, in a fixed
// order, with a trailing comma.
var requestFields = jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}

// decoder emits the statements that decode resp into res.
type decoder func(a *Assembler, ns string, r ir.Route, shape RouteShape) ([]jen.Code, error)

var decodeTable = map[ResultShape]decoder{
	ResultVoid:   decodeVoid,
	ResultStruct: decodeStruct,
	ResultUnion:  decodeUnion,
}

// contextBody emits the body of the context-explicit method.
func (a *Assembler) contextBody(ns string, r ir.Route, shape RouteShape) ([]jen.Code, error) {
	var body []jen.Code

	if shape.Deprecated {
		body = append(body, logf(fmt.Sprintf("WARNING: API `%s` is deprecated", MethodName(r))))
		if by := r.Deprecated.By; by != nil {
			body = append(body, logf(fmt.Sprintf("Use API `%s` instead", replacementName(*by))))
		}
		body = append(body, jen.Line())
	}

	body = append(body, a.request(ns, r, shape), jen.Line())

	requestBody := jen.Nil()
	if shape.style().ExecuteBody {
		requestBody = jen.Id("content")
	}
	body = append(body,
		jen.Var().Id("resp").Index().Byte(),
		jen.Var().Id("respBody").Qual("io", "ReadCloser"),
		jen.List(jen.Id("resp"), jen.Id("respBody"), jen.Err()).Op("=").
			Parens(jen.Op("*").Qual(a.opts.SDKPackage, "Context")).Parens(jen.Id("dbx")).
			Dot("Execute").Call(jen.Id("ctx"), jen.Id("req"), requestBody),
		a.errorUpgrade(ns, r),
		jen.Line(),
	)

	decode, ok := decodeTable[shape.Result]
	if !ok {
		return nil, fmt.Errorf("no decoder for %s result", shape.Result)
	}
	stmts, err := decode(a, ns, r, shape)
	if err != nil {
		return nil, err
	}
	body = append(body, stmts...)

	if shape.style().BindStream {
		body = append(body, jen.Id("content").Op("=").Id("respBody"))
	} else {
		body = append(body, jen.Id("_").Op("=").Id("respBody"))
	}
	return append(body, jen.Return()), nil
}

func logf(msg string) jen.Code {
	return jen.Qual("log", "Printf").Call(jen.Lit(msg))
}

// request emits the dropbox.Request literal.
func (a *Assembler) request(ns string, r ir.Route, shape RouteShape) jen.Code {
	arg := jen.Nil()
	if !shape.ArgVoid {
		arg = jen.Id("arg")
	}
	extraHeaders := jen.Nil()
	if forwardsExtraHeaders(r) && !shape.ArgVoid {
		extraHeaders = jen.Id("arg").Dot("ExtraHeaders")
	}

	return jen.Id("req").Op(":=").Qual(a.opts.SDKPackage, "Request").Custom(requestFields,
		jen.Id("Host").Op(":").Lit(r.Host()),
		jen.Id("Namespace").Op(":").Lit(ns),
		jen.Id("Route").Op(":").Lit(WireRouteName(r)),
		jen.Id("Auth").Op(":").Lit(r.Auth()),
		jen.Id("Style").Op(":").Lit(string(shape.Style)),
		jen.Id("Arg").Op(":").Add(arg),
		jen.Id("ExtraHeaders").Op(":").Add(extraHeaders),
	)
}

// errorUpgrade emits the execution error check. A failure that parses as
// the route's structured error is replaced by the wrapper value.
func (a *Assembler) errorUpgrade(ns string, r ir.Route) jen.Code {
	parseError := jen.Qual(a.opts.NamespacePath(authNamespace), "ParseError")
	if ns == authNamespace {
		parseError = jen.Id("ParseError")
	}

	return jen.If(jen.Err().Op("!=").Nil()).Block(
		jen.Var().Id("appErr").Id(ErrorWrapperName(r)),
		jen.Err().Op("=").Add(parseError).Call(jen.Err(), jen.Op("&").Id("appErr")),
		jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Op("&").Id("appErr"))).Block(
			jen.Err().Op("=").Id("appErr"),
		),
		jen.Return(),
	)
}

func decodeVoid(*Assembler, string, ir.Route, RouteShape) ([]jen.Code, error) {
	return []jen.Code{jen.Id("_").Op("=").Id("resp")}, nil
}

func decodeStruct(*Assembler, string, ir.Route, RouteShape) ([]jen.Code, error) {
	return []jen.Code{
		unmarshal("res"),
		returnOnError(),
		jen.Line(),
	}, nil
}

func decodeUnion(a *Assembler, ns string, r ir.Route, shape RouteShape) ([]jen.Code, error) {
	if shape.Union == nil {
		return nil, fmt.Errorf("union result %s has no definition", r.Result)
	}
	if defNS := r.Result.DefiningNamespace(ns); defNS != ns {
		return nil, fmt.Errorf("polymorphic result %s must be declared in namespace %s", r.Result, ns)
	}

	cases := make([]jen.Code, 0, len(shape.Union.Subtypes)+1)
	for _, st := range shape.Union.Subtypes {
		cases = append(cases, jen.Case(jen.Lit(st.Tag)).Block(
			jen.Id("res").Op("=").Id("tmp").Dot(variantField(st.Tag)),
		))
	}
	if a.opts.StrictUnions {
		cases = append(cases, jen.Default().Block(
			jen.Err().Op("=").Qual("fmt", "Errorf").Call(
				jen.Lit(fmt.Sprintf("unknown %s tag %%q", shape.Union.Name)),
				jen.Id("tmp").Dot("Tag"),
			),
			jen.Return(),
		))
	}

	return []jen.Code{
		jen.Var().Id("tmp").Id(unionShadowName(shape.Union.Name)),
		unmarshal("tmp"),
		returnOnError(),
		jen.Switch(jen.Id("tmp").Dot("Tag")).Block(cases...),
	}, nil
}

func unmarshal(into string) jen.Code {
	return jen.Err().Op("=").Qual("encoding/json", "Unmarshal").Call(jen.Id("resp"), jen.Op("&").Id(into))
}

func returnOnError() jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return())
}

// defaultBody delegates to the context-explicit method with
// context.Background() and the default variant's own parameters.
func defaultBody(r ir.Route, sig Signature) []jen.Code {
	args := []jen.Code{jen.Qual("context", "Background").Call()}
	for _, name := range sig.ParamNames() {
		args = append(args, jen.Id(name))
	}
	return []jen.Code{
		jen.Return(jen.Id("dbx").Dot(ContextMethodName(r)).Call(args...)),
	}
}
