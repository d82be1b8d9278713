package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/routegen/internal/ir"
)

// errorWrapper emits the route's error type:
//
//	// XAPIError is an error-wrapper for the x route
//	type XAPIError struct {
//		dropbox.APIError
//		EndpointError *XError `json:"error"`
//	}
//
// A void error payload is typed struct{}.
func (a *Assembler) errorWrapper(ns string, r ir.Route) (*jen.Statement, error) {
	payload, err := a.types.Format(ns, r.Error, false)
	if err != nil {
		return nil, err
	}
	payloadCode := payload.Code()
	if payload.IsVoid() {
		payloadCode = jen.Struct()
	}

	name := ErrorWrapperName(r)
	return jen.Comment(fmt.Sprintf("%s is an error-wrapper for the %s route", name, WireRouteName(r))).
		Line().
		Type().Id(name).Struct(
		jen.Qual(a.opts.SDKPackage, "APIError"),
		jen.Id("EndpointError").Add(payloadCode).Tag(map[string]string{"json": "error"}),
	), nil
}
