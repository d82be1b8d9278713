package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/routegen/internal/ir"
)

// CompileAPI compiles every namespace under the "namespace" field of v.
//
//	namespace: files: {
//		doc: "..."
//		types: {
//			Metadata: {kind: "struct", subtypes: [{tag: "file", type: "FileMetadata"}]}
//			FileMetadata: kind: "struct"
//		}
//		routes: [{name: "get_metadata", arg: "GetMetadataArg", result: "Metadata"}]
//	}
//
// Namespaces, types and routes keep declaration order.
func CompileAPI(v cue.Value) (*ir.API, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	nsVal := v.LookupPath(cue.ParsePath("namespace"))
	if !nsVal.Exists() {
		return nil, &CompileError{
			Field:   "namespace",
			Message: "at least one namespace is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := nsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	api := &ir.API{}
	for iter.Next() {
		ns, err := CompileNamespace(iter.Value())
		if err != nil {
			return nil, err
		}
		api.Namespaces = append(api.Namespaces, *ns)
	}
	return api, nil
}

// CompileNamespace compiles one namespace struct. The namespace name is the
// struct's label.
func CompileNamespace(v cue.Value) (*ir.Namespace, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ns := &ir.Namespace{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		ns.Name = labels[len(labels)-1].Unquoted()
	}

	doc, err := optionalString(v, "doc")
	if err != nil {
		return nil, err
	}
	ns.Doc = doc

	ns.Types, err = parseTypes(v)
	if err != nil {
		return nil, err
	}

	ns.Routes, err = parseRoutes(v)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// parseTypes extracts type definitions in declaration order.
func parseTypes(v cue.Value) ([]ir.TypeDef, error) {
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, nil
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var types []ir.TypeDef
	for iter.Next() {
		name := iter.Selector().Unquoted()
		tv := iter.Value()

		kind, err := optionalString(tv, "kind")
		if err != nil {
			return nil, err
		}
		if kind == "" {
			kind = string(ir.DefStruct)
		}
		def := ir.TypeDef{Name: name, Kind: ir.TypeDefKind(kind)}

		subVal := tv.LookupPath(cue.ParsePath("subtypes"))
		if subVal.Exists() {
			subIter, err := subVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for subIter.Next() {
				sv := subIter.Value()
				tag, err := requiredString(sv, "tag", fmt.Sprintf("types.%s.subtypes.tag", name))
				if err != nil {
					return nil, err
				}
				typ, err := requiredString(sv, "type", fmt.Sprintf("types.%s.subtypes.type", name))
				if err != nil {
					return nil, err
				}
				def.Subtypes = append(def.Subtypes, ir.Subtype{Tag: tag, Type: typ})
			}
		}

		types = append(types, def)
	}
	return types, nil
}

// parseRoutes extracts the ordered route list.
func parseRoutes(v cue.Value) ([]ir.Route, error) {
	routesVal := v.LookupPath(cue.ParsePath("routes"))
	if !routesVal.Exists() {
		return nil, nil
	}

	iter, err := routesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var routes []ir.Route
	for iter.Next() {
		route, err := parseRoute(iter.Value())
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

func parseRoute(v cue.Value) (ir.Route, error) {
	var r ir.Route

	name, err := requiredString(v, "name", "routes.name")
	if err != nil {
		return r, err
	}
	r.Name = name

	versionVal := v.LookupPath(cue.ParsePath("version"))
	if versionVal.Exists() {
		n, err := versionVal.Int64()
		if err != nil {
			return r, &CompileError{
				Field:   fmt.Sprintf("routes.%s.version", name),
				Message: "version must be an integer",
				Pos:     versionVal.Pos(),
			}
		}
		r.Version = int(n)
	}

	if r.Doc, err = optionalString(v, "doc"); err != nil {
		return r, err
	}

	for _, field := range []struct {
		label string
		dst   *ir.TypeRef
	}{{"arg", &r.Arg}, {"result", &r.Result}, {"error", &r.Error}} {
		ref, err := parseTypeRef(v, field.label, name)
		if err != nil {
			return r, err
		}
		*field.dst = ref
	}

	attrsVal := v.LookupPath(cue.ParsePath("attrs"))
	if attrsVal.Exists() {
		attrIter, err := attrsVal.Fields()
		if err != nil {
			return r, formatCUEError(err)
		}
		r.Attrs = make(map[string]string)
		for attrIter.Next() {
			s, err := attrIter.Value().String()
			if err != nil {
				return r, &CompileError{
					Field:   fmt.Sprintf("routes.%s.attrs.%s", name, attrIter.Selector().Unquoted()),
					Message: "attribute values must be strings",
					Pos:     attrIter.Value().Pos(),
				}
			}
			r.Attrs[attrIter.Selector().Unquoted()] = s
		}
	}

	r.Deprecated, err = parseDeprecation(v, name)
	if err != nil {
		return r, err
	}
	return r, nil
}

// parseTypeRef reads a type reference in text form. Absent means Void.
func parseTypeRef(v cue.Value, label, route string) (ir.TypeRef, error) {
	tv := v.LookupPath(cue.ParsePath(label))
	if !tv.Exists() {
		return ir.Void(), nil
	}
	s, err := tv.String()
	if err != nil {
		return ir.TypeRef{}, formatCUEError(err)
	}
	ref, err := ir.ParseTypeRef(s)
	if err != nil {
		return ir.TypeRef{}, &CompileError{
			Field:   fmt.Sprintf("routes.%s.%s", route, label),
			Message: err.Error(),
			Pos:     tv.Pos(),
		}
	}
	return ref, nil
}

// parseDeprecation accepts either a bool or {by: {namespace, name, version}}.
func parseDeprecation(v cue.Value, route string) (*ir.Deprecation, error) {
	dv := v.LookupPath(cue.ParsePath("deprecated"))
	if !dv.Exists() {
		return nil, nil
	}
	if b, err := dv.Bool(); err == nil {
		if !b {
			return nil, nil
		}
		return &ir.Deprecation{}, nil
	}

	dep := &ir.Deprecation{}
	byVal := dv.LookupPath(cue.ParsePath("by"))
	if !byVal.Exists() {
		return dep, nil
	}

	field := fmt.Sprintf("routes.%s.deprecated.by", route)
	ns, err := requiredString(byVal, "namespace", field)
	if err != nil {
		return nil, err
	}
	name, err := requiredString(byVal, "name", field)
	if err != nil {
		return nil, err
	}
	ref := &ir.RouteRef{Namespace: ns, Name: name}
	if vv := byVal.LookupPath(cue.ParsePath("version")); vv.Exists() {
		n, err := vv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ref.Version = int(n)
	}
	dep.By = ref
	return dep, nil
}

func optionalString(v cue.Value, label string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(label))
	if !sv.Exists() {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredString(v cue.Value, label, field string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(label))
	if !sv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: label + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
