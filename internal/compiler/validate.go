package compiler

import (
	"fmt"
	"go/token"
	"regexp"

	"github.com/roach88/routegen/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidNamespace      = "E101" // namespace name is not a Go package identifier, or repeated
	ErrDuplicateRoute        = "E102" // two routes share (name, version)
	ErrInvalidVersion        = "E103" // version < 1
	ErrInvalidStyle          = "E104" // style not rpc, upload or download
	ErrUnresolvedType        = "E105" // type reference names no declared type
	ErrInvalidSubtypes       = "E106" // enumerated subtypes are malformed
	ErrUnknownDeprecation    = "E107" // deprecated-by target does not exist
	ErrForeignPolymorphic    = "E108" // polymorphic result declared in another namespace
	ErrDuplicateType         = "E109" // two types share a name in one namespace
	ErrInvalidRouteName      = "E110" // route name has characters outside [A-Za-z0-9_/]
	ErrInvalidTypeDefinition = "E111" // type name is not an identifier, or kind is unknown
)

var routeNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(/[A-Za-z0-9_]+)*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks an API against the rules generation relies on.
// Returns all errors found (does not fail-fast).
func Validate(api *ir.API) []ValidationError {
	var errs []ValidationError
	if api == nil {
		return []ValidationError{{Field: "api", Message: "api is nil", Code: ErrInvalidNamespace}}
	}

	seenNS := make(map[string]bool)
	for i := range api.Namespaces {
		ns := &api.Namespaces[i]
		field := fmt.Sprintf("namespaces[%d]", i)

		// E101: namespace names become package names
		if !ir.IsIdent(ns.Name) || token.IsKeyword(ns.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("namespace name %q is not a valid Go package name", ns.Name),
				Code:    ErrInvalidNamespace,
			})
		}
		if seenNS[ns.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate namespace %q", ns.Name),
				Code:    ErrInvalidNamespace,
			})
		}
		seenNS[ns.Name] = true

		errs = append(errs, validateTypes(ns, field)...)
		errs = append(errs, validateRoutes(api, ns, field)...)
	}
	return errs
}

func validateTypes(ns *ir.Namespace, nsField string) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool)
	for i, def := range ns.Types {
		field := fmt.Sprintf("%s.types[%d]", nsField, i)

		// E109: duplicate type name
		if seen[def.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate type %q in namespace %s", def.Name, ns.Name),
				Code:    ErrDuplicateType,
			})
		}
		seen[def.Name] = true

		// E111: name and kind
		if !ir.IsIdent(def.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("type name %q is not an identifier", def.Name),
				Code:    ErrInvalidTypeDefinition,
			})
		}
		if def.Kind != ir.DefStruct && def.Kind != ir.DefUnion {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("type %s has unknown kind %q", def.Name, def.Kind),
				Code:    ErrInvalidTypeDefinition,
			})
		}

		errs = append(errs, validateSubtypes(ns, def, field)...)
	}
	return errs
}

// validateSubtypes checks enumerated subtypes (E106): only structs carry
// them, tags are distinct identifiers and every variant is a struct in the
// same namespace.
func validateSubtypes(ns *ir.Namespace, def ir.TypeDef, field string) []ValidationError {
	var errs []ValidationError
	if len(def.Subtypes) == 0 {
		return nil
	}
	if def.Kind != ir.DefStruct {
		return []ValidationError{{
			Field:   field + ".subtypes",
			Message: fmt.Sprintf("only structs can enumerate subtypes, %s is a %s", def.Name, def.Kind),
			Code:    ErrInvalidSubtypes,
		}}
	}

	tags := make(map[string]bool)
	for j, st := range def.Subtypes {
		sf := fmt.Sprintf("%s.subtypes[%d]", field, j)
		if !ir.IsIdent(st.Tag) {
			errs = append(errs, ValidationError{
				Field:   sf + ".tag",
				Message: fmt.Sprintf("subtype tag %q is not an identifier", st.Tag),
				Code:    ErrInvalidSubtypes,
			})
		}
		if tags[st.Tag] {
			errs = append(errs, ValidationError{
				Field:   sf + ".tag",
				Message: fmt.Sprintf("duplicate subtype tag %q in %s", st.Tag, def.Name),
				Code:    ErrInvalidSubtypes,
			})
		}
		tags[st.Tag] = true

		variant, ok := ns.Type(st.Type)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Field:   sf + ".type",
				Message: fmt.Sprintf("subtype %q of %s is not declared in namespace %s", st.Type, def.Name, ns.Name),
				Code:    ErrInvalidSubtypes,
			})
		case variant.Kind != ir.DefStruct:
			errs = append(errs, ValidationError{
				Field:   sf + ".type",
				Message: fmt.Sprintf("subtype %s of %s must be a struct", st.Type, def.Name),
				Code:    ErrInvalidSubtypes,
			})
		case variant.Name == def.Name:
			errs = append(errs, ValidationError{
				Field:   sf + ".type",
				Message: fmt.Sprintf("%s cannot be its own subtype", def.Name),
				Code:    ErrInvalidSubtypes,
			})
		}
	}
	return errs
}

type routeKey struct {
	name    string
	version int
}

func validateRoutes(api *ir.API, ns *ir.Namespace, nsField string) []ValidationError {
	var errs []ValidationError

	seen := make(map[routeKey]bool)
	for i, r := range ns.Routes {
		field := fmt.Sprintf("%s.routes[%d]", nsField, i)

		// E110: route name
		if !routeNamePattern.MatchString(r.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid route name %q", r.Name),
				Code:    ErrInvalidRouteName,
			})
		}

		// E103: 0 means unset and reads as 1
		if r.Version < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".version",
				Message: fmt.Sprintf("route %s: version must be >= 1, got %d", r.Name, r.Version),
				Code:    ErrInvalidVersion,
			})
		}

		// E102: (name, version) is unique per namespace
		key := routeKey{r.Name, r.EffectiveVersion()}
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate route %s version %d", r.Name, key.version),
				Code:    ErrDuplicateRoute,
			})
		}
		seen[key] = true

		// E104: style
		if !ir.ValidStyles[r.Style()] {
			errs = append(errs, ValidationError{
				Field:   field + ".attrs.style",
				Message: fmt.Sprintf("route %s: invalid style %q (must be rpc, upload or download)", r.Name, r.Style()),
				Code:    ErrInvalidStyle,
			})
		}

		// E105: type references
		for _, ref := range []struct {
			label string
			ref   ir.TypeRef
		}{{"arg", r.Arg}, {"result", r.Result}, {"error", r.Error}} {
			if msg := unresolved(api, ns.Name, ref.ref); msg != "" {
				errs = append(errs, ValidationError{
					Field:   field + "." + ref.label,
					Message: fmt.Sprintf("route %s: %s", r.Name, msg),
					Code:    ErrUnresolvedType,
				})
			}
		}

		// E108: the union shadow type is unexported, so the dispatch block
		// can only be emitted in the namespace that declares it
		if r.Result.Kind == ir.KindNamed {
			defNS := r.Result.DefiningNamespace(ns.Name)
			if def, ok := api.LookupType(defNS, r.Result.Name); ok && def.HasEnumeratedSubtypes() && defNS != ns.Name {
				errs = append(errs, ValidationError{
					Field:   field + ".result",
					Message: fmt.Sprintf("route %s: polymorphic result %s must be declared in namespace %s", r.Name, r.Result, ns.Name),
					Code:    ErrForeignPolymorphic,
				})
			}
		}

		// E107: deprecation target
		if r.Deprecated != nil && r.Deprecated.By != nil {
			by := *r.Deprecated.By
			if _, ok := api.LookupRoute(by); !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".deprecated.by",
					Message: fmt.Sprintf("route %s: replacement %s/%s version %d does not exist", r.Name, by.Namespace, by.Name, by.EffectiveVersion()),
					Code:    ErrUnknownDeprecation,
				})
			}
		}
	}
	return errs
}

// unresolved returns a description of the first unresolvable part of ref,
// or "" when every part resolves.
func unresolved(api *ir.API, current string, ref ir.TypeRef) string {
	switch ref.Kind {
	case ir.KindVoid, "":
		return ""
	case ir.KindPrimitive:
		if !ir.Primitives[ref.Name] {
			return fmt.Sprintf("unknown primitive %q", ref.Name)
		}
		return ""
	case ir.KindList, ir.KindMap:
		if ref.Elem == nil || ref.Elem.IsVoid() {
			return fmt.Sprintf("%s needs a non-void element type", ref)
		}
		return unresolved(api, current, *ref.Elem)
	case ir.KindNamed:
		defNS := ref.DefiningNamespace(current)
		if _, ok := api.LookupType(defNS, ref.Name); !ok {
			return fmt.Sprintf("type %s.%s is not declared", defNS, ref.Name)
		}
		return ""
	}
	return fmt.Sprintf("unknown type kind %q", ref.Kind)
}
