package gen

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/roach88/routegen/internal/ir"
)

// ContextSuffix is appended to the context-explicit method identifier.
const ContextSuffix = "Context"

// legacyExtraHeadersIdent is the one method identifier whose request
// forwards arg.ExtraHeaders. The rule is keyed on the identifier, not the
// style, so download_v2 and other download-style routes pass nil. The
// stone Go backend compared the unversioned identifier instead, so its
// download v2 forwarded the headers.
const legacyExtraHeadersIdent = "Download"

// exportedIdent converts a route or tag name into an exported identifier.
// "/" and "_" both separate words.
func exportedIdent(name string) string {
	return strcase.ToCamel(strings.ReplaceAll(name, "/", "_"))
}

// versioned appends the version suffix for versions other than 1.
func versioned(ident string, version int) string {
	if version == 1 {
		return ident
	}
	return fmt.Sprintf("%sV%d", ident, version)
}

// MethodName returns the default-variant method identifier of a route.
func MethodName(r ir.Route) string {
	return versioned(exportedIdent(r.Name), r.EffectiveVersion())
}

// ContextMethodName returns the context-explicit method identifier.
func ContextMethodName(r ir.Route) string {
	return MethodName(r) + ContextSuffix
}

// WireRouteName returns the route name sent on the wire.
func WireRouteName(r ir.Route) string {
	if v := r.EffectiveVersion(); v != 1 {
		return fmt.Sprintf("%s_v%d", r.Name, v)
	}
	return r.Name
}

// ErrorWrapperName returns the name of the route's error-wrapper type.
func ErrorWrapperName(r ir.Route) string {
	return MethodName(r) + "APIError"
}

func replacementName(ref ir.RouteRef) string {
	return versioned(exportedIdent(ref.Name), ref.EffectiveVersion())
}

func unionShadowName(typeName string) string {
	return strcase.ToLowerCamel(typeName) + "Union"
}

func variantField(tag string) string {
	return exportedIdent(tag)
}

func forwardsExtraHeaders(r ir.Route) bool {
	return MethodName(r) == legacyExtraHeadersIdent
}
