package ir

import (
	"fmt"
	"strings"
)

// TypeKind classifies a type reference.
type TypeKind string

const (
	KindVoid      TypeKind = "void"
	KindPrimitive TypeKind = "primitive"
	KindNamed     TypeKind = "named" // user-defined struct or union
	KindList      TypeKind = "list"
	KindMap       TypeKind = "map" // string-keyed
)

// Primitive type names.
const (
	PrimString    = "String"
	PrimBoolean   = "Boolean"
	PrimInt32     = "Int32"
	PrimInt64     = "Int64"
	PrimUInt32    = "UInt32"
	PrimUInt64    = "UInt64"
	PrimFloat32   = "Float32"
	PrimFloat64   = "Float64"
	PrimTimestamp = "Timestamp"
	PrimBytes     = "Bytes"
)

// Primitives is the set of known primitive names.
var Primitives = map[string]bool{
	PrimString:    true,
	PrimBoolean:   true,
	PrimInt32:     true,
	PrimInt64:     true,
	PrimUInt32:    true,
	PrimUInt64:    true,
	PrimFloat32:   true,
	PrimFloat64:   true,
	PrimTimestamp: true,
	PrimBytes:     true,
}

// TypeRef references a type from a route or another type.
//
// Text form (see ParseTypeRef):
//
//	Void | String | Name | ns.Name | List(T) | Map(T) | T?
//
// The zero TypeRef is Void.
type TypeRef struct {
	Kind TypeKind

	// Name is the primitive name or the user type name.
	Name string

	// Namespace qualifies a named type declared in another namespace.
	// Empty means the namespace the reference appears in.
	Namespace string

	// Elem is the element type of lists and the value type of maps.
	Elem *TypeRef

	Nullable bool
}

// Void returns the void type reference.
func Void() TypeRef { return TypeRef{Kind: KindVoid} }

// Named returns a reference to a user type in the current namespace.
func Named(name string) TypeRef { return TypeRef{Kind: KindNamed, Name: name} }

// QualifiedNamed returns a reference to a user type in namespace ns.
func QualifiedNamed(ns, name string) TypeRef {
	return TypeRef{Kind: KindNamed, Namespace: ns, Name: name}
}

// Primitive returns a reference to a primitive type.
func Primitive(name string) TypeRef { return TypeRef{Kind: KindPrimitive, Name: name} }

// ListOf returns a list reference.
func ListOf(elem TypeRef) TypeRef { return TypeRef{Kind: KindList, Elem: &elem} }

// MapOf returns a string-keyed map reference.
func MapOf(elem TypeRef) TypeRef { return TypeRef{Kind: KindMap, Elem: &elem} }

// IsVoid reports whether the reference is void.
func (t TypeRef) IsVoid() bool {
	return t.Kind == KindVoid || t.Kind == ""
}

// DefiningNamespace returns the namespace a named type lives in, given the
// namespace the reference appears in.
func (t TypeRef) DefiningNamespace(current string) string {
	if t.Namespace != "" {
		return t.Namespace
	}
	return current
}

// String renders the canonical text form.
func (t TypeRef) String() string {
	var s string
	switch t.Kind {
	case KindVoid, "":
		s = "Void"
	case KindPrimitive:
		s = t.Name
	case KindNamed:
		if t.Namespace != "" {
			s = t.Namespace + "." + t.Name
		} else {
			s = t.Name
		}
	case KindList:
		s = "List(" + t.elemString() + ")"
	case KindMap:
		s = "Map(" + t.elemString() + ")"
	default:
		s = "<" + string(t.Kind) + ">"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

func (t TypeRef) elemString() string {
	if t.Elem == nil {
		return "Void"
	}
	return t.Elem.String()
}

// ParseTypeRef parses the canonical text form of a type reference.
func ParseTypeRef(s string) (TypeRef, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return TypeRef{}, fmt.Errorf("empty type reference")
	}

	var ref TypeRef
	if strings.HasSuffix(src, "?") {
		inner, err := ParseTypeRef(strings.TrimSuffix(src, "?"))
		if err != nil {
			return TypeRef{}, err
		}
		if inner.IsVoid() {
			return TypeRef{}, fmt.Errorf("%q: void cannot be nullable", s)
		}
		inner.Nullable = true
		return inner, nil
	}

	for _, wrapper := range []struct {
		prefix string
		kind   TypeKind
	}{{"List(", KindList}, {"Map(", KindMap}} {
		if !strings.HasPrefix(src, wrapper.prefix) {
			continue
		}
		if !strings.HasSuffix(src, ")") {
			return TypeRef{}, fmt.Errorf("%q: missing closing parenthesis", s)
		}
		elem, err := ParseTypeRef(src[len(wrapper.prefix) : len(src)-1])
		if err != nil {
			return TypeRef{}, fmt.Errorf("%q: %w", s, err)
		}
		if elem.IsVoid() {
			return TypeRef{}, fmt.Errorf("%q: element type cannot be void", s)
		}
		return TypeRef{Kind: wrapper.kind, Elem: &elem}, nil
	}

	switch {
	case src == "Void":
		ref = Void()
	case Primitives[src]:
		ref = Primitive(src)
	default:
		ns, name, qualified := strings.Cut(src, ".")
		if !qualified {
			ns, name = "", src
		}
		if !isIdent(name) || (qualified && !isIdent(ns)) {
			return TypeRef{}, fmt.Errorf("%q: invalid type name", s)
		}
		ref = TypeRef{Kind: KindNamed, Namespace: ns, Name: name}
	}
	return ref, nil
}

// MustParseTypeRef is like ParseTypeRef but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseTypeRef(s string) TypeRef {
	ref, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeRef) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeRef) UnmarshalText(text []byte) error {
	ref, err := ParseTypeRef(string(text))
	if err != nil {
		return err
	}
	*t = ref
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsIdent reports whether s is an ASCII identifier.
func IsIdent(s string) bool {
	return isIdent(s)
}

// Identity returns the text form of t with every named type qualified by
// its defining namespace and nullability dropped. Two references denote the
// same type exactly when their identities are equal.
func (t TypeRef) Identity(current string) string {
	switch t.Kind {
	case KindNamed:
		return t.DefiningNamespace(current) + "." + t.Name
	case KindList, KindMap:
		elem := "Void"
		if t.Elem != nil {
			elem = t.Elem.Identity(current)
		}
		if t.Kind == KindList {
			return "List(" + elem + ")"
		}
		return "Map(" + elem + ")"
	default:
		u := t
		u.Nullable = false
		return u.String()
	}
}
