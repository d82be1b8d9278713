package ir

// API is a complete, loaded API description.
type API struct {
	Namespaces []Namespace `json:"namespaces" yaml:"namespaces"`
}

// Namespace groups related routes and the types they use.
// Each namespace with at least one route compiles to one output file.
type Namespace struct {
	Name   string    `json:"name" yaml:"name"`
	Doc    string    `json:"doc,omitempty" yaml:"doc,omitempty"`
	Types  []TypeDef `json:"types,omitempty" yaml:"types,omitempty"`
	Routes []Route   `json:"routes" yaml:"routes"`
}

// Route is one remote operation.
type Route struct {
	Name       string            `json:"name" yaml:"name"`
	Version    int               `json:"version,omitempty" yaml:"version,omitempty"` // 0 is read as 1
	Doc        string            `json:"doc,omitempty" yaml:"doc,omitempty"`
	Arg        TypeRef           `json:"arg" yaml:"arg"`
	Result     TypeRef           `json:"result" yaml:"result"`
	Error      TypeRef           `json:"error" yaml:"error"`
	Attrs      map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Deprecated *Deprecation      `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// Deprecation marks a route as deprecated. By is optional.
type Deprecation struct {
	By *RouteRef `json:"by,omitempty" yaml:"by,omitempty"`
}

// RouteRef points at a route, possibly in another namespace.
type RouteRef struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
	Version   int    `json:"version,omitempty" yaml:"version,omitempty"`
}

// Route attribute keys and their defaults.
const (
	AttrStyle = "style"
	AttrHost  = "host"
	AttrAuth  = "auth"

	DefaultHost = "api"
)

// Style is the RPC shape of a route.
type Style string

const (
	StyleRPC      Style = "rpc"
	StyleUpload   Style = "upload"
	StyleDownload Style = "download"
)

// ValidStyles defines allowed route styles.
var ValidStyles = map[Style]bool{
	StyleRPC:      true,
	StyleUpload:   true,
	StyleDownload: true,
}

// EffectiveVersion returns the route version, treating 0 as 1.
func (r Route) EffectiveVersion() int {
	if r.Version == 0 {
		return 1
	}
	return r.Version
}

// Attr returns the attribute value for key, or def when absent.
func (r Route) Attr(key, def string) string {
	if v, ok := r.Attrs[key]; ok {
		return v
	}
	return def
}

// Style returns the route style, defaulting to rpc.
func (r Route) Style() Style {
	return Style(r.Attr(AttrStyle, string(StyleRPC)))
}

// Host returns the target host, defaulting to "api".
func (r Route) Host() string {
	return r.Attr(AttrHost, DefaultHost)
}

// Auth returns the required auth level, empty when unset.
func (r Route) Auth() string {
	return r.Attr(AttrAuth, "")
}

// IsDeprecated reports whether the route carries a deprecation record.
func (r Route) IsDeprecated() bool {
	return r.Deprecated != nil
}

// EffectiveVersion returns the referenced version, treating 0 as 1.
func (r RouteRef) EffectiveVersion() int {
	if r.Version == 0 {
		return 1
	}
	return r.Version
}

// TypeDefKind distinguishes user-defined type shapes.
type TypeDefKind string

const (
	DefStruct TypeDefKind = "struct"
	DefUnion  TypeDefKind = "union"
)

// TypeDef is a user-defined type declared in a namespace.
type TypeDef struct {
	Name string      `json:"name" yaml:"name"`
	Kind TypeDefKind `json:"kind" yaml:"kind"`

	// Subtypes is set only on structs with enumerated subtypes: a closed
	// tagged union whose variants are other structs.
	Subtypes []Subtype `json:"subtypes,omitempty" yaml:"subtypes,omitempty"`
}

// Subtype is one variant of a struct with enumerated subtypes.
type Subtype struct {
	Tag  string `json:"tag" yaml:"tag"`   // discriminant value, e.g. "file"
	Type string `json:"type" yaml:"type"` // struct name in the same namespace
}

// HasEnumeratedSubtypes reports whether the type is polymorphic.
func (d TypeDef) HasEnumeratedSubtypes() bool {
	return d.Kind == DefStruct && len(d.Subtypes) > 0
}

// SubtypeTags returns the discriminant values in declaration order.
func (d TypeDef) SubtypeTags() []string {
	tags := make([]string, len(d.Subtypes))
	for i, s := range d.Subtypes {
		tags[i] = s.Tag
	}
	return tags
}

// Namespace returns the namespace with the given name.
func (a *API) Namespace(name string) (*Namespace, bool) {
	for i := range a.Namespaces {
		if a.Namespaces[i].Name == name {
			return &a.Namespaces[i], true
		}
	}
	return nil, false
}

// LookupType finds a user-defined type by namespace and name.
func (a *API) LookupType(namespace, name string) (*TypeDef, bool) {
	ns, ok := a.Namespace(namespace)
	if !ok {
		return nil, false
	}
	return ns.Type(name)
}

// LookupRoute finds a route by reference.
func (a *API) LookupRoute(ref RouteRef) (*Route, bool) {
	ns, ok := a.Namespace(ref.Namespace)
	if !ok {
		return nil, false
	}
	for i := range ns.Routes {
		r := &ns.Routes[i]
		if r.Name == ref.Name && r.EffectiveVersion() == ref.EffectiveVersion() {
			return r, true
		}
	}
	return nil, false
}

// Type returns the type declared in this namespace with the given name.
func (n *Namespace) Type(name string) (*TypeDef, bool) {
	for i := range n.Types {
		if n.Types[i].Name == name {
			return &n.Types[i], true
		}
	}
	return nil, false
}

// HasRoutes reports whether the namespace produces an output file.
func (n *Namespace) HasRoutes() bool {
	return len(n.Routes) > 0
}
