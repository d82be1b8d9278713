package harness

// Result is the outcome of a scenario.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Namespace is the rendered namespace.
	Namespace string `json:"namespace"`

	// Source is the rendered file, empty when rendering failed.
	Source string `json:"source,omitempty"`

	// Snapshot is the structural summary of Source.
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// Err is the rendering error, if any.
	Err error `json:"-"`

	// Errors contains assertion and invariant failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// Snapshot is the structure of a rendered client file. It is what golden
// files record: stable under formatting changes that do not alter the
// declarations, and readable in a diff.
type Snapshot struct {
	Package string   `json:"package"`
	Header  []string `json:"header"`
	Imports []string `json:"imports"`

	// Decls lists top-level declarations in file order, e.g.
	// "type Client", "func (*apiImpl) ListFolder", "func New".
	Decls []string `json:"decls"`

	// Methods lists the Client interface methods in order, as source.
	Methods []string `json:"methods"`

	// Requests maps each apiImpl method that builds a dropbox.Request to
	// the literal's fields, as source.
	Requests map[string]map[string]string `json:"requests"`
}

// NewResult creates a new passing result.
func NewResult(namespace string) *Result {
	return &Result{
		Pass:      true,
		Namespace: namespace,
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Pass = false
	r.Errors = append(r.Errors, err)
}
