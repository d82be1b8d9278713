package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/routegen/internal/ir"
)

// Scenario is one generation conformance case: an API, the namespace to
// render from it, and what the rendered file must look like.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Namespace is the namespace whose client file is rendered.
	Namespace string `yaml:"namespace"`

	// API is the description the namespace is rendered from.
	API ir.API `yaml:"api"`

	// Options tune the emitted file. Unset fields take the generator defaults.
	Options Options `yaml:"options,omitempty"`

	// ExpectError, when set, is a substring of the error rendering must
	// fail with. Assertions are not evaluated for failing scenarios.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions are checked against the rendered file.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Options mirrors the generator options a scenario may set.
type Options struct {
	SDKPackage   string   `yaml:"sdk_package,omitempty"`
	Header       []string `yaml:"header,omitempty"`
	StrictUnions bool     `yaml:"strict_unions,omitempty"`
}

// Assertion checks one property of a rendered file.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the source fragment for contains, not_contains and count.
	Text string `yaml:"text,omitempty"`

	// Signature is an interface method as written in the Client interface
	// (used by method).
	Signature string `yaml:"signature,omitempty"`

	// Method names the apiImpl method whose request literal is checked
	// (used by request).
	Method string `yaml:"method,omitempty"`

	// Fields are expected request literal fields, as Go source (used by
	// request). Subset match.
	Fields map[string]string `yaml:"fields,omitempty"`

	// Decls is the expected order of top-level declarations (used by
	// decl_order). Other declarations may appear in between.
	Decls []string `yaml:"decls,omitempty"`

	// Count is the expected number of occurrences (used by count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertMethod      = "method"
	AssertRequest     = "request"
	AssertDeclOrder   = "decl_order"
	AssertCount       = "count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(p), s.Name, prev)
		}
		names[s.Name] = filepath.Base(p)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	if len(s.API.Namespaces) == 0 {
		return fmt.Errorf("api must declare at least one namespace")
	}
	if _, ok := s.API.Namespace(s.Namespace); !ok {
		return fmt.Errorf("namespace %q is not declared in api", s.Namespace)
	}

	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertMethod:
		if a.Signature == "" {
			return fmt.Errorf("assertions[%d]: signature is required for method", index)
		}
	case AssertRequest:
		if a.Method == "" {
			return fmt.Errorf("assertions[%d]: method is required for request", index)
		}
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields are required for request", index)
		}
	case AssertDeclOrder:
		if len(a.Decls) == 0 {
			return fmt.Errorf("assertions[%d]: decls list is required for decl_order", index)
		}
	case AssertCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
