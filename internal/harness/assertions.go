package harness

import (
	"fmt"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

func assertContains(src string, a Assertion) error {
	if strings.Contains(src, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("source containing %q", a.Text),
		Actual:   "not found",
	}
}

func assertNotContains(src string, a Assertion) error {
	if n := strings.Count(src, a.Text); n > 0 {
		return &AssertionError{
			Type:     AssertNotContains,
			Expected: fmt.Sprintf("source without %q", a.Text),
			Actual:   fmt.Sprintf("found %d time(s)", n),
		}
	}
	return nil
}

func assertCount(src string, a Assertion) error {
	if n := strings.Count(src, a.Text); n != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%q exactly %d time(s)", a.Text, a.Count),
			Actual:   fmt.Sprintf("found %d time(s)", n),
		}
	}
	return nil
}

// assertMethod checks the Client interface declares the signature exactly.
func assertMethod(snap *Snapshot, a Assertion) error {
	for _, m := range snap.Methods {
		if m == a.Signature {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertMethod,
		Expected: fmt.Sprintf("Client method %s", a.Signature),
		Actual:   fmt.Sprintf("methods: %s", strings.Join(snap.Methods, "; ")),
	}
}

// assertRequest checks the request literal built by a method (subset match).
func assertRequest(snap *Snapshot, a Assertion) error {
	fields, ok := snap.Requests[a.Method]
	if !ok {
		return &AssertionError{
			Type:     AssertRequest,
			Expected: fmt.Sprintf("%s builds a request", a.Method),
			Actual:   "no request literal found",
		}
	}

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := fields[k]
		if !ok {
			return &AssertionError{
				Type:     AssertRequest,
				Expected: fmt.Sprintf("%s request field %s", a.Method, k),
				Actual:   "field not set",
			}
		}
		if got != a.Fields[k] {
			return &AssertionError{
				Type:     AssertRequest,
				Expected: fmt.Sprintf("%s request field %s: %s", a.Method, k, a.Fields[k]),
				Actual:   fmt.Sprintf("%s: %s", k, got),
			}
		}
	}
	return nil
}

// assertDeclOrder checks that the declarations appear in the given order.
// Declarations not listed may appear in between.
func assertDeclOrder(snap *Snapshot, a Assertion) error {
	pos := 0
	for i, want := range a.Decls {
		found := false
		for pos < len(snap.Decls) {
			pos++
			if snap.Decls[pos-1] == want {
				found = true
				break
			}
		}
		if !found {
			actual := "not declared"
			for _, d := range snap.Decls {
				if d == want {
					actual = "declared out of order"
					break
				}
			}
			return &AssertionError{
				Type:     AssertDeclOrder,
				Expected: fmt.Sprintf("%s at position %d of %v", want, i+1, a.Decls),
				Actual:   actual,
			}
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertContains:
			err = assertContains(result.Source, assertion)
		case AssertNotContains:
			err = assertNotContains(result.Source, assertion)
		case AssertCount:
			err = assertCount(result.Source, assertion)
		case AssertMethod, AssertRequest, AssertDeclOrder:
			if result.Snapshot == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a parsed file", i, assertion.Type)
				break
			}
			switch assertion.Type {
			case AssertMethod:
				err = assertMethod(result.Snapshot, assertion)
			case AssertRequest:
				err = assertRequest(result.Snapshot, assertion)
			default:
				err = assertDeclOrder(result.Snapshot, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
