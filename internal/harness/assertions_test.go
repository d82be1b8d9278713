package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Pass: true,
		Source: `log.Printf("WARNING: API ` + "`Delete`" + ` is deprecated")
log.Printf("Use API ` + "`DeleteV2`" + ` instead")`,
		Snapshot: &Snapshot{
			Decls: []string{"type Client", "type apiImpl", "type DeleteAPIError", "func (*apiImpl) DeleteContext", "func New"},
			Methods: []string{
				"Delete(arg *DeleteArg) (err error)",
				"DeleteContext(ctx context.Context, arg *DeleteArg) (err error)",
			},
			Requests: map[string]map[string]string{
				"DeleteContext": {"Route": `"delete"`, "Arg": "arg", "ExtraHeaders": "nil"},
			},
		},
	}
}

func TestAssertContains(t *testing.T) {
	src := sampleResult().Source
	assert.NoError(t, assertContains(src, Assertion{Text: "is deprecated"}))

	err := assertContains(src, Assertion{Text: "json.Unmarshal"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertContains, ae.Type)
	assert.Equal(t, "not found", ae.Actual)
}

func TestAssertNotContains(t *testing.T) {
	src := sampleResult().Source
	assert.NoError(t, assertNotContains(src, Assertion{Text: "fmt.Errorf"}))

	err := assertNotContains(src, Assertion{Text: "log.Printf"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "found 2 time(s)", ae.Actual)
}

func TestAssertCount(t *testing.T) {
	src := sampleResult().Source
	assert.NoError(t, assertCount(src, Assertion{Text: "log.Printf", Count: 2}))
	assert.NoError(t, assertCount(src, Assertion{Text: "fmt.Errorf", Count: 0}))

	err := assertCount(src, Assertion{Text: "log.Printf", Count: 1})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, `"log.Printf" exactly 1 time(s)`, ae.Expected)
	assert.Equal(t, "found 2 time(s)", ae.Actual)
}

func TestAssertMethod(t *testing.T) {
	snap := sampleResult().Snapshot
	assert.NoError(t, assertMethod(snap, Assertion{Signature: "Delete(arg *DeleteArg) (err error)"}))

	err := assertMethod(snap, Assertion{Signature: "Delete(arg DeleteArg) (err error)"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Delete(arg *DeleteArg) (err error); DeleteContext(")
}

func TestAssertRequest_SubsetMatch(t *testing.T) {
	snap := sampleResult().Snapshot
	assert.NoError(t, assertRequest(snap, Assertion{
		Method: "DeleteContext",
		Fields: map[string]string{"Route": `"delete"`},
	}))
}

func TestAssertRequest_Failures(t *testing.T) {
	snap := sampleResult().Snapshot

	tests := []struct {
		name   string
		a      Assertion
		actual string
	}{
		{"no literal", Assertion{Method: "Delete", Fields: map[string]string{"Route": `"delete"`}}, "no request literal found"},
		{"missing field", Assertion{Method: "DeleteContext", Fields: map[string]string{"Host": `"api"`}}, "field not set"},
		{"wrong value", Assertion{Method: "DeleteContext", Fields: map[string]string{"ExtraHeaders": "arg.ExtraHeaders"}}, "ExtraHeaders: nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertRequest(snap, tt.a)
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.actual, ae.Actual)
		})
	}
}

func TestAssertDeclOrder(t *testing.T) {
	snap := sampleResult().Snapshot

	assert.NoError(t, assertDeclOrder(snap, Assertion{Decls: []string{"type Client", "func New"}}))
	assert.NoError(t, assertDeclOrder(snap, Assertion{Decls: []string{"type DeleteAPIError", "func (*apiImpl) DeleteContext"}}))

	err := assertDeclOrder(snap, Assertion{Decls: []string{"func New", "type Client"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "declared out of order", ae.Actual)

	err = assertDeclOrder(snap, Assertion{Decls: []string{"type Client", "type Missing"}})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "not declared", ae.Actual)
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertContains, Text: "deprecated"},
		{Type: AssertCount, Text: "log.Printf", Count: 2},
		{Type: AssertMethod, Signature: "Delete(arg *DeleteArg) (err error)"},
		{Type: AssertDeclOrder, Decls: []string{"type Client", "func New"}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertContains, Text: "deprecated"},
		{Type: AssertNotContains, Text: "deprecated"},
		{Type: "trace_order"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "Assertion failed: not_contains")
	assert.Equal(t, `assertion[2]: unknown assertion type "trace_order"`, errs[1])
}

func TestEvaluateAssertions_NoSnapshot(t *testing.T) {
	errs := EvaluateAssertions(&Result{Source: "x"}, []Assertion{
		{Type: AssertMethod, Signature: "X() (err error)"},
	})
	assert.Equal(t, []string{"assertion[0]: method requires a parsed file"}, errs)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{Type: AssertMethod, Expected: "Client method X", Actual: "methods: Y"}
	assert.Equal(t, "Assertion failed: method\n  Expected: Client method X\n  Actual: methods: Y\n", err.Error())
}
