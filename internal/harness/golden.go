package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/routegen/internal/ir"
)

// RunWithGolden runs a scenario and compares its snapshot against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be run or rendering failed.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if result.Snapshot == nil {
		return result, fmt.Errorf("scenario %s rendered nothing: %v", scenario.Name, result.Err)
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares a result's snapshot against a golden file. The
// snapshot is serialized as canonical JSON, indented for review.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(result.Snapshot)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}

// SnapshotJSON serializes a snapshot as indented canonical JSON with a
// trailing newline.
func SnapshotJSON(snap *Snapshot) ([]byte, error) {
	canonical, err := ir.MarshalCanonical(snap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
