package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	s, err := OpenWithGenerator(filepath.Join(t.TempDir(), "ledger.db"), NewFixedGenerator(ids...))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() Run {
	return Run{
		APIHash:          "sha256:abc",
		GeneratorVersion: "0.1.0",
		IRVersion:        "1",
		OutDir:           "out",
		Outputs: []Output{
			{Namespace: "sharing", Path: "sharing/client.go", ContentHash: "sha256:2", Written: true},
			{Namespace: "files", Path: "files/client.go", ContentHash: "sha256:1"},
		},
	}
}

func TestRecordRun_AssignsIDAndSeq(t *testing.T) {
	s := openTestStore(t, "run-1", "run-2")
	ctx := context.Background()

	first, err := s.RecordRun(ctx, sampleRun())
	require.NoError(t, err)
	assert.Equal(t, "run-1", first.ID)
	assert.Equal(t, int64(1), first.Seq)

	second, err := s.RecordRun(ctx, sampleRun())
	require.NoError(t, err)
	assert.Equal(t, "run-2", second.ID)
	assert.Equal(t, int64(2), second.Seq)
}

func TestRecordRun_KeepsExplicitID(t *testing.T) {
	s := openTestStore(t)
	run := sampleRun()
	run.ID = "explicit"

	got, err := s.RecordRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "explicit", got.ID)
}

func TestRecordRun_DuplicateIDFails(t *testing.T) {
	s := openTestStore(t, "same", "same")
	ctx := context.Background()

	_, err := s.RecordRun(ctx, sampleRun())
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, sampleRun())
	require.Error(t, err)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "failed run must not leave a partial record")
}

func TestReadRun(t *testing.T) {
	s := openTestStore(t, "run-1")
	ctx := context.Background()

	run := sampleRun()
	run.Check = true
	run.Outputs[1].Stale = true
	_, err := s.RecordRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "sha256:abc", got.APIHash)
	assert.True(t, got.Check)
	require.Len(t, got.Outputs, 2)

	// ordered by namespace
	assert.Equal(t, "files", got.Outputs[0].Namespace)
	assert.True(t, got.Outputs[0].Stale)
	assert.False(t, got.Outputs[0].Written)
	assert.Equal(t, "sharing", got.Outputs[1].Namespace)
	assert.True(t, got.Outputs[1].Written)
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t, "a", "b", "c")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.RecordRun(ctx, sampleRun())
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Len(t, runs[0].Outputs, 2)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListRuns_Empty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
