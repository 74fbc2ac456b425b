package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)

	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	first := &Run{
		StartedAt:   start,
		FinishedAt:  start.Add(time.Second),
		Command:     "import",
		Source:      "master.circ",
		Destination: "/work/main.circ",
		RevBefore:   "sha256:aa",
		RevAfter:    "sha256:bb",
		Status:      StatusOK,
		Entries: []Entry{
			{Name: "Adder", Replaced: 1},
			{Name: "ALU", Rename: "ALU2"},
		},
	}
	require.NoError(t, j.Record(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &Run{
		StartedAt:   start.Add(time.Hour),
		Command:     "cp",
		Destination: "/work/main.circ",
		Status:      StatusFailed,
		Error:       `circuit "Zzz" not found in source`,
	}
	require.NoError(t, j.Record(ctx, second))
	assert.False(t, second.FinishedAt.IsZero())

	runs, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.ID, runs[0].ID, "newest first")
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Empty(t, runs[0].Entries)

	got := runs[1]
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, start.Equal(got.StartedAt))
	assert.Equal(t, "sha256:bb", got.RevAfter)
	assert.Equal(t, first.Entries, got.Entries)

	limited, err := j.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestRecord_DuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)

	run := &Run{ID: "fixed", Command: "cp", Destination: "/d.circ", Status: StatusOK}
	require.NoError(t, j.Record(ctx, run))
	assert.Error(t, j.Record(ctx, run))

	runs, err := j.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecord_RejectsUnknownStatus(t *testing.T) {
	j := openTemp(t)
	err := j.Record(context.Background(), &Run{Command: "cp", Destination: "/d.circ", Status: "maybe"})
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, &Run{Command: "import", Destination: "/d.circ", Status: StatusDryRun}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	assert.Equal(t, path, j.Path())

	runs, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusDryRun, runs[0].Status)
}
