package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/task"
	"todo/internal/todolist"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openMemory(t)
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	for i, action := range []string{"add", "toggle-selected", "delete"} {
		require.NoError(t, j.Record(Entry{
			Action:  action,
			TaskIDs: []string{"a", "b"},
			Summary: "x",
			At:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "delete", got[0].Action)
	assert.Equal(t, "toggle-selected", got[1].Action)
	assert.Equal(t, []string{"a", "b"}, got[0].TaskIDs)
	assert.True(t, base.Add(2*time.Minute).Equal(got[0].At))

	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecentEmptyAndZeroLimit(t *testing.T) {
	j := openMemory(t)
	got, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, j.Record(Entry{Action: "reset-selected"}))
	got, err = j.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = j.Recent(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].TaskIDs)
	assert.False(t, got[0].At.IsZero())
}

func TestMemoryJournalsAreIndependent(t *testing.T) {
	a := openMemory(t)
	b := openMemory(t)
	require.NoError(t, a.Record(Entry{Action: "add"}))

	n, err := b.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFileJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(Entry{Action: "add", TaskIDs: []string{"1"}}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFromChange(t *testing.T) {
	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	s := todolist.New(todolist.WithIDs(func() string { return "id-1" }))
	var changes []todolist.Change
	s.Observe(func(c todolist.Change) { changes = append(changes, c) })

	s.Add("Pay rent", due, task.High)
	s.Delete("id-1")
	s.ResetSelected()
	require.Len(t, changes, 3)

	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	e := FromChange(changes[0], at)
	assert.Equal(t, "add", e.Action)
	assert.Equal(t, []string{"id-1"}, e.TaskIDs)
	assert.Equal(t, "Pay rent", e.Summary)
	assert.Equal(t, at, e.At)

	e = FromChange(changes[1], at)
	assert.Equal(t, "delete", e.Action)
	assert.Equal(t, "Pay rent", e.Summary)

	e = FromChange(changes[2], at)
	assert.Equal(t, "reset-selected", e.Action)
	assert.Empty(t, e.Summary)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	dsn := sqliteDSN(filepath.Join(t.TempDir(), "j.db"))
	assert.Contains(t, dsn, "file://")
	assert.Contains(t, dsn, "mode=rwc")
}
