package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/core/internal/domain/entities"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { snap.Close() })
	return snap
}

func TestEmptyCacheYieldsNil(t *testing.T) {
	snap := openTestSnapshot(t)

	tasks, err := snap.LoadTasks()
	require.NoError(t, err)
	assert.Nil(t, tasks)

	courses, err := snap.LoadCourses()
	require.NoError(t, err)
	assert.Nil(t, courses)

	syncedAt, err := snap.SyncedAt()
	require.NoError(t, err)
	assert.True(t, syncedAt.IsZero())
}

func TestTasksRoundTripPreservesOrder(t *testing.T) {
	snap := openTestSnapshot(t)

	deadline := time.Date(2025, time.March, 4, 18, 0, 0, 0, time.UTC)
	saved := []entities.Task{
		{ID: 3, Text: "third added first", Course: "Math", DueDate: entities.Date{Year: 2025, Month: time.March, Day: 4}, Deadline: &deadline},
		{ID: 1, Text: "first added second", Course: "English", DueDate: entities.Date{Year: 2025, Month: time.March, Day: 4}, Completed: true},
	}
	require.NoError(t, snap.SaveTasks(saved))

	loaded, err := snap.LoadTasks()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(3), loaded[0].ID, "insertion order survives the round trip")
	assert.Equal(t, int64(1), loaded[1].ID)
	assert.True(t, loaded[1].Completed)
	require.NotNil(t, loaded[0].Deadline)
	assert.True(t, deadline.Equal(*loaded[0].Deadline))
}

func TestCoursesRoundTrip(t *testing.T) {
	snap := openTestSnapshot(t)

	require.NoError(t, snap.SaveCourses([]entities.Course{
		{ID: 1, Name: "Math", Color: "#445566"},
		{ID: 2, Name: "Art", Color: "#778899"},
	}))

	loaded, err := snap.LoadCourses()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Math", loaded[0].Name)
	assert.Equal(t, "#778899", loaded[1].Color)
}

func TestSaveUpdatesSyncedAt(t *testing.T) {
	snap := openTestSnapshot(t)

	before := time.Now().Add(-time.Second)
	require.NoError(t, snap.SaveTasks(nil))

	syncedAt, err := snap.SyncedAt()
	require.NoError(t, err)
	assert.False(t, syncedAt.IsZero())
	assert.True(t, syncedAt.After(before))
}

func TestSnapshotPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	snap, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, snap.SaveCourses([]entities.Course{{ID: 1, Name: "Math", Color: "#445566"}}))
	require.NoError(t, snap.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	courses, err := reopened.LoadCourses()
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Math", courses[0].Name)
}
