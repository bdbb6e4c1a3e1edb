package cache

import (
	"encoding/json"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/ports"
)

const (
	tasksKey    = "planner:tasks"
	coursesKey  = "planner:courses"
	syncedAtKey = "planner:synced_at"
)

// Snapshot is a buntdb-backed copy of the last synced tasks and courses so
// list views keep working without the backend. Entries are stored as JSON
// arrays to preserve insertion order, which the store's tie-breaking rules
// depend on.
type Snapshot struct {
	db *buntdb.DB
}

var _ ports.SnapshotCache = (*Snapshot)(nil)

// Open opens (or creates) the snapshot database at path. Use ":memory:" for
// an ephemeral cache.
func Open(path string) (*Snapshot, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Snapshot{db: db}, nil
}

// Close releases the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// SaveTasks replaces the cached task snapshot.
func (s *Snapshot) SaveTasks(tasks []entities.Task) error {
	return s.save(tasksKey, tasks)
}

// LoadTasks returns the cached task snapshot; an empty cache yields nil.
func (s *Snapshot) LoadTasks() ([]entities.Task, error) {
	var tasks []entities.Task
	if err := s.load(tasksKey, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveCourses replaces the cached course snapshot.
func (s *Snapshot) SaveCourses(courses []entities.Course) error {
	return s.save(coursesKey, courses)
}

// LoadCourses returns the cached course snapshot; an empty cache yields nil.
func (s *Snapshot) LoadCourses() ([]entities.Course, error) {
	var courses []entities.Course
	if err := s.load(coursesKey, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// SyncedAt returns when the snapshot was last written, or the zero time for
// a fresh cache.
func (s *Snapshot) SyncedAt() (time.Time, error) {
	var stamp string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(syncedAtKey)
		if err != nil {
			return err
		}
		stamp = v
		return nil
	})
	if err == buntdb.ErrNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, stamp)
}

func (s *Snapshot) save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(key, string(data), nil); err != nil {
			return err
		}
		_, _, err := tx.Set(syncedAtKey, time.Now().UTC().Format(time.RFC3339), nil)
		return err
	})
}

func (s *Snapshot) load(key string, v interface{}) error {
	err := s.db.View(func(tx *buntdb.Tx) error {
		data, err := tx.Get(key)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(data), v)
	})
	if err == buntdb.ErrNotFound {
		return nil
	}
	return err
}
