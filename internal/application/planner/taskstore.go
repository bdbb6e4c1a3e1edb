package planner

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// AddTaskInput carries the fields required to schedule a task. DeadlineClock
// is a 15:04 wall-clock time combined with DueDate into the deadline instant.
type AddTaskInput struct {
	Text          string
	Course        string
	Tag           string
	DueDate       entities.Date
	DeadlineClock string
}

// TaskStore holds the signed-in user's tasks and provides the mutation and
// derivation operations the planner screens need. Local state is mutated
// only after the backend confirms a write, so a failed call always leaves
// the store unchanged.
//
// Writes against the same task id are guarded by a per-task revision
// counter: each mutation records the revision it was issued under, and a
// response that settles after a later-issued mutation has already been
// applied is dropped instead of overwriting the newer state.
type TaskStore struct {
	api    ports.PlannerAPI
	logger *logger.Logger
	now    func() time.Time
	loc    *time.Location

	mu      sync.RWMutex
	closed  bool
	tasks   []entities.Task
	issued  map[int64]uint64
	applied map[int64]uint64
}

// NewTaskStore creates a task store backed by the planner API.
func NewTaskStore(api ports.PlannerAPI, appLogger *logger.Logger) *TaskStore {
	return &TaskStore{
		api:     api,
		logger:  appLogger.WithComponent("task_store"),
		now:     time.Now,
		loc:     time.Local,
		issued:  make(map[int64]uint64),
		applied: make(map[int64]uint64),
	}
}

// Load replaces the store contents with the backend's task list.
func (s *TaskStore) Load(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entities.ErrStoreClosed
	}
	s.tasks = tasks
	s.issued = make(map[int64]uint64)
	s.applied = make(map[int64]uint64)

	s.logger.Debugw("Tasks loaded", "count", len(tasks))
	return nil
}

// Restore seeds the store from a local snapshot without touching the
// backend.
func (s *TaskStore) Restore(tasks []entities.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]entities.Task(nil), tasks...)
	s.issued = make(map[int64]uint64)
	s.applied = make(map[int64]uint64)
}

// Close marks the store torn down. Any remote response that settles after
// Close is a no-op; no operation mutates a closed store.
func (s *TaskStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// AddTask schedules a new task. Text, course, due date and deadline time are
// all required; a missing field fails validation before any remote call.
// The task is appended, incomplete, only after the backend confirms it.
func (s *TaskStore) AddTask(ctx context.Context, in AddTaskInput) (entities.Task, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return entities.Task{}, &entities.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Course) == "" {
		return entities.Task{}, &entities.ValidationError{Field: "course", Reason: "must not be empty"}
	}
	if in.DueDate.IsZero() {
		return entities.Task{}, &entities.ValidationError{Field: "due_date", Reason: "must be set"}
	}
	if strings.TrimSpace(in.DeadlineClock) == "" {
		return entities.Task{}, &entities.ValidationError{Field: "deadline", Reason: "must be set"}
	}

	deadline, err := in.DueDate.At(in.DeadlineClock, s.loc)
	if err != nil {
		return entities.Task{}, &entities.ValidationError{Field: "deadline", Reason: "must be a time of day in 15:04 format"}
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return entities.Task{}, entities.ErrStoreClosed
	}

	created, err := s.api.CreateTask(ctx, ports.CreateTaskRequest{
		Text:      in.Text,
		Course:    in.Course,
		Tag:       strings.TrimSpace(in.Tag),
		DueDate:   in.DueDate,
		Deadline:  &deadline,
		Completed: false,
	})
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entities.Task{}, entities.ErrStoreClosed
	}
	s.tasks = append(s.tasks, created)

	s.logger.Infow("Task created", "task_id", created.ID, "course", created.Course, "due", created.DueDate.String())
	return created, nil
}

// UpdateTask applies a partial patch to a task. The id must exist locally;
// the store does not re-fetch on a miss. The backend's response is applied
// keyed by id and only if no later-issued write has been applied since.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return entities.Task{}, entities.ErrStoreClosed
	}
	current, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return entities.Task{}, entities.ErrTaskNotFound
	}
	if patch.IsEmpty() {
		s.mu.Unlock()
		return current, nil
	}
	s.issued[id]++
	rev := s.issued[id]
	s.mu.Unlock()

	updated, err := s.api.PatchTask(ctx, id, patch)
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entities.Task{}, entities.ErrStoreClosed
	}
	current, ok = s.findLocked(id)
	if !ok {
		// Deleted while the patch was in flight; a deleted id never
		// reappears through a late response.
		return entities.Task{}, entities.ErrTaskNotFound
	}
	if rev <= s.applied[id] {
		// A later-issued write has already been confirmed; this response
		// is stale and dropped without being surfaced.
		s.logger.Debugw("Stale patch response dropped", "task_id", id, "revision", rev, "applied", s.applied[id])
		return current, nil
	}
	updated.ID = id
	s.replaceLocked(updated)
	s.applied[id] = rev

	s.logger.Infow("Task updated", "task_id", id)
	return updated, nil
}

// ToggleCompletion flips a task between pending and completed.
func (s *TaskStore) ToggleCompletion(ctx context.Context, id int64) (entities.Task, error) {
	s.mu.RLock()
	current, ok := s.findLocked(id)
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return entities.Task{}, entities.ErrStoreClosed
	}
	if !ok {
		return entities.Task{}, entities.ErrTaskNotFound
	}

	completed := !current.Completed
	return s.UpdateTask(ctx, id, entities.TaskPatch{Completed: &completed})
}

// DeleteTask removes a task. The local store changes only after the backend
// confirms the delete; on failure the store is untouched. A deleted id is
// terminal and can only return via a fresh AddTask.
func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	s.mu.RLock()
	_, ok := s.findLocked(id)
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return entities.ErrStoreClosed
	}
	if !ok {
		return entities.ErrTaskNotFound
	}

	if err := s.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entities.ErrStoreClosed
	}
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}

	s.logger.Infow("Task deleted", "task_id", id)
	return nil
}

// Tasks returns a snapshot of all tasks in insertion order.
func (s *TaskStore) Tasks() []entities.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Task(nil), s.tasks...)
}

// Today returns the current local calendar day.
func (s *TaskStore) Today() entities.Date {
	return entities.DateOf(s.now().In(s.loc))
}

// TasksDueOn yields the tasks due on the given calendar day. The sequence is
// pure and restartable; each iteration works on a fresh snapshot.
func (s *TaskStore) TasksDueOn(day entities.Date) iter.Seq[entities.Task] {
	return func(yield func(entities.Task) bool) {
		for _, t := range s.Tasks() {
			if t.DueOn(day) && !yield(t) {
				return
			}
		}
	}
}

// TasksDueWithin yields the tasks due strictly after today and at most days
// calendar days out.
func (s *TaskStore) TasksDueWithin(days int) iter.Seq[entities.Task] {
	today := s.Today()
	return func(yield func(entities.Task) bool) {
		for _, t := range s.Tasks() {
			if t.DueWithin(today, days) && !yield(t) {
				return
			}
		}
	}
}

// UpcomingIncomplete returns at most limit incomplete tasks that have a due
// date, ascending by due date with ties broken by insertion order.
func (s *TaskStore) UpcomingIncomplete(limit int) []entities.Task {
	if limit <= 0 {
		return []entities.Task{}
	}

	upcoming := make([]entities.Task, 0, limit)
	for _, t := range s.Tasks() {
		if !t.Completed && !t.DueDate.IsZero() {
			upcoming = append(upcoming, t)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// CompletionStats returns the completed and total task counts. Consumers
// derive a percentage via entities.CompletionPercent, which treats an empty
// store as 0%.
func (s *TaskStore) CompletionStats() (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		}
	}
	return completed, len(s.tasks)
}

func (s *TaskStore) findLocked(id int64) (entities.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return entities.Task{}, false
}

func (s *TaskStore) replaceLocked(task entities.Task) {
	for i, t := range s.tasks {
		if t.ID == task.ID {
			s.tasks[i] = task
			return
		}
	}
}
