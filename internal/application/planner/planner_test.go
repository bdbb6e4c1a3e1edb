package planner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// fakeAPI is an in-memory stand-in for the planner backend. Unset hooks
// answer with zero values so each test only wires what it exercises.
type fakeAPI struct {
	listTasksFn     func(ctx context.Context) ([]entities.Task, error)
	createTaskFn    func(ctx context.Context, req ports.CreateTaskRequest) (entities.Task, error)
	patchTaskFn     func(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error)
	deleteTaskFn    func(ctx context.Context, id int64) error
	listCoursesFn   func(ctx context.Context) ([]entities.Course, error)
	createCourseFn  func(ctx context.Context, req ports.CreateCourseRequest) (entities.Course, error)
	createShareFn   func(ctx context.Context, courseNames []string) (string, error)
	resolveSharedFn func(ctx context.Context, token string) (entities.SharedSchedule, error)

	calls atomic.Int64
}

var _ ports.PlannerAPI = (*fakeAPI)(nil)

func (f *fakeAPI) ListTasks(ctx context.Context) ([]entities.Task, error) {
	f.calls.Add(1)
	if f.listTasksFn != nil {
		return f.listTasksFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (entities.Task, error) {
	f.calls.Add(1)
	if f.createTaskFn != nil {
		return f.createTaskFn(ctx, req)
	}
	return entities.Task{}, nil
}

func (f *fakeAPI) PatchTask(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error) {
	f.calls.Add(1)
	if f.patchTaskFn != nil {
		return f.patchTaskFn(ctx, id, patch)
	}
	return entities.Task{}, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id int64) error {
	f.calls.Add(1)
	if f.deleteTaskFn != nil {
		return f.deleteTaskFn(ctx, id)
	}
	return nil
}

func (f *fakeAPI) ListCourses(ctx context.Context) ([]entities.Course, error) {
	f.calls.Add(1)
	if f.listCoursesFn != nil {
		return f.listCoursesFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) CreateCourse(ctx context.Context, req ports.CreateCourseRequest) (entities.Course, error) {
	f.calls.Add(1)
	if f.createCourseFn != nil {
		return f.createCourseFn(ctx, req)
	}
	return entities.Course{}, nil
}

func (f *fakeAPI) CreateShareLink(ctx context.Context, courseNames []string) (string, error) {
	f.calls.Add(1)
	if f.createShareFn != nil {
		return f.createShareFn(ctx, courseNames)
	}
	return "", nil
}

func (f *fakeAPI) ResolveSharedSchedule(ctx context.Context, token string) (entities.SharedSchedule, error) {
	f.calls.Add(1)
	if f.resolveSharedFn != nil {
		return f.resolveSharedFn(ctx, token)
	}
	return entities.SharedSchedule{}, nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]entities.AdminUser, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeAPI) RemoveUser(ctx context.Context, uid string) error {
	f.calls.Add(1)
	return nil
}

func (f *fakeAPI) ResetCalendar(ctx context.Context, uid string) error {
	f.calls.Add(1)
	return nil
}

// echoingAPI answers creates and patches the way the real backend does:
// assigning ids and echoing the patched task back.
func echoingAPI() *fakeAPI {
	var nextID int64
	byID := make(map[int64]entities.Task)

	f := &fakeAPI{}
	f.createTaskFn = func(ctx context.Context, req ports.CreateTaskRequest) (entities.Task, error) {
		nextID++
		task := entities.Task{
			ID:        nextID,
			Text:      req.Text,
			Course:    req.Course,
			Tag:       req.Tag,
			DueDate:   req.DueDate,
			Deadline:  req.Deadline,
			Completed: false,
		}
		byID[task.ID] = task
		return task, nil
	}
	f.patchTaskFn = func(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error) {
		task := byID[id]
		task.ID = id
		patch.ApplyTo(&task)
		byID[id] = task
		return task, nil
	}
	return f
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func newTestStore(api ports.PlannerAPI) *TaskStore {
	s := NewTaskStore(api, logger.NewNop())
	s.now = func() time.Time {
		return time.Date(2025, time.February, 24, 12, 0, 0, 0, time.UTC)
	}
	s.loc = time.UTC
	return s
}

func today() entities.Date {
	return entities.Date{Year: 2025, Month: time.February, Day: 24}
}
