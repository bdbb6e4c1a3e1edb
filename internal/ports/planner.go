package ports

import (
	"context"
	"time"

	"github.com/uniplanner/core/internal/domain/entities"
)

// PlannerAPI is the contract of the remote planner backend. Implementations
// attach the caller's bearer credential as an opaque string; nothing in this
// module inspects or parses it. Share resolution is the one unauthenticated
// call.
type PlannerAPI interface {
	ListTasks(ctx context.Context) ([]entities.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (entities.Task, error)
	PatchTask(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	ListCourses(ctx context.Context) ([]entities.Course, error)
	CreateCourse(ctx context.Context, req CreateCourseRequest) (entities.Course, error)

	CreateShareLink(ctx context.Context, courseNames []string) (string, error)
	ResolveSharedSchedule(ctx context.Context, token string) (entities.SharedSchedule, error)

	ListUsers(ctx context.Context) ([]entities.AdminUser, error)
	RemoveUser(ctx context.Context, uid string) error
	ResetCalendar(ctx context.Context, uid string) error
}

// CreateTaskRequest is the create-task wire payload: the task fields minus
// the backend-assigned id.
type CreateTaskRequest struct {
	Text      string        `json:"text" validate:"required"`
	Course    string        `json:"course" validate:"required"`
	Tag       string        `json:"tag,omitempty"`
	DueDate   entities.Date `json:"due_date"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
	Completed bool          `json:"completed"`
}

// CreateCourseRequest is the create-course wire payload.
type CreateCourseRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

// SnapshotCache persists the last synced tasks and courses so list views
// keep working without the backend.
type SnapshotCache interface {
	SaveTasks(tasks []entities.Task) error
	LoadTasks() ([]entities.Task, error)
	SaveCourses(courses []entities.Course) error
	LoadCourses() ([]entities.Course, error)
	Close() error
}
