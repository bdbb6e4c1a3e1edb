package planner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// CourseRegistry holds the signed-in user's courses and provides
// name-to-color lookup. Courses are kept in insertion order; duplicate names
// are permitted locally, uniqueness policy lives in the backend.
type CourseRegistry struct {
	api    ports.PlannerAPI
	logger *logger.Logger

	mu      sync.RWMutex
	courses []entities.Course
}

// NewCourseRegistry creates a course registry backed by the planner API.
func NewCourseRegistry(api ports.PlannerAPI, appLogger *logger.Logger) *CourseRegistry {
	return &CourseRegistry{
		api:    api,
		logger: appLogger.WithComponent("course_registry"),
	}
}

// Load replaces the registry contents with the backend's course list.
func (r *CourseRegistry) Load(ctx context.Context) error {
	courses, err := r.api.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load courses: %w", err)
	}

	r.mu.Lock()
	r.courses = courses
	r.mu.Unlock()

	r.logger.Debugw("Courses loaded", "count", len(courses))
	return nil
}

// Restore seeds the registry from a local snapshot without touching the
// backend.
func (r *CourseRegistry) Restore(courses []entities.Course) {
	r.mu.Lock()
	r.courses = append([]entities.Course(nil), courses...)
	r.mu.Unlock()
}

// AddCourse creates a course. The name must be non-empty after trimming. A
// pseudo-random hex color is synthesized unless the backend assigns one. The
// registry is only appended to after the backend confirms the create.
func (r *CourseRegistry) AddCourse(ctx context.Context, name string) (entities.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.Course{}, &entities.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	created, err := r.api.CreateCourse(ctx, ports.CreateCourseRequest{
		Name:  name,
		Color: randomHexColor(),
	})
	if err != nil {
		return entities.Course{}, fmt.Errorf("failed to create course: %w", err)
	}
	if created.Color == "" {
		created.Color = randomHexColor()
	}

	r.mu.Lock()
	r.courses = append(r.courses, created)
	r.mu.Unlock()

	r.logger.Infow("Course created", "course_id", created.ID, "name", created.Name)
	return created, nil
}

// Courses returns the courses in insertion order.
func (r *CourseRegistry) Courses() []entities.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.Course(nil), r.courses...)
}

// ColorOf returns the color of the named course, or the neutral fallback
// when no course matches. It never fails.
func (r *CourseRegistry) ColorOf(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.Name == name {
			if c.Color == "" {
				return entities.DefaultCourseColor
			}
			return c.Color
		}
	}
	return entities.DefaultCourseColor
}

func randomHexColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}
