package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/uniplanner/core/internal/adapters/api"
	"github.com/uniplanner/core/internal/application/planner"
	"github.com/uniplanner/core/internal/infrastructure/cache"
	"github.com/uniplanner/core/internal/infrastructure/config"
	"github.com/uniplanner/core/internal/infrastructure/logger"
)

// app bundles the wired client stack every command works against.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry

	client   *api.Client
	tasks    *planner.TaskStore
	courses  *planner.CourseRegistry
	share    *planner.ShareService
	admin    *planner.AdminService
	snapshot *cache.Snapshot
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	client := api.NewClient(cfg.API, appLogger, api.NewMetrics(registry))

	snapshot, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   appLogger,
		registry: registry,
		client:   client,
		tasks:    planner.NewTaskStore(client, appLogger),
		courses:  planner.NewCourseRegistry(client, appLogger),
		share:    planner.NewShareService(client, appLogger),
		admin:    planner.NewAdminService(client, appLogger),
		snapshot: snapshot,
	}, nil
}

func (a *app) close() {
	a.tasks.Close()
	a.snapshot.Close()
	a.logger.Sync()
}

// sync pulls tasks and courses from the backend and refreshes the local
// snapshot.
func (a *app) sync(ctx context.Context) error {
	if err := a.courses.Load(ctx); err != nil {
		return err
	}
	if err := a.tasks.Load(ctx); err != nil {
		return err
	}

	if err := a.snapshot.SaveCourses(a.courses.Courses()); err != nil {
		return fmt.Errorf("failed to cache courses: %w", err)
	}
	if err := a.snapshot.SaveTasks(a.tasks.Tasks()); err != nil {
		return fmt.Errorf("failed to cache tasks: %w", err)
	}
	return nil
}

// restore seeds the stores from the local snapshot; a cold cache falls back
// to a full sync.
func (a *app) restore(ctx context.Context) error {
	tasks, err := a.snapshot.LoadTasks()
	if err != nil {
		return fmt.Errorf("failed to read snapshot cache: %w", err)
	}
	courses, err := a.snapshot.LoadCourses()
	if err != nil {
		return fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	if tasks == nil && courses == nil {
		return a.sync(ctx)
	}

	a.tasks.Restore(tasks)
	a.courses.Restore(courses)
	return nil
}
