package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniplanner/core/internal/adapters/feed"
	"github.com/uniplanner/core/internal/application/planner"
	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
)

// ViewHandler serves the read-only derived views over the synced planner
// state: due-today, due-soon, upcoming work, completion stats and the
// calendar projection.
type ViewHandler struct {
	tasks    *planner.TaskStore
	registry *planner.CourseRegistry
	logger   *logger.Logger
}

// NewViewHandler creates a view handler.
func NewViewHandler(tasks *planner.TaskStore, registry *planner.CourseRegistry, appLogger *logger.Logger) *ViewHandler {
	return &ViewHandler{
		tasks:    tasks,
		registry: registry,
		logger:   appLogger,
	}
}

// Today handles GET /views/today
func (h *ViewHandler) Today(c echo.Context) error {
	day := h.tasks.Today()
	due := []entities.Task{}
	for t := range h.tasks.TasksDueOn(day) {
		due = append(due, t)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  day.String(),
		"tasks": due,
	})
}

// Soon handles GET /views/soon
func (h *ViewHandler) Soon(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be a positive integer")
		}
		days = parsed
	}

	due := []entities.Task{}
	for t := range h.tasks.TasksDueWithin(days) {
		due = append(due, t)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"days":  days,
		"tasks": due,
	})
}

// Upcoming handles GET /views/upcoming
func (h *ViewHandler) Upcoming(c echo.Context) error {
	limit := 5
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"limit": limit,
		"tasks": h.tasks.UpcomingIncomplete(limit),
	})
}

// Stats handles GET /views/stats
func (h *ViewHandler) Stats(c echo.Context) error {
	completed, total := h.tasks.CompletionStats()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"completed": completed,
		"total":     total,
		"percent":   entities.CompletionPercent(completed, total),
	})
}

// Calendar handles GET /views/calendar
func (h *ViewHandler) Calendar(c echo.Context) error {
	events := planner.ProjectSchedule(h.tasks.Tasks(), h.registry.Courses(), h.selectedCourses(c))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// CalendarFeed handles GET /calendar.ics
func (h *ViewHandler) CalendarFeed(c echo.Context) error {
	events := planner.ProjectSchedule(h.tasks.Tasks(), h.registry.Courses(), h.selectedCourses(c))

	c.Response().Header().Set(echo.HeaderContentType, feed.MimeType)
	c.Response().WriteHeader(http.StatusOK)
	if err := feed.WriteCalendar(c.Response(), "UniPlanner", events); err != nil {
		h.logger.Errorw("Calendar feed encoding failed", "error", err)
		return err
	}
	return nil
}

// selectedCourses reads the courses query parameter; when absent every
// course in the registry is selected.
func (h *ViewHandler) selectedCourses(c echo.Context) []string {
	raw, present := c.QueryParams()["courses"]
	if !present {
		courses := h.registry.Courses()
		names := make([]string, 0, len(courses))
		for _, course := range courses {
			names = append(names, course.Name)
		}
		return names
	}

	names := []string{}
	for _, chunk := range raw {
		for _, name := range strings.Split(chunk, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// ShareHandler serves share-link creation and resolution.
type ShareHandler struct {
	share  *planner.ShareService
	logger *logger.Logger
}

// NewShareHandler creates a share handler.
func NewShareHandler(share *planner.ShareService, appLogger *logger.Logger) *ShareHandler {
	return &ShareHandler{
		share:  share,
		logger: appLogger,
	}
}

// CreateShareRequest is the POST /share request body.
type CreateShareRequest struct {
	Courses []string `json:"courses" validate:"required,min=1"`
}

// Create handles POST /share
func (h *ShareHandler) Create(c echo.Context) error {
	var req CreateShareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.share.CreateLink(c.Request().Context(), req.Courses)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

// Resolve handles GET /shared/:token
func (h *ShareHandler) Resolve(c echo.Context) error {
	schedule, err := h.share.Resolve(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	events := schedule.Events
	if raw, present := c.QueryParams()["courses"]; present {
		selected := []string{}
		for _, chunk := range raw {
			for _, name := range strings.Split(chunk, ",") {
				if name = strings.TrimSpace(name); name != "" {
					selected = append(selected, name)
				}
			}
		}
		events = planner.FilterEvents(schedule.Events, selected)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ownerName": schedule.OwnerName,
		"courses":   planner.EventCourses(schedule.Events),
		"events":    events,
	})
}
