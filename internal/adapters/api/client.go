package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/config"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// Client talks to the planner backend over HTTP. It implements
// ports.PlannerAPI. The bearer credential is attached verbatim to every
// authenticated call and never inspected.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logger.Logger
	metrics *Metrics
}

// NewClient creates a planner API client. metrics may be nil.
func NewClient(cfg config.APIConfig, appLogger *logger.Logger, metrics *Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  appLogger.WithComponent("planner_api"),
		metrics: metrics,
	}
}

var _ ports.PlannerAPI = (*Client)(nil)

// ListTasks fetches all of the user's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]entities.Task, error) {
	var tasks []entities.Task
	if err := c.do(ctx, "list_tasks", http.MethodGet, "/tasks", nil, &tasks, true); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns it with the backend-assigned id.
func (c *Client) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, "create_task", http.MethodPost, "/tasks", req, &task, true); err != nil {
		return entities.Task{}, err
	}
	return task, nil
}

// PatchTask applies a partial update and returns the updated task.
func (c *Client) PatchTask(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error) {
	var task entities.Task
	path := "/tasks/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "patch_task", http.MethodPatch, path, patch, &task, true); err != nil {
		return entities.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	path := "/tasks/" + strconv.FormatInt(id, 10)
	return c.do(ctx, "delete_task", http.MethodDelete, path, nil, nil, true)
}

// ListCourses fetches the user's courses.
func (c *Client) ListCourses(ctx context.Context) ([]entities.Course, error) {
	var courses []entities.Course
	if err := c.do(ctx, "list_courses", http.MethodGet, "/courses", nil, &courses, true); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse creates a course and returns it with the backend-assigned id.
func (c *Client) CreateCourse(ctx context.Context, req ports.CreateCourseRequest) (entities.Course, error) {
	var course entities.Course
	if err := c.do(ctx, "create_course", http.MethodPost, "/courses", req, &course, true); err != nil {
		return entities.Course{}, err
	}
	return course, nil
}

// CreateShareLink mints a share token for the selected courses.
func (c *Client) CreateShareLink(ctx context.Context, courseNames []string) (string, error) {
	req := struct {
		Courses []string `json:"courses"`
	}{Courses: courseNames}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "create_share_link", http.MethodPost, "/share-schedule", req, &resp, true); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ResolveSharedSchedule resolves a share token to its read-only schedule.
// This is the one call made without a credential.
func (c *Client) ResolveSharedSchedule(ctx context.Context, token string) (entities.SharedSchedule, error) {
	var schedule entities.SharedSchedule
	if err := c.do(ctx, "resolve_shared", http.MethodGet, "/shared/"+token, nil, &schedule, false); err != nil {
		return entities.SharedSchedule{}, err
	}
	return schedule, nil
}

// ListUsers fetches the administrative user listing. Authorization is
// enforced by the backend, not here.
func (c *Client) ListUsers(ctx context.Context) ([]entities.AdminUser, error) {
	var users []entities.AdminUser
	if err := c.do(ctx, "admin_list_users", http.MethodGet, "/admin/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// RemoveUser deletes a user and their data.
func (c *Client) RemoveUser(ctx context.Context, uid string) error {
	return c.do(ctx, "admin_remove_user", http.MethodDelete, "/admin/users/"+uid, nil, nil, true)
}

// ResetCalendar wipes a user's tasks and courses.
func (c *Client) ResetCalendar(ctx context.Context, uid string) error {
	return c.do(ctx, "admin_reset_calendar", http.MethodPost, "/admin/users/"+uid+"/reset-calendar", nil, nil, true)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}, authed bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &entities.RemoteError{Op: op, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &entities.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.logger.LogAPICall(op, method, path, status, float64(duration.Nanoseconds())/1e6, err)
	if c.metrics != nil {
		c.metrics.observe(op, status, duration)
	}

	if err != nil {
		return &entities.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &entities.RemoteError{Op: op, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &entities.RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return nil
}
