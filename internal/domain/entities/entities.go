package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrStoreClosed    = errors.New("store is closed")
)

// DefaultCourseColor is the neutral color used when a course has no color of
// its own or cannot be resolved by name.
const DefaultCourseColor = "#000000"

// ValidationError reports a required field that is missing or empty. It is
// raised locally, before any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteError reports a failed call to the planner backend, either a
// transport failure or a non-success status.
type RemoteError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Date is a calendar day without a time component. Tasks are classified as
// due-today or due-soon by comparing Date values field-wise, never by raw
// timestamp equality, so the classification is stable across UTC offsets.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in the 2006-01-02 wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns the instant at local midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At combines d with a wall-clock time of day in the 15:04 format.
func (d Date) At(clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// AddDays returns the calendar day n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Compare orders two dates chronologically.
func (d Date) Compare(o Date) int {
	if d.Year != o.Year {
		return d.Year - o.Year
	}
	if d.Month != o.Month {
		return int(d.Month) - int(o.Month)
	}
	return d.Day - o.Day
}

func (d Date) Equal(o Date) bool  { return d.Compare(o) == 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// DaysUntil returns the number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.In(time.UTC).Sub(d.In(time.UTC)).Hours() / 24)
}

// MarshalJSON encodes the date in the 2006-01-02 wire format.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a 2006-01-02 date; null and "" yield the zero Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %q", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Course represents a user-defined category tasks are tagged with. Courses
// are immutable once created and owned by a single user's registry.
type Course struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Task represents a schedulable unit of work.
type Task struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Course    string     `json:"course"`
	Tag       string     `json:"tag,omitempty"`
	DueDate   Date       `json:"due_date"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Completed bool       `json:"completed"`
}

// DueOn reports whether the task is due on the given calendar day.
func (t *Task) DueOn(day Date) bool {
	return !t.DueDate.IsZero() && t.DueDate.Equal(day)
}

// DueWithin reports whether the task's due date is strictly after today and
// at most days calendar days out.
func (t *Task) DueWithin(today Date, days int) bool {
	if t.DueDate.IsZero() {
		return false
	}
	diff := today.DaysUntil(t.DueDate)
	return diff > 0 && diff <= days
}

// Overdue reports whether the task's due day has passed without completion.
func (t *Task) Overdue(today Date) bool {
	return !t.Completed && !t.DueDate.IsZero() && t.DueDate.Before(today)
}

// TaskPatch is a partial update to a task. Nil fields are left untouched.
type TaskPatch struct {
	Text      *string    `json:"text,omitempty"`
	Course    *string    `json:"course,omitempty"`
	Tag       *string    `json:"tag,omitempty"`
	DueDate   *Date      `json:"due_date,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Course == nil && p.Tag == nil &&
		p.DueDate == nil && p.Deadline == nil && p.Completed == nil
}

// ApplyTo overlays the patch onto a task.
func (p *TaskPatch) ApplyTo(t *Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Course != nil {
		t.Course = *p.Course
	}
	if p.Tag != nil {
		t.Tag = *p.Tag
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// ShareEvent is a calendar event exposed through a shared read-only view.
// These are the only task fields an external viewer may see.
type ShareEvent struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Date      Date   `json:"date"`
	Color     string `json:"color"`
	Course    string `json:"course"`
	Tag       string `json:"tag,omitempty"`
	Completed bool   `json:"completed"`
}

// SharedSchedule is the payload a share token resolves to.
type SharedSchedule struct {
	OwnerName string       `json:"ownerName"`
	Events    []ShareEvent `json:"events"`
}

// AdminUser is a row in the administrative user listing.
type AdminUser struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	School    string `json:"school"`
}

// CompletionPercent derives a completion percentage, treating 0/0 as 0.
func CompletionPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
