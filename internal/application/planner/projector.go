package planner

import (
	"github.com/uniplanner/core/internal/domain/entities"
)

// ProjectSchedule builds the read-only calendar events a shared view
// exposes. It is a pure function: inputs are never mutated, output preserves
// the relative order of tasks, and only tasks whose course is in the
// selection appear. An empty selection yields an empty projection. Colors
// are resolved against courses by name with the neutral fallback.
func ProjectSchedule(tasks []entities.Task, courses []entities.Course, selectedCourseNames []string) []entities.ShareEvent {
	events := []entities.ShareEvent{}
	if len(selectedCourseNames) == 0 {
		return events
	}

	selected := make(map[string]struct{}, len(selectedCourseNames))
	for _, name := range selectedCourseNames {
		selected[name] = struct{}{}
	}

	colors := make(map[string]string, len(courses))
	for _, c := range courses {
		if _, ok := colors[c.Name]; !ok && c.Color != "" {
			colors[c.Name] = c.Color
		}
	}

	for _, t := range tasks {
		if _, ok := selected[t.Course]; !ok {
			continue
		}
		color, ok := colors[t.Course]
		if !ok {
			color = entities.DefaultCourseColor
		}
		events = append(events, entities.ShareEvent{
			ID:        t.ID,
			Title:     t.Text,
			Date:      t.DueDate,
			Color:     color,
			Course:    t.Course,
			Tag:       t.Tag,
			Completed: t.Completed,
		})
	}

	return events
}

// FilterEvents narrows an already-projected event list to the selected
// courses, preserving order. Shared viewers use this to re-filter a resolved
// schedule client-side.
func FilterEvents(events []entities.ShareEvent, selectedCourseNames []string) []entities.ShareEvent {
	filtered := []entities.ShareEvent{}
	if len(selectedCourseNames) == 0 {
		return filtered
	}

	selected := make(map[string]struct{}, len(selectedCourseNames))
	for _, name := range selectedCourseNames {
		selected[name] = struct{}{}
	}

	for _, e := range events {
		if _, ok := selected[e.Course]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// EventCourses returns the distinct course names present in an event list,
// in first-appearance order.
func EventCourses(events []entities.ShareEvent) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, e := range events {
		if _, ok := seen[e.Course]; !ok {
			seen[e.Course] = struct{}{}
			names = append(names, e.Course)
		}
	}
	return names
}
