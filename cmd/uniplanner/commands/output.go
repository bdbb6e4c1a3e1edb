package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/uniplanner/core/internal/application/planner"
	"github.com/uniplanner/core/internal/domain/entities"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Faint(true)
)

func courseStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

func printTasks(registry *planner.CourseRegistry, tasks []entities.Task, heading string) {
	fmt.Println(headingStyle.Render(heading))
	if len(tasks) == 0 {
		fmt.Println(mutedStyle.Render("  nothing here"))
		return
	}

	for _, t := range tasks {
		course := courseStyle(registry.ColorOf(t.Course)).Render(t.Course)
		text := t.Text
		if t.Completed {
			text = doneStyle.Render(text)
		}

		line := fmt.Sprintf("  %4d  %s  %s: %s", t.ID, t.DueDate, course, text)
		if t.Tag != "" {
			line += "  " + mutedStyle.Render("["+t.Tag+"]")
		}
		fmt.Println(line)
	}
}

func printCourses(courses []entities.Course) {
	fmt.Println(headingStyle.Render("Courses"))
	if len(courses) == 0 {
		fmt.Println(mutedStyle.Render("  no courses yet"))
		return
	}
	for _, c := range courses {
		fmt.Printf("  %4d  %s  %s\n", c.ID, courseStyle(c.Color).Render(c.Name), mutedStyle.Render(c.Color))
	}
}

func printStats(completed, total int) {
	fmt.Printf("%s %d/%d (%.0f%%)\n",
		mutedStyle.Render("completed:"),
		completed, total,
		entities.CompletionPercent(completed, total),
	)
}

func printSharedSchedule(schedule entities.SharedSchedule) {
	fmt.Println(headingStyle.Render(schedule.OwnerName + "'s shared calendar"))
	if len(schedule.Events) == 0 {
		fmt.Println(mutedStyle.Render("  nothing shared"))
		return
	}
	for _, e := range schedule.Events {
		fmt.Printf("  %s  %s: %s\n", e.Date, courseStyle(e.Color).Render(e.Course), e.Title)
	}
}

func printUsers(users []entities.AdminUser) {
	fmt.Println(headingStyle.Render("Users"))
	for _, u := range users {
		fmt.Printf("  %s  %s %s  %s  %s\n", u.UID, u.FirstName, u.LastName, u.Email, mutedStyle.Render(u.School))
	}
}
