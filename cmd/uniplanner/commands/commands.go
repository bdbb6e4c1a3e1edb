package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/uniplanner/core/internal/application/planner"
	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local read-only planner views",
		Long:  "Sync from the planner backend and serve the derived views (today, soon, upcoming, stats, calendar and the iCalendar feed) on a local HTTP port",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local snapshot from the planner backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.sync(cmd.Context()); err != nil {
				return err
			}

			_, total := a.tasks.CompletionStats()
			fmt.Printf("Synced %d tasks and %d courses\n", total, len(a.courses.Courses()))
			return nil
		},
	}
}

// NewTaskCommand creates the task management command
func NewTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task commands",
		Long:  "List, schedule, complete and remove tasks",
	}

	listCmd := &cobra.Command{
		Use:   "list [today|soon|upcoming|all]",
		Short: "List tasks from the local snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")
			days, _ := cmd.Flags().GetInt("days")
			limit, _ := cmd.Flags().GetInt("limit")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if refresh {
				err = a.sync(cmd.Context())
			} else {
				err = a.restore(cmd.Context())
			}
			if err != nil {
				return err
			}

			view := "today"
			if len(args) > 0 {
				view = args[0]
			}

			switch view {
			case "today":
				tasks := []entities.Task{}
				for t := range a.tasks.TasksDueOn(a.tasks.Today()) {
					tasks = append(tasks, t)
				}
				printTasks(a.courses, tasks, "Due today")
			case "soon":
				tasks := []entities.Task{}
				for t := range a.tasks.TasksDueWithin(days) {
					tasks = append(tasks, t)
				}
				printTasks(a.courses, tasks, fmt.Sprintf("Due within %d days", days))
			case "upcoming":
				printTasks(a.courses, a.tasks.UpcomingIncomplete(limit), "Upcoming work")
			case "all":
				printTasks(a.courses, a.tasks.Tasks(), "All tasks")
			default:
				return fmt.Errorf("unknown view %q", view)
			}

			completed, total := a.tasks.CompletionStats()
			printStats(completed, total)
			return nil
		},
	}
	listCmd.Flags().Bool("refresh", false, "Sync from the backend before listing")
	listCmd.Flags().Int("days", 7, "Window for the soon view")
	listCmd.Flags().Int("limit", 5, "Maximum tasks for the upcoming view")
	taskCmd.AddCommand(listCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			course, _ := cmd.Flags().GetString("course")
			tag, _ := cmd.Flags().GetString("tag")
			due, _ := cmd.Flags().GetString("due")
			at, _ := cmd.Flags().GetString("at")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			var dueDate entities.Date
			if due != "" {
				parsed, err := dateparse.ParseLocal(due)
				if err != nil {
					return fmt.Errorf("cannot parse due date %q: %w", due, err)
				}
				dueDate = entities.DateOf(parsed)
			}

			task, err := a.tasks.AddTask(cmd.Context(), planner.AddTaskInput{
				Text:          text,
				Course:        course,
				Tag:           tag,
				DueDate:       dueDate,
				DeadlineClock: at,
			})
			if err != nil {
				return err
			}

			if err := a.snapshot.SaveTasks(a.tasks.Tasks()); err != nil {
				return err
			}

			fmt.Printf("Task %d scheduled for %s\n", task.ID, task.DueDate)
			return nil
		},
	}
	addCmd.Flags().String("text", "", "Task title (required)")
	addCmd.Flags().String("course", "", "Course name (required)")
	addCmd.Flags().String("tag", "", "Optional tag")
	addCmd.Flags().String("due", "", "Due date (required)")
	addCmd.Flags().String("at", "23:59", "Deadline time of day (15:04)")
	taskCmd.AddCommand(addCmd)

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			task, err := a.tasks.ToggleCompletion(cmd.Context(), id)
			if err != nil {
				return err
			}

			if err := a.snapshot.SaveTasks(a.tasks.Tasks()); err != nil {
				return err
			}

			state := "pending"
			if task.Completed {
				state = "completed"
			}
			fmt.Printf("Task %d is now %s\n", task.ID, state)
			return nil
		},
	}
	taskCmd.AddCommand(doneCmd)

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			if err := a.tasks.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}

			if err := a.snapshot.SaveTasks(a.tasks.Tasks()); err != nil {
				return err
			}

			fmt.Printf("Task %d deleted\n", id)
			return nil
		},
	}
	taskCmd.AddCommand(rmCmd)

	return taskCmd
}

// NewCourseCommand creates the course management command
func NewCourseCommand() *cobra.Command {
	courseCmd := &cobra.Command{
		Use:   "course",
		Short: "Course commands",
	}

	courseCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			printCourses(a.courses.Courses())
			return nil
		},
	})

	courseCmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			course, err := a.courses.AddCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := a.snapshot.SaveCourses(a.courses.Courses()); err != nil {
				return err
			}

			fmt.Printf("Course %q created with color %s\n", course.Name, course.Color)
			return nil
		},
	})

	return courseCmd
}

// NewShareCommand creates the schedule sharing command
func NewShareCommand() *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Share a read-only view of your schedule",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a share link for the selected courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, _ := cmd.Flags().GetStringSlice("courses")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			token, err := a.share.CreateLink(cmd.Context(), courses)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}
	createCmd.Flags().StringSlice("courses", nil, "Course names to include (required)")
	shareCmd.AddCommand(createCmd)

	shareCmd.AddCommand(&cobra.Command{
		Use:   "view <token>",
		Short: "View a shared schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			schedule, err := a.share.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSharedSchedule(schedule)
			return nil
		},
	})

	return shareCmd
}

// NewAdminCommand creates the administrative command
func NewAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
		Long:  "List, remove and reset users. The backend decides whether the caller is allowed to do any of this.",
	}

	adminCmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			users, err := a.admin.Users(cmd.Context())
			if err != nil {
				return err
			}

			printUsers(users)
			return nil
		},
	})

	adminCmd.AddCommand(&cobra.Command{
		Use:   "remove <uid>",
		Short: "Remove a user and their data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.admin.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("User %s removed\n", args[0])
			return nil
		},
	})

	adminCmd.AddCommand(&cobra.Command{
		Use:   "reset <uid>",
		Short: "Reset a user's calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.admin.ResetCalendar(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Calendar reset for user %s\n", args[0])
			return nil
		},
	})

	return adminCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print UniPlanner client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("UniPlanner client v1.0.0")
		},
	}
}

func runServer() {
	a, err := newApp()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.close()

	ctx := context.Background()
	if err := a.sync(ctx); err != nil {
		a.logger.Warnw("Initial sync failed, serving from snapshot", "error", err)
		if err := a.restore(ctx); err != nil {
			a.logger.Fatalw("Failed to restore snapshot", "error", err)
		}
	}

	srv := server.New(a.cfg, a.tasks, a.courses, a.share, a.registry, a.logger)

	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Infow("View server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("Shutdown failed", "error", err)
	}
}
