package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/uniplanner/core/cmd/uniplanner/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uniplanner",
		Short: "UniPlanner client",
		Long:  `UniPlanner is a student task and calendar planner client: it syncs your courses and tasks from the planner backend, derives due-today, due-soon and upcoming views, and can serve them locally as JSON and iCalendar feeds.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewTaskCommand())
	rootCmd.AddCommand(commands.NewCourseCommand())
	rootCmd.AddCommand(commands.NewShareCommand())
	rootCmd.AddCommand(commands.NewAdminCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
