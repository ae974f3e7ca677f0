package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/store"
)

var statusLimit int

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs from the task log",
	Long: `Prints the newest task_log entries so an operator can see at a
glance whether the nightly pipelines ran and how they ended.

Example:
  go run ./cmd/quantum status
  go run ./cmd/quantum status --limit 50`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	taskLog := store.NewTaskLogRepository(rt.db.Pool, rt.log)
	entries, err := taskLog.Recent(cmd.Context(), statusLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		PrintInfo("Task log is empty")
		return nil
	}

	widths := []int{19, 20, 8, 60}
	PrintTableHeader([]string{"Time", "Task", "Status", "Message"}, widths)
	for _, e := range entries {
		msg := e.Message
		if len(msg) > 60 {
			msg = msg[:57] + "..."
		}
		PrintTableRow([]string{
			e.Ts.Format("2006-01-02 15:04:05"),
			e.TaskName,
			e.Status,
			msg,
		}, widths)
	}

	fmt.Println()
	PrintInfo(fmt.Sprintf("%d entries", len(entries)))
	return nil
}
