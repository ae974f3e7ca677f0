package commands

import (
	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/store"
)

// initDBCmd represents the init-db command
var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the core tables if missing",
	Long: `Applies the embedded schema (bars, selections, task_log). Safe to run
repeatedly; everything is CREATE IF NOT EXISTS.

Example:
  go run ./cmd/quantum init-db`,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := store.EnsureSchema(cmd.Context(), rt.db.Pool); err != nil {
		return err
	}

	PrintSuccess("Schema applied")
	return nil
}
