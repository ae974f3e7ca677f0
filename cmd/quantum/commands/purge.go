package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/store"
)

var (
	purgeFrom string
	purgeTo   string
)

// purgeCmd represents the purge command
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete screening selections",
	Long: `Deletes screening selections either by run_id or by the window in
which they were created. Operator tooling; the pipelines themselves
never delete.

Example:
  go run ./cmd/quantum purge run "2025-06-20 1/2～6/30 H1 sweep"
  go run ./cmd/quantum purge window --from 20250101 --to 20250131`,
}

var purgeRunCmd = &cobra.Command{
	Use:   "run [run_id]",
	Short: "Delete every selection of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurgeRun,
}

var purgeWindowCmd = &cobra.Command{
	Use:   "window",
	Short: "Delete selections created inside a date window",
	RunE:  runPurgeWindow,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.AddCommand(purgeRunCmd)
	purgeCmd.AddCommand(purgeWindowCmd)

	purgeWindowCmd.Flags().StringVar(&purgeFrom, "from", "", "window start, YYYYMMDD (required)")
	purgeWindowCmd.Flags().StringVar(&purgeTo, "to", "", "window end, YYYYMMDD (required)")
	purgeWindowCmd.MarkFlagRequired("from")
	purgeWindowCmd.MarkFlagRequired("to")
}

func runPurgeRun(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	deleted, err := selections.PurgeByRunID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Deleted %d selections of run %q", deleted, args[0]))
	return nil
}

func runPurgeWindow(cmd *cobra.Command, args []string) error {
	from, err := parseDate(purgeFrom)
	if err != nil {
		return err
	}
	to, err := parseDate(purgeTo)
	if err != nil {
		return err
	}
	// Make the window inclusive of the whole end day.
	to = to.AddDate(0, 0, 1)

	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	deleted, err := selections.PurgeByWindow(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Deleted %d selections created %s ~ %s",
		deleted, purgeFrom, purgeTo))
	return nil
}
