package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/calendar"
	"github.com/quantumstock/backend/internal/screen"
	"github.com/quantumstock/backend/internal/store"
)

var (
	screenStart string
	screenEnd   string
	screenNote  string
	screenLag   int
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen stored bars and persist the hits under a new run_id",
	Long: `Loads the stored bar history for the range, applies the four-clause
screening rule per instrument, and saves every hit with its derived
buy/gold dates. The whole run commits atomically; on any failure
nothing is visible and a FAIL entry lands in the task log.

Example:
  go run ./cmd/quantum screen --start 20250101 --end 20250630 --note "H1 sweep"
  go run ./cmd/quantum screen --start 20250101 --end 20250630 --lag 1`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenStart, "start", "", "start date, YYYYMMDD (required)")
	screenCmd.Flags().StringVar(&screenEnd, "end", "", "end date, YYYYMMDD (required)")
	screenCmd.Flags().StringVar(&screenNote, "note", "", "free-text note embedded in the run_id")
	screenCmd.Flags().IntVar(&screenLag, "lag", screen.DefaultLagOffset, "lag offset d1 for the signal windows")
	screenCmd.MarkFlagRequired("start")
	screenCmd.MarkFlagRequired("end")
}

func runScreen(cmd *cobra.Command, args []string) error {
	start, err := parseDate(screenStart)
	if err != nil {
		return err
	}
	end, err := parseDate(screenEnd)
	if err != nil {
		return err
	}

	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()

	release, err := rt.runLock.Acquire(ctx, screen.TaskName, time.Hour)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	defer release()

	bars := store.NewBarRepository(rt.db.Pool, rt.log)
	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	taskLog := store.NewTaskLogRepository(rt.db.Pool, rt.log)
	runner := screen.NewRunner(bars, selections, calendar.China(), taskLog, rt.log)

	fmt.Printf("Screening %s ~ %s (lag %d)\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"), screenLag)
	PrintSeparator()

	began := time.Now()
	runID, hits, err := runner.Run(ctx, start, end, screenNote, screenLag)
	if err != nil {
		PrintError(fmt.Sprintf("Screening failed: %v", err))
		return err
	}

	fmt.Println()
	PrintKeyValue("Run ID", runID, 8)
	PrintKeyValue("Hits", fmt.Sprintf("%d", hits), 8)
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Screening run finished in %.1fs", time.Since(began).Seconds()))
	return nil
}
