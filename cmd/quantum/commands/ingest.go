package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/external/tushare"
	"github.com/quantumstock/backend/internal/ingest"
	"github.com/quantumstock/backend/internal/store"
)

var (
	ingestStart string
	ingestEnd   string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest daily bars for a date range",
	Long: `Walks every calendar day in the range, fetching the day's bars from
Tushare Pro and upserting them. Non-trading days come back empty and
are skipped; a day whose write fails is logged and skipped while the
range keeps going.

Example:
  go run ./cmd/quantum ingest --start 20250101 --end 20250630`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestStart, "start", "", "start date, YYYYMMDD (required)")
	ingestCmd.Flags().StringVar(&ingestEnd, "end", "", "end date, YYYYMMDD (defaults to start)")
	ingestCmd.MarkFlagRequired("start")
}

func runIngest(cmd *cobra.Command, args []string) error {
	start, err := parseDate(ingestStart)
	if err != nil {
		return err
	}
	if ingestEnd == "" {
		ingestEnd = ingestStart
	}
	end, err := parseDate(ingestEnd)
	if err != nil {
		return err
	}

	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.cfg.RequireTushare(); err != nil {
		return err
	}

	ctx := cmd.Context()

	release, err := rt.runLock.Acquire(ctx, ingest.TaskName, 4*time.Hour)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	defer release()

	provider := tushare.NewClient(rt.cfg, rt.log)
	fetcher := ingest.NewFetcher(provider, ingest.DefaultRetryPolicy(), rt.log)
	bars := store.NewBarRepository(rt.db.Pool, rt.log)
	taskLog := store.NewTaskLogRepository(rt.db.Pool, rt.log)
	driver := ingest.NewDriver(fetcher, bars, taskLog, rt.log)

	fmt.Printf("Ingesting %s ~ %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	PrintSeparator()

	began := time.Now()
	result, err := driver.Run(ctx, start, end)
	if err != nil {
		PrintError(fmt.Sprintf("Ingestion aborted: %v", err))
		return err
	}

	printIngestResult(result, time.Since(began))
	return nil
}

func printIngestResult(result *ingest.Result, elapsed time.Duration) {
	if !result.HasData {
		PrintInfo("No trading days in range, nothing written")
		return
	}

	fmt.Println()
	PrintTableHeader([]string{"Year", "Written", "Updated", "Inserted"}, []int{6, 10, 10, 10})

	years := make([]string, 0, len(result.ByYear))
	for year := range result.ByYear {
		years = append(years, year)
	}
	sort.Strings(years)

	for _, year := range years {
		ys := result.ByYear[year]
		PrintTableRow([]string{
			year,
			fmt.Sprintf("%d", ys.Written),
			fmt.Sprintf("%d", ys.Updated),
			fmt.Sprintf("%d", ys.Inserted),
		}, []int{6, 10, 10, 10})
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Ingested %d rows (%d updated, %d inserted) in %.1fs",
		result.TotalWritten, result.TotalUpdated, result.TotalInserted, elapsed.Seconds()))
}
