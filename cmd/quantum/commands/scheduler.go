package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/calendar"
	"github.com/quantumstock/backend/internal/external/tushare"
	"github.com/quantumstock/backend/internal/ingest"
	"github.com/quantumstock/backend/internal/scheduler"
	"github.com/quantumstock/backend/internal/scheduler/jobs"
	"github.com/quantumstock/backend/internal/screen"
	"github.com/quantumstock/backend/internal/store"
)

var (
	ingestSchedule string
	screenSchedule string
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the nightly pipeline scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- daily_bar_ingest:  weekdays 17:30, pulls today's bars
- stock_screening:   weekdays 18:30, screens the recent window

Each trigger takes the task's distributed run lock first, so a slow
run is skipped rather than doubled.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - trigger one job immediately

Example:
  go run ./cmd/quantum scheduler start
  go run ./cmd/quantum scheduler run daily_bar_ingest`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Trigger one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&ingestSchedule, "ingest-schedule", "", "cron override for the ingest job")
	schedulerCmd.PersistentFlags().StringVar(&screenSchedule, "screen-schedule", "", "cron override for the screening job")
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	sched.Start()

	PrintSuccess("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	fmt.Println("Registered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	if err := sched.TriggerNow(args[0]); err != nil {
		return err
	}

	// The job runs on its own goroutine; block until interrupted so the
	// process does not exit under it.
	fmt.Printf("Job %s triggered, press Ctrl+C once it finishes\n", args[0])
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	return nil
}

func initScheduler() (*runtime, *scheduler.Scheduler, error) {
	rt, err := initRuntime()
	if err != nil {
		return nil, nil, err
	}

	if err := rt.cfg.RequireTushare(); err != nil {
		rt.close()
		return nil, nil, err
	}

	provider := tushare.NewClient(rt.cfg, rt.log)
	fetcher := ingest.NewFetcher(provider, ingest.DefaultRetryPolicy(), rt.log)
	bars := store.NewBarRepository(rt.db.Pool, rt.log)
	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	taskLog := store.NewTaskLogRepository(rt.db.Pool, rt.log)

	driver := ingest.NewDriver(fetcher, bars, taskLog, rt.log)
	runner := screen.NewRunner(bars, selections, calendar.China(), taskLog, rt.log)

	sched := scheduler.New(rt.runLock, rt.log)

	if err := sched.AddJob(jobs.NewDailyIngest(driver, ingestSchedule, rt.log)); err != nil {
		rt.close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewDailyScreen(runner, screenSchedule, "", rt.log)); err != nil {
		rt.close()
		return nil, nil, err
	}

	return rt, sched, nil
}
