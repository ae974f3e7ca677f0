package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantumstock/backend/internal/store"
)

var markOff bool

// markCmd represents the mark command
var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Toggle favorite/observation flags on a selection",
	Long: `Flags one selection row for follow-up. The screening engine never
touches these flags: re-running a run_id keeps them intact.

Example:
  go run ./cmd/quantum mark favorite "2025-06-20 1/2～6/30" 600000.SH 20250616
  go run ./cmd/quantum mark observation "2025-06-20 1/2～6/30" 600000.SH 20250616 --off`,
}

var markFavoriteCmd = &cobra.Command{
	Use:   "favorite [run_id] [instrument] [trade_date]",
	Short: "Toggle the favorite flag",
	Args:  cobra.ExactArgs(3),
	RunE:  runMarkFavorite,
}

var markObservationCmd = &cobra.Command{
	Use:   "observation [run_id] [instrument] [trade_date]",
	Short: "Toggle the observation flag",
	Args:  cobra.ExactArgs(3),
	RunE:  runMarkObservation,
}

func init() {
	rootCmd.AddCommand(markCmd)
	markCmd.AddCommand(markFavoriteCmd)
	markCmd.AddCommand(markObservationCmd)
	markCmd.PersistentFlags().BoolVar(&markOff, "off", false, "clear the flag instead of setting it")
}

func runMarkFavorite(cmd *cobra.Command, args []string) error {
	tradeDate, err := parseDate(args[2])
	if err != nil {
		return err
	}

	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	if err := selections.SetFavorite(cmd.Context(), args[0], args[1], tradeDate, !markOff); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("favorite=%v for %s / %s / %s", !markOff, args[0], args[1], args[2]))
	return nil
}

func runMarkObservation(cmd *cobra.Command, args []string) error {
	tradeDate, err := parseDate(args[2])
	if err != nil {
		return err
	}

	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	selections := store.NewSelectionRepository(rt.db.Pool, rt.log)
	if err := selections.SetObservation(cmd.Context(), args[0], args[1], tradeDate, !markOff); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("observation=%v for %s / %s / %s", !markOff, args[0], args[1], args[2]))
	return nil
}
