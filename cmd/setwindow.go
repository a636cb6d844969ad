package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hydrosuite/qualw2/internal/config"
)

var setWindowCmd = &cobra.Command{
	Use:   "set-window <w2_con.csv> <start-jday> <end-jday> <year>",
	Short: "Rewrite the simulated time window in place",
	Long: `set-window edits only the line carrying the start day, end day, and
start year. Every other byte of the file is left exactly as it was, so the
edit is safe on files that do not round-trip through the full decoder.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("start day: %w", err)
		}
		end, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("end day: %w", err)
		}
		year, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("year: %w", err)
		}

		tw, err := config.OpenTimeWindow(args[0])
		if err != nil {
			return err
		}
		oldStart, oldEnd, oldYear, err := tw.Window()
		if err != nil {
			return err
		}
		if err := tw.SetWindow(start, end, year); err != nil {
			return err
		}
		if err := tw.Save(); err != nil {
			return err
		}
		fmt.Printf("window %g..%g year %d -> %g..%g year %d\n",
			oldStart, oldEnd, oldYear, start, end, year)
		return nil
	},
}
