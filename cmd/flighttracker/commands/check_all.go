package commands

import (
	"fmt"
	"time"

	"flighttracker-backend/cmd/flighttracker/globals"

	"github.com/spf13/cobra"
)

var checkAllPause time.Duration

func init() {
	checkAllCmd.Flags().DurationVar(&checkAllPause, "pause", 0, "pause between routes (defaults to the configured pause)")
	rootCmd.AddCommand(checkAllCmd)
}

var checkAllCmd = &cobra.Command{
	Use:   "check-all",
	Short: "Checks every tracked route, one at a time.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		pause := checkAllPause
		if !cmd.Flags().Changed("pause") {
			pause = ctx.App.Config.Schedule.Pause()
		}

		results, err := ctx.App.Tracker.CheckAll(cmd.Context(), pause)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: check failed: %v\n", r.Route, r.Err)
				continue
			}
			printResult(cmd.OutOrStdout(), r.Route, r.Result)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Checked %d routes.\n", len(results))
		return nil
	},
}
