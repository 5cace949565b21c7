package commands

import (
	"fmt"
	"io"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/cmd/flighttracker/utils"
	"flighttracker-backend/internal/flights"
	"flighttracker-backend/internal/tracker"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

func printResult(out io.Writer, route flights.Route, result tracker.Result) {
	if !result.Outcome.Recorded() {
		fmt.Fprintf(out, "%s: no price found on the page, nothing recorded.\n", route)
		return
	}

	fmt.Fprintf(out, "%s: %s", route, result.Observation.Amount)
	if result.Previous != nil {
		fmt.Fprintf(out, " (was %s)", result.Previous.Amount)
	}
	fmt.Fprintln(out)

	for _, a := range result.Alerts {
		switch a.Event.Kind {
		case flights.EventDrop:
			fmt.Fprintf(out, "  price dropped by %s", a.Event.Magnitude)
		case flights.EventTargetReached:
			fmt.Fprintf(out, "  target %s reached, %s below it", a.Event.Target.Decimal, a.Event.Magnitude)
		}
		if a.Err != nil {
			fmt.Fprintf(out, " (alert failed: %v)\n", a.Err)
		} else {
			fmt.Fprintf(out, " (alert %s)\n", a.Delivery)
		}
	}
}

var checkCmd = &cobra.Command{
	Use:   "check <route id>",
	Short: "Fetches the current price of a route, records it and sends alerts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		id, err := utils.ParseRouteID(args[0])
		if err != nil {
			return err
		}
		route, err := ctx.App.Store.GetRoute(cmd.Context(), id)
		if err != nil {
			return err
		}
		result, err := ctx.App.Tracker.CheckPrice(cmd.Context(), id)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), route, result)
		return nil
	},
}
