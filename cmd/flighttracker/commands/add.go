package commands

import (
	"fmt"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/internal/flights"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var addTarget string

func init() {
	addCmd.Flags().StringVarP(&addTarget, "target", "t", "", "email when the price is at or below this amount")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:     "add <origin> <destination> <YYYY-MM-DD> <email>",
	Short:   "Starts tracking a route.",
	Example: "flighttracker add DEL BOM 2025-02-15 me@example.com --target 5000",
	Args:    cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		var target decimal.NullDecimal
		if addTarget != "" {
			amount, err := decimal.NewFromString(addTarget)
			if err != nil {
				return fmt.Errorf("target %q is not a number", addTarget)
			}
			target = decimal.NewNullDecimal(amount)
		}

		id, err := ctx.App.Store.CreateRoute(cmd.Context(), flights.NewRoute{
			Origin:        args[0],
			Destination:   args[1],
			DepartureDate: args[2],
			Email:         args[3],
			TargetPrice:   target,
		})
		if err != nil {
			return err
		}
		route, err := ctx.App.Store.GetRoute(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tracking route %d: %s\n", id, route)
		return nil
	},
}
