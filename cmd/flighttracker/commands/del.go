package commands

import (
	"fmt"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/cmd/flighttracker/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(delCmd)
}

var delCmd = &cobra.Command{
	Use:   "del <route id>",
	Short: "Stops tracking a route and deletes its price history.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		id, err := utils.ParseRouteID(args[0])
		if err != nil {
			return err
		}
		err = ctx.App.Store.DeleteRoute(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted route %d.\n", id)
		return nil
	},
}
