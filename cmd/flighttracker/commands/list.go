package commands

import (
	"fmt"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/cmd/flighttracker/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists tracked routes, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		routes, err := ctx.App.Store.ListRoutes(cmd.Context())
		if err != nil {
			return err
		}
		if len(routes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No routes are being tracked.")
			return nil
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.AppendHeader(utils.RouteHeader)
		for _, r := range routes {
			t.AppendRow(utils.RouteRow(r))
		}
		t.Render()
		return nil
	},
}
