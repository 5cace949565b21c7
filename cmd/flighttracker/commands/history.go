package commands

import (
	"fmt"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/cmd/flighttracker/utils"
	"flighttracker-backend/internal/flights"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <route id>",
	Short: "Shows every recorded price of a route and how it changed overall.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())
		out := cmd.OutOrStdout()

		id, err := utils.ParseRouteID(args[0])
		if err != nil {
			return err
		}
		route, err := ctx.App.Store.GetRoute(cmd.Context(), id)
		if err != nil {
			return err
		}
		history, err := ctx.App.Store.History(cmd.Context(), id)
		if err != nil {
			return err
		}

		summary, ok := flights.Summarize(history)
		if !ok {
			fmt.Fprintf(out, "%s: no prices recorded yet.\n", route)
			return nil
		}

		t := utils.NewTable(out)
		t.SetTitle(route.String())
		t.AppendHeader(table.Row{"Observed", "Price"})
		for _, o := range history {
			t.AppendRow(table.Row{o.ObservedAt.Format("2006-01-02 15:04"), o.Amount})
		}
		t.Render()

		fmt.Fprintf(
			out,
			"%d prices, lowest %s, highest %s, overall change %s (%s%%)\n",
			summary.Count,
			summary.Lowest,
			summary.Highest,
			utils.FormatSigned(summary.Change),
			utils.FormatSigned(summary.ChangePercent),
		)
		return nil
	},
}
