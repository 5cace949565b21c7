package commands

import (
	"context"
	"fmt"
	"os"

	"flighttracker-backend/cmd/flighttracker/globals"
	"flighttracker-backend/internal/app"
	"flighttracker-backend/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "flighttracker",
	Short:         "flighttracker tracks flight prices for a set of routes and emails you when they drop.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		config, err := app.LoadConfig(configPath, envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		tel := telemetry.SlogAPI{}
		a, err := app.Open(config, nil, tel)
		if err != nil {
			return err
		}
		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{App: a, Tel: tel}))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return globals.Get(cmd.Context()).App.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "path to the json5 config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to a .env file with mail credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
