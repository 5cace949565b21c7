package main

import (
	"context"
	"flag"
	"log/slog"

	"flighttracker-backend/internal/app"
	"flighttracker-backend/internal/components/chrono"
	"flighttracker-backend/internal/components/serviceutil"
	"flighttracker-backend/internal/components/telemetry"

	"github.com/gin-gonic/gin"
)

const serviceName = "flighttrackerd"

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialCheck := flag.Bool("check", false, "Check every route immediately on start.")
	configPath := flag.String("config", "config.json5", "Path to the json5 config file.")
	envFile := flag.String("env", ".env", "Path to a .env file with mail credentials.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(*verbose)
	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	providers, err := telemetry.SetupFromEnv(ctx, serviceName)
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer providers.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	tel := telemetry.SlogAPI{}

	config, err := app.LoadConfig(*configPath, *envFile)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	a, err := app.Open(config, nil, tel)
	if err != nil {
		serviceutil.Fatal("open app", err)
	}
	defer a.Close()

	if !config.Smtp.Configured() {
		slog.Warn("email_address or password is not set, alerts will be skipped")
	}

	checkAll := func() {
		results, err := a.Tracker.CheckAll(ctx, config.Schedule.Pause())
		if err != nil && ctx.Err() == nil {
			tel.ReportBroken("flighttrackerd.check-all", err)
			return
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		slog.Info("checked routes", "total", len(results), "failed", failed)
	}

	cron := chrono.NewStandardCron(a.Time, tel)
	err = cron.Cron(config.Schedule.Cron, checkAll)
	if err != nil {
		serviceutil.Fatal("schedule checks", err)
	}
	slog.Info("scheduled price checks", "spec", config.Schedule.Cron, "pause", config.Schedule.Pause())
	if *initialCheck {
		go checkAll()
	}

	err = serviceutil.StartHttpServer(ctx, config.Http.Port, a.Server(tel).Handler())
	if err != nil {
		serviceutil.Fatal("http server", err)
	}

	// wait for a check that is still running
	<-cron.Stop().Done()
	slog.Info("stopped")
}
