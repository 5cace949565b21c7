package app

import (
	"database/sql"
	"fmt"

	"flighttracker-backend/internal/alert"
	"flighttracker-backend/internal/components/chrono"
	"flighttracker-backend/internal/components/sqliteutil"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/db"
	"flighttracker-backend/internal/pricesource"
	"flighttracker-backend/internal/server"
	"flighttracker-backend/internal/store"
	"flighttracker-backend/internal/tracker"
)

// App is everything a front-end needs, built once from a Config.
type App struct {
	Config     Config
	DB         *sql.DB
	Time       chrono.TimeAPI
	Store      store.Store
	Source     pricesource.Source
	Dispatcher alert.Dispatcher
	Tracker    tracker.Tracker
}

func NewSource(config SourceConfig, tel telemetry.API) (pricesource.Source, error) {
	switch config.Kind {
	case SourceHttp:
		source, err := pricesource.NewHTTPSource(pricesource.HTTPOptions{
			BaseUrl:   config.BaseUrl,
			Timeout:   config.Timeout(),
			Selectors: config.Selectors,
			UserAgent: config.UserAgent,
		}, tel)
		if err != nil {
			return nil, err
		}
		return source, nil
	case SourceChrome, "":
		return pricesource.NewChromeSource(pricesource.ChromeOptions{
			BaseUrl:   config.BaseUrl,
			Timeout:   config.Timeout(),
			Selectors: config.Selectors,
			UserAgent: config.UserAgent,
			DebugDir:  config.DebugDir,
			ExecPath:  config.ChromePath,
		}, tel), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", config.Kind)
}

// Open opens the database and wires the pipeline together. A nil source
// means the one described by config.Source.
func Open(config Config, source pricesource.Source, tel telemetry.API) (App, error) {
	time, err := chrono.NewStandardTime(config.Timezone)
	if err != nil {
		return App{}, fmt.Errorf("timezone: %w", err)
	}

	database, err := sqliteutil.OpenDB(config.Database, db.Schema)
	if err != nil {
		return App{}, fmt.Errorf("open database: %w", err)
	}

	if source == nil {
		source, err = NewSource(config.Source, tel)
		if err != nil {
			database.Close()
			return App{}, err
		}
	}

	dispatcher, err := alert.NewDispatcher(alert.Options{
		Smtp:     config.Smtp.SmtpConfig,
		Currency: config.Smtp.Currency,
	}, tel)
	if err != nil {
		database.Close()
		return App{}, err
	}

	s := store.NewStore(database, time, tel)
	return App{
		Config:     config,
		DB:         database,
		Time:       time,
		Store:      s,
		Source:     source,
		Dispatcher: dispatcher,
		Tracker:    tracker.NewTracker(s, source, dispatcher, time, tel),
	}, nil
}

func (a App) Server(tel telemetry.API) server.Server {
	return server.NewServer(a.Store, a.Tracker, tel)
}

func (a App) Close() error {
	return a.DB.Close()
}
