package testutil

import (
	"database/sql"
	"testing"
	"time"

	"flighttracker-backend/internal/components/chrono"
	"flighttracker-backend/internal/components/sqliteutil"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/db"
)

type Setup struct {
	DB    *sql.DB
	Clock *chrono.FixedTime
	Tel   *telemetry.Recorder
}

// Epoch is where every test clock starts.
var Epoch = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

// SetupDB opens a fresh in-memory database with the schema applied, it is
// closed when the test ends.
func SetupDB(t testing.TB) Setup {
	t.Helper()

	database, err := sqliteutil.OpenDB(sqliteutil.Config{File: ":memory:"}, db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})

	return Setup{
		DB:    database,
		Clock: chrono.NewFixedTime(Epoch),
		Tel:   telemetry.NewRecorder(),
	}
}
