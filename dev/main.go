package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	devenv "flighttracker-backend/dev/env"
	"flighttracker-backend/internal/components/sqliteutil"
	"flighttracker-backend/internal/db"
)

const devConfig = `{
  database: { file: "%s" },
  timezone: "Asia/Kolkata",
  source: { kind: "chrome", timeout_seconds: 20, debug_dir: "%s" },
  schedule: { cron: "@every 1h", pause_seconds: 2 },
  http: { port: 8080 },
}
`

const devDotenv = `EMAIL_ADDRESS=
EMAIL_PASSWORD=
SMTP_SERVER=localhost
SMTP_PORT=1025
`

func writeIfMissing(path, contents string) error {
	_, err := os.Stat(path)
	if err == nil {
		slog.Info("keeping existing file", "path", path)
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0666)
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state/debug", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	database, err := sqliteutil.OpenDB(sqliteutil.Config{File: "<dev_state>/flights.db"}, db.Schema)
	if err != nil {
		return err
	}
	err = database.Close()
	if err != nil {
		return err
	}

	debugDir, err := devenv.ResolvePath("<dev_state>/debug")
	if err != nil {
		return err
	}
	configPath, err := devenv.ResolvePath("<dev_state>/config.json5")
	if err != nil {
		return err
	}
	err = writeIfMissing(configPath, fmt.Sprintf(devConfig, "<dev_state>/flights.db", debugDir))
	if err != nil {
		return err
	}
	envPath, err := devenv.ResolvePath("<dev_state>/.env")
	if err != nil {
		return err
	}
	err = writeIfMissing(envPath, devDotenv)
	if err != nil {
		return err
	}

	fmt.Println("dev config:", configPath)
	fmt.Println("dev dotenv:", envPath)
	fmt.Printf("run: go run ./cmd/flighttracker -c %s --env %s list\n", configPath, envPath)
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
