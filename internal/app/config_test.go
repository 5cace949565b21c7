package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/pricesource"

	"github.com/stretchr/testify/require"
)

func clearMailEnv(t *testing.T) {
	for _, key := range []string{"EMAIL_ADDRESS", "EMAIL_PASSWORD", "SMTP_SERVER", "SMTP_PORT"} {
		// registers the restore, then actually removes it so .env files
		// are allowed to fill it in
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearMailEnv(t)
	dir := t.TempDir()

	config, err := LoadConfig(filepath.Join(dir, "config.json5"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
	require.Equal(t, "@every 6h", config.Schedule.Cron)
	require.Equal(t, 2*time.Second, config.Schedule.Pause())
	require.Equal(t, "smtp.gmail.com", config.Smtp.Server)
	require.Equal(t, 587, config.Smtp.Port)
}

func TestLoadConfigLayers(t *testing.T) {
	clearMailEnv(t)
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		database: { file: "data/flights.db" },
		smtp: { email_address: "file@example.com", currency: "USD" },
		source: { kind: "http", base_url: "http://127.0.0.1:9000" },
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		http: { port: 9999 },
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, ".env"), []byte("EMAIL_PASSWORD=app-password\nSMTP_PORT=2525\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(filepath.Join(dir, "config.json5"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, "data/flights.db", config.Database.File)
	require.Equal(t, "file@example.com", config.Smtp.EmailAddress)
	require.Equal(t, "app-password", config.Smtp.Password)
	require.Equal(t, 2525, config.Smtp.Port)
	require.Equal(t, "smtp.gmail.com", config.Smtp.Server)
	require.Equal(t, "USD", config.Smtp.Currency)
	require.Equal(t, SourceHttp, config.Source.Kind)
	require.Equal(t, 20*time.Second, config.Source.Timeout())
	require.Equal(t, 9999, config.Http.Port)
}

func TestLoadConfigPause(t *testing.T) {
	clearMailEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	err := os.WriteFile(path, []byte(`{ schedule: { pause_seconds: 0 } }`), 0644)
	require.NoError(t, err)
	config, err := LoadConfig(path, filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), config.Schedule.Pause())
	require.Equal(t, "@every 6h", config.Schedule.Cron)

	err = os.WriteFile(path, []byte(`{ schedule: { pause_seconds: 5 } }`), 0644)
	require.NoError(t, err)
	config, err = LoadConfig(path, filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, config.Schedule.Pause())

	err = os.WriteFile(path, []byte(`{ schedule: { pause_seconds: -1 } }`), 0644)
	require.NoError(t, err)
	_, err = LoadConfig(path, filepath.Join(dir, ".env"))
	require.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	clearMailEnv(t)
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{ source: { kind: "carrier-pigeon" } }`), 0644)
	require.NoError(t, err)
	_, err = LoadConfig(filepath.Join(dir, "config.json5"), filepath.Join(dir, ".env"))
	require.Error(t, err)

	t.Setenv("SMTP_PORT", "not-a-port")
	_, err = LoadConfig(filepath.Join(dir, "missing.json5"), filepath.Join(dir, ".env"))
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	config := DefaultConfig()
	config.Database.File = filepath.Join(t.TempDir(), "flights.db")

	a, err := Open(config, pricesource.NewFixedSource(), telemetry.NewRecorder())
	require.NoError(t, err)
	defer a.Close()

	routes, err := a.Store.ListRoutes(context.Background())
	require.NoError(t, err)
	require.Empty(t, routes)

	_, isChrome := mustSource(t, config.Source).(pricesource.ChromeSource)
	require.True(t, isChrome)

	config.Source.Kind = SourceHttp
	_, isHttp := mustSource(t, config.Source).(pricesource.HTTPSource)
	require.True(t, isHttp)
}

func mustSource(t *testing.T, config SourceConfig) pricesource.Source {
	source, err := NewSource(config, telemetry.NewRecorder())
	require.NoError(t, err)
	return source
}
