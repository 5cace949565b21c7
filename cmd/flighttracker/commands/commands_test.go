package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRouteCommands(t *testing.T) {
	for _, key := range []string{"EMAIL_ADDRESS", "EMAIL_PASSWORD", "SMTP_SERVER", "SMTP_PORT"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	config := filepath.Join(dir, "config.json5")
	err := os.WriteFile(config, []byte(fmt.Sprintf(`{ database: { file: %q } }`, filepath.Join(dir, "flights.db"))), 0644)
	require.NoError(t, err)
	common := []string{"--config", config, "--env", filepath.Join(dir, ".env")}

	out, err := run(t, append([]string{"list"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "No routes are being tracked.")

	out, err = run(t, append([]string{"add", "del", "bom", "2025-02-15", "a@b.com", "--target", "5000"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Tracking route 1: DEL → BOM on 2025-02-15")

	_, err = run(t, append([]string{"add", "DELHI", "BOM", "2025-02-15", "a@b.com"}, common...)...)
	require.ErrorContains(t, err, "origin")

	out, err = run(t, append([]string{"list"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "DEL")
	require.Contains(t, out, "5000")

	out, err = run(t, append([]string{"history", "1"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "no prices recorded yet")

	_, err = run(t, append([]string{"history", "x"}, common...)...)
	require.Error(t, err)

	out, err = run(t, append([]string{"del", "1"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted route 1.")

	_, err = run(t, append([]string{"history", "1"}, common...)...)
	require.ErrorContains(t, err, "not found")
}
