package pricesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flighttracker-backend/internal/components/telemetry"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// needs a local chrome, run with FLIGHTTRACKER_CHROME_TESTS=1
func requireChrome(t *testing.T) {
	if os.Getenv("FLIGHTTRACKER_CHROME_TESTS") == "" {
		t.Skip("FLIGHTTRACKER_CHROME_TESTS not set")
	}
}

// prices are only injected after load, the way the real search page does
const renderedPage = `<html><body>
<div id="results"></div>
<script>
setTimeout(function () {
	document.getElementById("results").innerHTML =
		'<div class="YMlIz FpEdX">₹6,100</div><div class="YMlIz FpEdX">₹5,900</div>';
}, 300);
</script>
</body></html>`

func TestChromeSourceRendersScripts(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(renderedPage))
	}))
	defer server.Close()

	source := NewChromeSource(ChromeOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 15,
	}, telemetry.NewRecorder())

	quote, err := source.FetchPrice(context.Background(), delBom)
	require.NoError(t, err)
	require.True(t, quote.Found)
	require.True(t, quote.Amount.Equal(decimal.NewFromInt(5900)))
}

func TestChromeSourceNoPriceSavesScreenshot(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer server.Close()

	dir := t.TempDir()
	source := NewChromeSource(ChromeOptions{
		BaseUrl:  server.URL,
		Timeout:  time.Second * 2,
		DebugDir: dir,
	}, telemetry.NewRecorder())

	quote, err := source.FetchPrice(context.Background(), delBom)
	require.NoError(t, err)
	require.False(t, quote.Found)

	_, err = os.Stat(filepath.Join(dir, "debug_DEL_BOM_2025-02-15.png"))
	require.NoError(t, err)
}

func TestChromeSourceCancelled(t *testing.T) {
	requireChrome(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewChromeSource(ChromeOptions{BaseUrl: "http://127.0.0.1:1"}, telemetry.NewRecorder())
	_, err := source.FetchPrice(ctx, delBom)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
}
