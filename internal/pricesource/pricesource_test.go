package pricesource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var delBom = Query{
	Origin:      "DEL",
	Destination: "BOM",
	Date:        time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
}

func TestSearchURL(t *testing.T) {
	require.Equal(
		t,
		"https://www.google.com/travel/flights?q=flights+from+DEL+to+BOM+on+2025-02-15",
		SearchURL("", delBom),
	)
	require.Equal(
		t,
		"http://127.0.0.1:8080/search?hl=en&q=flights+from+DEL+to+BOM+on+2025-02-15",
		SearchURL("http://127.0.0.1:8080/search?hl=en", delBom),
	)
}

func TestFetchErrorUnwraps(t *testing.T) {
	var err error = &FetchError{URL: "http://x", Err: context.DeadlineExceeded}
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "http://x", ferr.URL)
}

func TestFixedSource(t *testing.T) {
	source := NewFixedSource(
		FixedResult{Quote: Quote{Found: true, Amount: decimal.NewFromInt(5500)}},
		FixedResult{Err: &FetchError{URL: "x", Err: errors.New("boom")}},
		FixedResult{Quote: Quote{Found: false}},
	)
	ctx := context.Background()

	quote, err := source.FetchPrice(ctx, delBom)
	require.NoError(t, err)
	require.True(t, quote.Found)
	require.Equal(t, SearchURL("", delBom), quote.URL)

	_, err = source.FetchPrice(ctx, delBom)
	require.Error(t, err)

	for i := 0; i < 2; i++ {
		quote, err = source.FetchPrice(ctx, delBom)
		require.NoError(t, err)
		require.False(t, quote.Found)
	}
	require.Len(t, source.Calls(), 4)
}
