package normalize

import (
	"testing"
	"time"

	"dexscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poolItem = `{
	"address": "Pair111",
	"creationTime": "2024-03-01T12:00:00.000Z",
	"exchange": {"name": "Raydium", "factory": "x"},
	"mainToken": {"address": "Tok111", "symbol": "BONK", "name": "Bonk"},
	"sideToken": {"address": "So111", "symbol": "SOL", "name": "Wrapped SOL"},
	"price": 0.0000213,
	"variation24h": 12.5,
	"liquidity": "150000.75",
	"volume24h": 98000
}`

func TestNormalize_NestedAndFlatShapesAgree(t *testing.T) {
	shapes := map[string]string{
		"data.results": `{"statusCode":200,"data":{"results":[` + poolItem + `]}}`,
		"data":         `{"data":[` + poolItem + `]}`,
		"pairs":        `{"pairs":[` + poolItem + `]}`,
		"bare":         `[` + poolItem + `]`,
	}

	var first []models.Record
	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			recs, err := Normalize([]byte(body), models.OpGainers, "")
			require.NoError(t, err)
			require.Len(t, recs, 1)
			if first == nil {
				first = recs
				return
			}
			assert.Equal(t, first, recs)
		})
	}

	require.Len(t, first, 1)
	r := first[0]
	assert.Equal(t, "Tok111", r.Address)
	assert.Equal(t, "Pair111", r.PairAddress)
	assert.Equal(t, "BONK", r.Symbol)
	assert.Equal(t, "Bonk", r.Name)
	assert.InDelta(t, 0.0000213, r.Price, 1e-12)
	assert.Equal(t, 12.5, r.PriceChange24h)
	assert.Equal(t, 150000.75, r.Liquidity)
	assert.Equal(t, 98000.0, r.Volume24h)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), r.CreatedAt)
	assert.Equal(t, "Raydium", r.ExchangeName)
	assert.False(t, r.Incomplete)
}

func TestNormalize_DetailNestedAndFlatShapesAgree(t *testing.T) {
	shapes := map[string]string{
		"data":         `{"data":` + poolItem + `}`,
		"data.results": `{"statusCode":200,"data":{"results":` + poolItem + `}}`,
		"bare":         poolItem,
	}

	var first []models.Record
	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			recs, err := Normalize([]byte(body), models.OpPairDetail, "Pair111")
			require.NoError(t, err)
			require.Len(t, recs, 1)
			if first == nil {
				first = recs
				return
			}
			assert.Equal(t, first, recs)
		})
	}

	require.Len(t, first, 1)
	assert.Equal(t, "Tok111", first[0].Address)
	assert.Equal(t, "Pair111", first[0].PairAddress)
	assert.False(t, first[0].Incomplete)
}

func TestNormalize_MissingFieldsAreDefaultedAndFlagged(t *testing.T) {
	body := `{"data":[{"address":"Tok222","symbol":"ABC"}]}`

	recs, err := Normalize([]byte(body), models.OpRecentPools, "")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "Tok222", r.Address)
	assert.Equal(t, "ABC", r.Symbol)
	assert.Zero(t, r.Price)
	assert.Zero(t, r.Liquidity)
	assert.Equal(t, models.Epoch, r.CreatedAt)
	assert.True(t, r.Incomplete)
}

func TestNormalize_ItemsWithoutAddressAreDropped(t *testing.T) {
	body := `{"data":[{"symbol":"NOADDR"},{"address":"Tok333","symbol":"OK"}]}`

	recs, err := Normalize([]byte(body), models.OpHotPools, "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Tok333", recs[0].Address)
}

func TestNormalize_EmptyListIsSuccess(t *testing.T) {
	recs, err := Normalize([]byte(`{"data":{"results":[]}}`), models.OpLosers, "")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestNormalize_DetailUsesSubjectWhenAddressMissing(t *testing.T) {
	body := `{"data":{"price":1.25,"variation24h":-3.5}}`

	recs, err := Normalize([]byte(body), models.OpPriceHistory, "Pair999")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "Pair999", r.Address)
	assert.Equal(t, "Pair999", r.PairAddress)
	assert.Equal(t, 1.25, r.Price)
	assert.Equal(t, -3.5, r.PriceChange24h)
	assert.True(t, r.Incomplete)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		op   models.Operation
		want error
	}{
		{"rate limit message", `{"message":"Too Many Requests"}`, models.OpGainers, ErrRateLimitedBody},
		{"status code 429", `{"statusCode":429}`, models.OpGainers, ErrRateLimitedBody},
		{"error envelope", `{"statusCode":401,"message":"Unauthorized"}`, models.OpGainers, ErrShape},
		{"error field", `{"error":"plan not allowed"}`, models.OpGainers, ErrShape},
		{"no usable items", `{"data":[{"foo":1}]}`, models.OpGainers, ErrShape},
		{"scalar payload", `{"data":42}`, models.OpGainers, ErrShape},
		{"single object without address", `{"data":{"price":1}}`, models.OpGainers, ErrShape},
		{"detail empty object", `{}`, models.OpPairDetail, ErrShape},
		{"detail message only", `{"message":"Forbidden: plan does not include this endpoint"}`, models.OpPairDetail, ErrShape},
		{"detail unknown fields", `{"data":{"foo":"bar","exchange":"raydium"}}`, models.OpTokenDetail, ErrShape},
		{"detail list of empties", `{"data":[{},{}]}`, models.OpPriceHistory, ErrShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body), tt.op, "Subject1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalize_NonJSONIsParseError(t *testing.T) {
	for _, body := range []string{"<html>Just a moment...</html>", "", `{"data":[`} {
		_, err := Normalize([]byte(body), models.OpGainers, "")
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, body)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   interface{}
		want time.Time
	}{
		{"2024-03-01T12:00:00Z", want},
		{"2024-03-01T14:00:00+02:00", want},
		{"2024-03-01T12:00:00+0000", want},
		{"2024-03-01T07:00:00.000-0500", want},
		{"2024-03-01T12:00:00", want},
		{"2024-03-01 12:00:00", want},
		{"1709294400", want},
		{"1709294400000", want},
	}
	for _, tt := range tests {
		got, ok := parseTime(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%v -> %v", tt.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, ok := parseTime("yesterday")
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	f, ok := number("1,234.50")
	require.True(t, ok)
	assert.Equal(t, 1234.5, f)

	f, ok = number("$3")
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = number("n/a")
	assert.False(t, ok)

	_, ok = number(true)
	assert.False(t, ok)
}

func TestNormalize_AlternateFieldNames(t *testing.T) {
	body := `{"pairs":[{
		"pairAddress":"PairDS",
		"baseToken":{"address":"TokDS","symbol":"WIF","name":"dogwifhat"},
		"priceUsd":"2.31",
		"priceChange":{"h24":4.2},
		"liquidity":{"usd":500000},
		"volume":{"h24":120000},
		"pairCreatedAt":1709294400000,
		"dexId":"orca"
	}]}`

	recs, err := Normalize([]byte(body), models.OpHotPools, "")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "TokDS", r.Address)
	assert.Equal(t, "PairDS", r.PairAddress)
	assert.Equal(t, 2.31, r.Price)
	assert.Equal(t, 4.2, r.PriceChange24h)
	assert.Equal(t, 500000.0, r.Liquidity)
	assert.Equal(t, 120000.0, r.Volume24h)
	assert.Equal(t, "orca", r.ExchangeName)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), r.CreatedAt)
	assert.False(t, r.Incomplete)
}
