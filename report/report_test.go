package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dexscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		Title:        "Solana Gainers",
		Operation:    models.OpGainers,
		Chain:        "solana",
		MinLiquidity: 5000,
		Window:       24 * time.Hour,
		Records: []models.Record{
			{
				Address:        "Tok111",
				Symbol:         "BONK",
				Name:           "Bonk",
				Price:          0.0000213,
				PriceChange24h: 150,
				Liquidity:      1234567.891,
				Volume24h:      98000,
				CreatedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				ExchangeName:   "Raydium",
				PairAddress:    "Pair111",
			},
			{Address: "Tok222", Symbol: "ABC", CreatedAt: models.Epoch, Incomplete: true},
		},
	}
}

type stubGenerator struct {
	text string
	err  error
	got  Prompt
}

func (s *stubGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	s.got = p
	return s.text, s.err
}

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt(sampleInput())
	require.NoError(t, err)

	assert.Contains(t, p.System, "solana tokens")
	assert.Contains(t, p.System, "top gaining tokens")
	assert.Contains(t, p.User, "top 2 top gaining tokens on solana from the past 24 hours")
	assert.Contains(t, p.User, "minimum liquidity of $5,000.00")
	assert.Contains(t, p.User, "| 1 | BONK (Bonk) | Tok111 | $0.0000213 | +150.00% | 1,234,567.89 | 98,000.00 | 2024-03-01 | Raydium |")
	assert.Contains(t, p.User, "| 2 | ABC () | Tok222 |")
	assert.Contains(t, p.User, "unknown")
	assert.Equal(t, 2000, p.MaxTokens)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$0.0000213", formatPrice(0.0000213))
	assert.Equal(t, "$1.5000", formatPrice(1.5))
	assert.Equal(t, "1,234,567.89", formatMoney(1234567.891))
	assert.Equal(t, "-1,234.50", formatMoney(-1234.5))
	assert.Equal(t, "100.00", formatMoney(100))
	assert.Equal(t, "unknown", formatDate(models.Epoch))
	assert.Equal(t, "solana_gainers_24h", slug("Solana Gainers (24h)"))
	assert.Equal(t, "report", slug("!!!"))
}

func TestSummary(t *testing.T) {
	s := Summary(sampleInput())

	assert.Contains(t, s, "This report covers 2 top gaining tokens on solana.")
	assert.Contains(t, s, "1 of them came back with missing fields.")
	assert.Contains(t, s, "### Bonk (BONK @ Raydium)")
	assert.Contains(t, s, "price more than doubled in 24h")
	assert.Contains(t, s, "### Unknown (ABC)")
	assert.Contains(t, s, "incomplete data")
}

func TestOpenAI_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"analysis text"}}]}`))
	}))
	defer server.Close()

	gen := NewOpenAI("sk-test", server.URL, "gpt-test", time.Second)
	text, err := gen.Generate(context.Background(), Prompt{System: "sys", User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "analysis text", text)
}

func TestOpenAI_NotConfigured(t *testing.T) {
	_, err := NewOpenAI("", "", "", 0).Generate(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAI_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gen := NewOpenAI("sk-test", server.URL, "", time.Second)
	for i := 0; i < 2; i++ {
		_, err := gen.Generate(context.Background(), Prompt{User: "x"})
		assert.Error(t, err)
	}
	_, err := gen.Generate(context.Background(), Prompt{User: "x"})
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWriter_UsesGenerator(t *testing.T) {
	dir := t.TempDir()
	gen := &stubGenerator{text: "## Market Overview\n\nAll good."}
	w := NewWriter(gen, dir, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	res, err := w.Write(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.True(t, res.Generated)
	assert.Equal(t, filepath.Join(dir, "solana_gainers_20240301_123000.md"), res.Path)
	assert.Contains(t, gen.got.User, "BONK")

	content, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Solana Gainers - 2024-03-01 12:30:00 UTC")
	assert.Contains(t, string(content), "## Analysis (language model)")
	assert.Contains(t, string(content), "All good.")
	assert.Contains(t, string(content), `"address": "Tok111"`)
}

func TestWriter_FallsBackWhenGeneratorFails(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(&stubGenerator{err: errors.New("service unavailable")}, dir, nil)

	res, err := w.Write(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.False(t, res.Generated)
	assert.EqualError(t, res.GenErr, "service unavailable")

	content, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "## Analysis (fallback summary)")
	assert.Contains(t, string(content), "### Bonk (BONK @ Raydium)")
	assert.Contains(t, string(content), `"address": "Tok222"`)
}

func TestWriter_NilGenerator(t *testing.T) {
	w := NewWriter(nil, t.TempDir(), nil)
	res, err := w.Write(context.Background(), Input{Title: "Empty", Operation: models.OpHotPools})
	require.NoError(t, err)
	assert.ErrorIs(t, res.GenErr, ErrNotConfigured)
	assert.FileExists(t, res.Path)
}
