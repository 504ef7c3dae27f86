package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"dexscout/models"

	"github.com/shopspring/decimal"
)

// Field aliases seen across API versions, tried in order. Dotted names
// descend into nested objects.
var (
	tokenKeys     = []string{"mainToken", "baseToken", "token"}
	addressKeys   = []string{"address", "id", "mint", "tokenAddress"}
	pairKeys      = []string{"pairAddress", "poolAddress"}
	priceKeys     = []string{"price", "priceUsd", "price_usd"}
	changeKeys    = []string{"priceChange24h", "variation24h", "price_change_24h", "priceChange.h24", "variation.h24"}
	liquidityKeys = []string{"liquidity", "liquidity.usd", "metrics.liquidity", "liquidityUsd"}
	volumeKeys    = []string{"volume24h", "volume.h24", "volume", "metrics.volume24h"}
	createdKeys   = []string{"creationTime", "createdAt", "created_at", "pairCreatedAt", "creationBlock.time"}
	exchangeKeys  = []string{"exchange.name", "dex.name", "exchangeName", "dexId", "exchange", "dex"}
)

// mapItem builds a record from one payload object. ok is false when no
// address can be determined, or when a detail payload carries none of the
// known record fields and would only echo the subject back.
func mapItem(m map[string]interface{}, op models.Operation, subject string) (models.Record, bool) {
	var rec models.Record
	missing := false

	token := firstObject(m, tokenKeys)
	if token != nil {
		// Pool shaped: the object is the pair, the nested token is the subject.
		rec.Address = firstString(token, addressKeys)
		rec.PairAddress = firstString(m, append([]string{"address", "id"}, pairKeys...))
		rec.Symbol = firstString(token, []string{"symbol"})
		rec.Name = firstString(token, []string{"name"})
	} else {
		rec.Address = firstString(m, addressKeys)
		rec.PairAddress = firstString(m, pairKeys)
		rec.Symbol = firstString(m, []string{"symbol"})
		rec.Name = firstString(m, []string{"name"})
	}

	known := token != nil || rec.Symbol != "" || rec.Name != "" || rec.PairAddress != ""

	var ok bool
	if rec.Price, ok = firstFloat(m, priceKeys); !ok {
		missing = true
	}
	known = known || ok
	if rec.PriceChange24h, ok = firstFloat(m, changeKeys); !ok {
		missing = true
	}
	if rec.Liquidity, ok = firstFloat(m, liquidityKeys); !ok {
		missing = true
	}
	known = known || ok
	if rec.Volume24h, ok = firstFloat(m, volumeKeys); !ok {
		missing = true
	}
	known = known || ok
	if rec.CreatedAt, ok = firstTime(m, createdKeys); !ok && token != nil {
		rec.CreatedAt, ok = firstTime(token, createdKeys)
	}
	known = known || ok
	if !ok {
		rec.CreatedAt = models.Epoch
		missing = true
	}
	rec.ExchangeName = firstString(m, exchangeKeys)

	if rec.Address == "" && op.IsDetail() && known {
		rec.Address = subject
	}
	if rec.Address == "" {
		return models.Record{}, false
	}
	if rec.PairAddress == "" && (op == models.OpPairDetail || op == models.OpPriceHistory) {
		rec.PairAddress = subject
	}

	if rec.Symbol == "" || rec.Name == "" || rec.ExchangeName == "" || rec.PairAddress == "" {
		missing = true
	}
	rec.Incomplete = missing
	return rec, true
}

func lookup(m map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	var cur interface{} = m
	for _, p := range parts {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = obj[p]; !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func firstObject(m map[string]interface{}, keys []string) map[string]interface{} {
	for _, k := range keys {
		if v, ok := lookup(m, k); ok {
			if obj, ok := v.(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return nil
}

func firstString(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		v, ok := lookup(m, k)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		case json.Number:
			return s.String()
		}
	}
	return ""
}

func firstFloat(m map[string]interface{}, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := lookup(m, k)
		if !ok {
			continue
		}
		if f, ok := number(v); ok {
			return f, true
		}
	}
	return 0, false
}

// number accepts JSON numbers and numeric strings such as "1,234.5" or "$3".
// Values go through decimal so that long numeric strings keep their digits
// until the final conversion.
func number(v interface{}) (float64, bool) {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case string:
		s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(n)
	case float64:
		return n, true
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func firstTime(m map[string]interface{}, keys []string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := lookup(m, k)
		if !ok {
			continue
		}
		if t, ok := parseTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTime reads ISO-8601 with or without an offset (no offset means UTC)
// and unix timestamps in seconds or milliseconds.
func parseTime(v interface{}) (time.Time, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return time.Time{}, false
	}
	if s == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(n), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromUnix(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}
