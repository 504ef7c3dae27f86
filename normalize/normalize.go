package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dexscout/models"
)

var (
	// ErrShape means the body is valid JSON but not what the operation
	// returns: an error envelope or a payload without any address. It points
	// at a wrong endpoint rather than transient load.
	ErrShape = errors.New("unexpected response shape")

	// ErrRateLimitedBody is a 2xx body that says the caller was throttled.
	ErrRateLimitedBody = errors.New("rate limited by response body")
)

// ParseError reports a body that is not JSON, typically an HTML interstitial
// served by an edge proxy.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %v (body starts %q)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// wrapperKeys are descended into, in order, to reach the payload.
var wrapperKeys = []string{"data", "results", "pairs", "pools", "tokens", "items", "result"}

const maxUnwrapDepth = 4

// Normalize maps a response body for op to records. subject is the address
// the caller asked about; it stands in when a detail payload omits it.
func Normalize(body []byte, op models.Operation, subject string) ([]models.Record, error) {
	v, err := decode(body)
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(v); err != nil {
		return nil, err
	}

	switch payload := unwrap(v).(type) {
	case []interface{}:
		return normalizeList(payload, op, subject)
	case map[string]interface{}:
		rec, ok := mapItem(payload, op, subject)
		if !ok {
			return nil, fmt.Errorf("%w: no record fields in %s payload", ErrShape, op)
		}
		return []models.Record{rec}, nil
	default:
		return nil, fmt.Errorf("%w: payload is %T", ErrShape, payload)
	}
}

func normalizeList(items []interface{}, op models.Operation, subject string) ([]models.Record, error) {
	if op.IsDetail() {
		for _, it := range items {
			if m, ok := it.(map[string]interface{}); ok {
				if rec, ok := mapItem(m, op, subject); ok {
					return []models.Record{rec}, nil
				}
			}
		}
		return nil, fmt.Errorf("%w: no usable item in %s payload", ErrShape, op)
	}

	out := make([]models.Record, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		if rec, ok := mapItem(m, op, ""); ok {
			out = append(out, rec)
		}
	}
	if len(items) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %d items has an address", ErrShape, len(items))
	}
	return out, nil
}

func decode(body []byte) (interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: errors.New("empty body")}
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Snippet: snippet(trimmed), Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Snippet: snippet(trimmed), Err: errors.New("trailing data after JSON value")}
	}
	return v, nil
}

func snippet(b []byte) string {
	const n = 80
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

func checkEnvelope(v interface{}) error {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	if msg, ok := m["message"].(string); ok {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "too many requests") || strings.Contains(lower, "rate limit") {
			return fmt.Errorf("%w: %s", ErrRateLimitedBody, msg)
		}
	}
	if code, ok := number(m["statusCode"]); ok && code >= 400 {
		if code == 429 {
			return fmt.Errorf("%w: statusCode 429", ErrRateLimitedBody)
		}
		return fmt.Errorf("%w: error envelope with statusCode %v", ErrShape, code)
	}
	if _, hasData := m["data"]; !hasData {
		if e, ok := m["error"]; ok && e != nil && e != "" && e != false {
			return fmt.Errorf("%w: error envelope: %v", ErrShape, e)
		}
	}
	return nil
}

func unwrap(v interface{}) interface{} {
	for depth := 0; depth < maxUnwrapDepth; depth++ {
		m, ok := v.(map[string]interface{})
		if !ok || looksLikeItem(m) {
			return v
		}
		next, found := interface{}(nil), false
		for _, k := range wrapperKeys {
			switch inner := m[k].(type) {
			case map[string]interface{}, []interface{}:
				next, found = inner, true
			}
			if found {
				break
			}
		}
		if !found {
			return v
		}
		v = next
	}
	return v
}

func looksLikeItem(m map[string]interface{}) bool {
	for _, k := range []string{"address", "mainToken", "baseToken", "price", "symbol"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
