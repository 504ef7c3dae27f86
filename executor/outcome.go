package executor

import (
	"net/http"
	"time"
)

// Kind classifies the result of one attempt.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindTimeout
	KindRateLimited
	KindClientError
	KindServerError
	KindParse
	KindShape
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNetwork:
		return "network_error"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	case KindParse:
		return "parse_error"
	case KindShape:
		return "shape_error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Transient kinds are retried on the same candidate.
func (k Kind) Transient() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimited, KindServerError, KindParse:
		return true
	}
	return false
}

// Outcome is the typed result of one HTTP call. HTTP-level failures are
// reported here, never as Go errors.
type Outcome struct {
	ID         string
	URL        string
	Success    bool
	StatusCode int
	Body       []byte
	Header     http.Header
	Kind       Kind
	RetryAfter time.Duration
	Started    time.Time
	Latency    time.Duration
	Err        error
}

// Reclassify marks a 2xx outcome as failed after the body was inspected.
func (o Outcome) Reclassify(kind Kind, err error) Outcome {
	o.Success = false
	o.Kind = kind
	o.Err = err
	return o
}
