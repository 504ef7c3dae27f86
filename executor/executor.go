package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dexscout/catalog"
	"dexscout/metrics"
	"dexscout/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
	maxRetryAfter  = time.Hour
)

// Executor performs single HTTP attempts against catalog candidates.
type Executor struct {
	apiKey    string
	userAgent string
	client    *http.Client
	logger    *zap.SugaredLogger
}

type Option func(*Executor)

func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(apiKey string, opts ...Option) *Executor {
	e := &Executor{
		apiKey:    apiKey,
		userAgent: "Mozilla/5.0",
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildURL expands the candidate's path template and query for params.
func BuildURL(c catalog.Candidate, p models.Params) (string, error) {
	path := strings.ReplaceAll(c.Path, "{chain}", url.PathEscape(c.ChainForm))
	if strings.Contains(path, "{address}") {
		if p.Address == "" {
			return "", fmt.Errorf("operation %s requires an address", c.Operation)
		}
		path = strings.ReplaceAll(path, "{address}", url.PathEscape(p.Address))
	}

	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid candidate url: %w", err)
	}

	q := u.Query()
	if p.Limit > 0 {
		q.Set(c.LimitParam, strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if !p.From.IsZero() {
		q.Set("from", strconv.FormatInt(p.From.Unix(), 10))
	}
	if !p.To.IsZero() {
		q.Set("to", strconv.FormatInt(p.To.Unix(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Execute performs one GET for the candidate. It never returns an error:
// transport and HTTP failures come back as the Outcome's Kind.
func (e *Executor) Execute(ctx context.Context, c catalog.Candidate, p models.Params) Outcome {
	out := Outcome{ID: uuid.New().String(), Started: time.Now()}

	target, err := BuildURL(c, p)
	if err != nil {
		out.Kind = KindClientError
		out.Err = err
		e.log(c, out)
		return out
	}
	out.URL = target

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		out.Kind = KindClientError
		out.Err = fmt.Errorf("failed to create request: %w", err)
		e.log(c, out)
		return out
	}
	req.Header.Set(c.AuthHeader, e.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		out.Latency = time.Since(out.Started)
		out.Kind = classifyTransportError(ctx, err)
		out.Err = err
		e.log(c, out)
		return out
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	out.Latency = time.Since(out.Started)
	out.StatusCode = resp.StatusCode
	out.Header = resp.Header
	if err != nil {
		out.Kind = classifyTransportError(ctx, err)
		out.Err = fmt.Errorf("failed to read response body: %w", err)
		e.log(c, out)
		return out
	}
	out.Body = body
	out.Kind = classifyStatus(resp.StatusCode)
	out.Success = out.Kind == KindNone
	if out.Kind == KindRateLimited || resp.StatusCode == http.StatusServiceUnavailable {
		out.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	e.log(c, out)
	return out
}

func (e *Executor) log(c catalog.Candidate, out Outcome) {
	metrics.RecordAttempt(string(c.Operation), c.PlanTier, out.Kind.String(), out.Latency)

	fields := []interface{}{
		"attempt_id", out.ID,
		"method", http.MethodGet,
		"url", out.URL,
		"candidate", c.ID(),
		"status", out.StatusCode,
		"outcome", out.Kind.String(),
		"latency_ms", out.Latency.Milliseconds(),
	}
	if out.RetryAfter > 0 {
		fields = append(fields, "retry_after", out.RetryAfter.String())
	}
	if out.Err != nil {
		fields = append(fields, "error", out.Err)
	}
	if out.Kind == KindNone {
		e.logger.Infow("API request", fields...)
		return
	}
	e.logger.Warnw("API request", fields...)
}

func classifyStatus(code int) Kind {
	switch {
	case code >= 200 && code < 300:
		return KindNone
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusRequestTimeout:
		return KindTimeout
	case code >= 500:
		return KindServerError
	default:
		return KindClientError
	}
}

func classifyTransportError(ctx context.Context, err error) Kind {
	if errors.Is(ctx.Err(), context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// ParseRetryAfter reads a Retry-After value in delay-seconds or HTTP-date
// form. Unparseable or non-positive values yield 0; values are capped at 1h.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
			return 0
		}
		if secs >= maxRetryAfter.Seconds() {
			return maxRetryAfter
		}
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(value); err == nil {
		d := t.Sub(now)
		if d <= 0 {
			return 0
		}
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}
	return 0
}
