package client

import (
	"fmt"

	"dexscout/catalog"
	"dexscout/config"
	"dexscout/executor"
	"dexscout/ratelimit"
	"dexscout/retry"

	"go.uber.org/zap"
)

const DefaultDiagnosticAttempts = 3

// Client runs logical calls against the API. It is safe for concurrent use;
// the catalog ordering and the rate limiter are the only shared state.
type Client struct {
	catalog  *catalog.Catalog
	exec     *executor.Executor
	limiter  *ratelimit.Limiter
	policy   retry.Policy
	keep     int
	revisits int
	logger   *zap.SugaredLogger
}

type Option func(*Client)

func WithPolicy(p retry.Policy) Option {
	return func(c *Client) {
		if p.MaxAttempts > 0 {
			c.policy = p
		}
	}
}

// WithDiagnosticAttempts sets how many attempts an AllEndpointsFailedError
// carries.
func WithDiagnosticAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.keep = n
		}
	}
}

// WithRevisits allows a logical call to walk the candidates again up to
// rounds extra times.
func WithRevisits(rounds int) Option {
	return func(c *Client) {
		c.revisits = rounds
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(cat *catalog.Catalog, exec *executor.Executor, limiter *ratelimit.Limiter, opts ...Option) *Client {
	c := &Client{
		catalog: cat,
		exec:    exec,
		limiter: limiter,
		policy:  retry.DefaultPolicy(),
		keep:    DefaultDiagnosticAttempts,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig wires the catalog, executor and the shared limiter for the
// configured API key.
func NewFromConfig(cfg *config.Config, limiters *ratelimit.Registry, logger *zap.SugaredLogger) (*Client, error) {
	file, err := catalog.Load(cfg.API.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	cat := catalog.New(file, logger)

	exec := executor.New(cfg.API.Key,
		executor.WithTimeout(cfg.API.RequestTimeout),
		executor.WithUserAgent(cfg.API.UserAgent),
		executor.WithLogger(logger),
	)

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttemptsPerCandidate,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Jitter:      cfg.Retry.Jitter,
	}

	return New(cat, exec, limiters.For(cfg.API.Key),
		WithPolicy(policy),
		WithDiagnosticAttempts(cfg.Retry.DiagnosticAttempts),
		WithRevisits(cfg.Retry.Revisits),
		WithLogger(logger),
	), nil
}

// Catalog exposes the catalog for health reporting.
func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}
