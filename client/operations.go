package client

import (
	"context"
	"fmt"
	"time"

	"dexscout/models"
)

const (
	DefaultLimit        = 10
	DefaultRecentWindow = 24 * time.Hour
)

// PoolQuery narrows RecentPools.
type PoolQuery struct {
	Limit int
	// From and To bound pool creation time; zero From means To-24h, zero To
	// means now.
	From, To     time.Time
	MinLiquidity float64
}

// RecentPools lists pools created in the query window, newest first. Pools
// below MinLiquidity are dropped after normalization.
func (c *Client) RecentPools(ctx context.Context, chain string, q PoolQuery) ([]models.Record, error) {
	to := q.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	from := q.From
	if from.IsZero() {
		from = to.Add(-DefaultRecentWindow)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid window: from %s is not before to %s", from, to)
	}

	recs, err := c.call(ctx, models.OpRecentPools, chain, models.Params{
		Chain: chain,
		Limit: limitOrDefault(q.Limit),
		Sort:  "creationTime",
		Order: "desc",
		From:  from,
		To:    to,
	})
	if err != nil {
		return nil, err
	}
	return MinLiquidity(recs, q.MinLiquidity), nil
}

func (c *Client) HotPools(ctx context.Context, chain string, limit int) ([]models.Record, error) {
	return c.ranking(ctx, models.OpHotPools, chain, limit)
}

func (c *Client) Gainers(ctx context.Context, chain string, limit int) ([]models.Record, error) {
	return c.ranking(ctx, models.OpGainers, chain, limit)
}

func (c *Client) Losers(ctx context.Context, chain string, limit int) ([]models.Record, error) {
	return c.ranking(ctx, models.OpLosers, chain, limit)
}

func (c *Client) ranking(ctx context.Context, op models.Operation, chain string, limit int) ([]models.Record, error) {
	recs, err := c.call(ctx, op, chain, models.Params{Chain: chain, Limit: limitOrDefault(limit)})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (c *Client) PairDetail(ctx context.Context, chain, address string) (models.Record, error) {
	return c.detail(ctx, models.OpPairDetail, chain, models.Params{Chain: chain, Address: address})
}

func (c *Client) TokenDetail(ctx context.Context, chain, address string) (models.Record, error) {
	return c.detail(ctx, models.OpTokenDetail, chain, models.Params{Chain: chain, Address: address})
}

// PriceHistory returns the pool's price snapshot for the window. Aggregation
// over the window is left to the caller.
func (c *Client) PriceHistory(ctx context.Context, chain, address string, from, to time.Time) (models.Record, error) {
	return c.detail(ctx, models.OpPriceHistory, chain, models.Params{Chain: chain, Address: address, From: from, To: to})
}

func (c *Client) detail(ctx context.Context, op models.Operation, chain string, p models.Params) (models.Record, error) {
	if p.Address == "" {
		return models.Record{}, fmt.Errorf("%s requires an address", op)
	}
	recs, err := c.call(ctx, op, chain, p)
	if err != nil {
		return models.Record{}, err
	}
	if len(recs) == 0 {
		return models.Record{}, fmt.Errorf("%s returned no record for %s", op, p.Address)
	}
	return recs[0], nil
}

// Blockchains lists the chains the API reports. Each record's Address holds
// the chain id.
func (c *Client) Blockchains(ctx context.Context) ([]models.Record, error) {
	return c.call(ctx, models.OpBlockchains, "", models.Params{})
}

// MinLiquidity keeps records with at least min liquidity. A zero min keeps
// everything.
func MinLiquidity(recs []models.Record, min float64) []models.Record {
	if min <= 0 {
		return recs
	}
	out := recs[:0:0]
	for _, r := range recs {
		if r.Liquidity >= min {
			out = append(out, r)
		}
	}
	return out
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}
