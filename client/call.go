package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dexscout/cascade"
	"dexscout/catalog"
	"dexscout/executor"
	"dexscout/metrics"
	"dexscout/models"
	"dexscout/normalize"
	"dexscout/retry"

	"github.com/google/uuid"
)

func (c *Client) call(ctx context.Context, op models.Operation, chain string, p models.Params) ([]models.Record, error) {
	recs, _, err := c.run(ctx, op, chain, p)
	return recs, err
}

// run is one logical call: walk candidates, retry transient failures on
// each, and stop at the first well-formed response. It also returns the
// candidate that served it.
func (c *Client) run(ctx context.Context, op models.Operation, chain string, p models.Params, opts ...cascade.Option) ([]models.Record, catalog.Candidate, error) {
	start := time.Now()
	callID := uuid.New().String()
	log := c.logger.With("call_id", callID, "operation", op, "chain", chain)

	if c.revisits > 0 {
		opts = append(opts, cascade.WithRevisits(c.revisits))
	}
	walker := cascade.New(c.catalog, op, chain, opts...)
	history := newAttemptLog(c.keep)

	for {
		cand, ok := walker.Next()
		if !ok {
			break
		}
		if walker.Tried() > 1 {
			metrics.RecordFallback(string(op))
		}

		recs, err := c.tryCandidate(ctx, cand, op, p, history)
		if err != nil {
			metrics.RecordCall(string(op), false, time.Since(start))
			return nil, catalog.Candidate{}, err
		}
		if recs != nil {
			c.catalog.RecordSuccess(chain, cand)
			metrics.RecordCall(string(op), true, time.Since(start))
			log.Infow("Logical call succeeded",
				"candidate", cand.ID(),
				"candidates_tried", walker.Tried(),
				"records", len(recs),
				"duration_ms", time.Since(start).Milliseconds())
			return recs, cand, nil
		}
		c.catalog.RecordFailure(cand)
	}

	metrics.RecordCall(string(op), false, time.Since(start))
	failure := &AllEndpointsFailedError{
		Operation: op,
		Chain:     chain,
		Tried:     walker.Tried(),
		Attempts:  history.list(),
	}
	log.Errorw("All endpoints failed",
		"candidates_tried", failure.Tried,
		"status_codes", failure.StatusCodes())
	return nil, catalog.Candidate{}, failure
}

// tryCandidate retries one candidate until it succeeds, needs a fallback, or
// ctx ends. A nil slice with a nil error means move on to the next candidate.
func (c *Client) tryCandidate(ctx context.Context, cand catalog.Candidate, op models.Operation, p models.Params, history *attemptLog) ([]models.Record, error) {
	sched := c.policy.NewSchedule()

	for attempt := 1; ; attempt++ {
		waitStart := time.Now()
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("%s canceled while rate limited: %w", op, err)
		}
		metrics.RecordLimiterWait(time.Since(waitStart))

		out := c.exec.Execute(ctx, cand, p)
		var recs []models.Record
		if out.Success {
			var err error
			recs, err = normalize.Normalize(out.Body, op, p.Address)
			if err != nil {
				out = out.Reclassify(classifyBodyError(err), err)
			}
		}
		history.add(models.Attempt{
			ID:         out.ID,
			Candidate:  cand.ID(),
			URL:        out.URL,
			Number:     attempt,
			Timestamp:  out.Started,
			HTTPStatus: out.StatusCode,
			Outcome:    out.Kind.String(),
			Latency:    out.Latency,
		})

		if out.Kind == executor.KindRateLimited && out.RetryAfter > 0 {
			c.limiter.BlockUntil(time.Now().Add(out.RetryAfter))
		}

		d := c.policy.Decide(attempt, out, sched)
		switch d.State {
		case retry.Success:
			if recs == nil {
				recs = []models.Record{}
			}
			return recs, nil
		case retry.Retrying:
			c.logger.Debugw("Retrying candidate",
				"candidate", cand.ID(),
				"attempt", attempt,
				"outcome", out.Kind.String(),
				"delay", d.Delay.String())
			if err := retry.Sleep(ctx, d.Delay); err != nil {
				return nil, fmt.Errorf("%s canceled during backoff: %w", op, err)
			}
		case retry.FallbackRequired:
			c.logger.Debugw("Falling back",
				"candidate", cand.ID(),
				"attempts", attempt,
				"outcome", out.Kind.String(),
				"status", out.StatusCode)
			return nil, nil
		default:
			err := ctx.Err()
			if err == nil {
				err = out.Err
			}
			return nil, fmt.Errorf("%s aborted: %w", op, err)
		}
	}
}

func classifyBodyError(err error) executor.Kind {
	var perr *normalize.ParseError
	switch {
	case errors.As(err, &perr):
		return executor.KindParse
	case errors.Is(err, normalize.ErrRateLimitedBody):
		return executor.KindRateLimited
	default:
		return executor.KindShape
	}
}
