package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dexscout/cascade"
	"dexscout/catalog"
	"dexscout/middleware"
	"dexscout/models"
)

// PlanResult reports whether a plan tier served an operation.
type PlanResult struct {
	Plan      string
	OK        bool
	Candidate string
	Records   int
	Err       error
}

// ProbePlans runs op once per plan tier, restricted to that tier's
// candidates. Working tiers are promoted in the catalog as a side effect.
func (c *Client) ProbePlans(ctx context.Context, op models.Operation, chain string) []PlanResult {
	if op == "" {
		op = models.OpGainers
	}
	var results []PlanResult
	for _, plan := range c.catalog.Plans() {
		if ctx.Err() != nil {
			break
		}
		plan := plan
		if len(c.catalog.CandidatesForPlan(op, chain, plan)) == 0 {
			results = append(results, PlanResult{Plan: plan, Err: fmt.Errorf("no %s candidates for %s on plan %s", op, chain, plan)})
			continue
		}
		recs, cand, err := c.run(ctx, op, chain, models.Params{Chain: chain, Limit: DefaultLimit},
			cascade.WithFilter(func(cand catalog.Candidate) bool { return cand.PlanTier == plan }))

		res := PlanResult{Plan: plan, OK: err == nil, Records: len(recs), Err: err}
		if err == nil {
			res.Candidate = cand.ID()
		}
		results = append(results, res)
	}
	return results
}

// Task is one named logical call for FetchAll.
type Task struct {
	Name string
	Run  func(ctx context.Context) ([]models.Record, error)
}

type TaskResult struct {
	Name     string
	Records  []models.Record
	Err      error
	Duration time.Duration
}

// FetchAll runs tasks concurrently and returns their results in task order.
// A panicking task fails alone.
func FetchAll(ctx context.Context, tasks []Task) []TaskResult {
	results := make([]TaskResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			start := time.Now()
			var recs []models.Record
			err := middleware.Recover(task.Name, func() error {
				var err error
				recs, err = task.Run(ctx)
				return err
			})
			results[i] = TaskResult{Name: task.Name, Records: recs, Err: err, Duration: time.Since(start)}
		}(i, task)
	}
	wg.Wait()
	return results
}
