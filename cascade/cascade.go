package cascade

import (
	"dexscout/catalog"
	"dexscout/models"
)

// Source supplies the current candidate ordering. *catalog.Catalog
// implements it.
type Source interface {
	CandidatesFor(op models.Operation, chain string) []catalog.Candidate
}

type Option func(*Cascader)

// WithRevisits lets the cascader start over up to rounds extra times once
// every candidate has been tried. Off by default.
func WithRevisits(rounds int) Option {
	return func(c *Cascader) {
		if rounds > 0 {
			c.revisits = rounds
		}
	}
}

// WithFilter restricts the walk to candidates accepted by keep.
func WithFilter(keep func(catalog.Candidate) bool) Option {
	return func(c *Cascader) {
		c.keep = keep
	}
}

// Cascader walks candidates for one logical call. The ordering is re-read on
// every step so promotions made by concurrent calls take effect immediately.
// It is not safe for concurrent use; each logical call owns one.
type Cascader struct {
	src      Source
	op       models.Operation
	chain    string
	keep     func(catalog.Candidate) bool
	revisits int

	tried map[catalog.Candidate]struct{}
	count int
}

func New(src Source, op models.Operation, chain string, opts ...Option) *Cascader {
	c := &Cascader{
		src:   src,
		op:    op,
		chain: chain,
		tried: make(map[catalog.Candidate]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next returns the first candidate of the current ordering not yet tried in
// this call. ok is false when the catalog is exhausted.
func (c *Cascader) Next() (catalog.Candidate, bool) {
	for {
		var eligible int
		for _, cand := range c.src.CandidatesFor(c.op, c.chain) {
			if c.keep != nil && !c.keep(cand) {
				continue
			}
			eligible++
			if _, seen := c.tried[cand]; seen {
				continue
			}
			c.tried[cand] = struct{}{}
			c.count++
			return cand, true
		}
		if eligible == 0 || c.revisits == 0 {
			return catalog.Candidate{}, false
		}
		c.revisits--
		c.tried = make(map[catalog.Candidate]struct{})
	}
}

// Tried reports how many candidates have been handed out.
func (c *Cascader) Tried() int {
	return c.count
}
