package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"dexscout/models"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Candidate is one concrete way of reaching a logical operation. It is a
// comparable value; two candidates are the same candidate iff all fields match.
type Candidate struct {
	BaseURL    string
	APIVersion string
	Operation  models.Operation
	ChainForm  string
	PlanTier   string
	Path       string
	AuthHeader string
	LimitParam string
}

// ID renders a stable key for logs, metrics and diagnostics.
func (c Candidate) ID() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", c.PlanTier, c.APIVersion, c.BaseURL, c.Path, c.ChainForm)
}

// Base is one configured API root.
type Base struct {
	URL        string `yaml:"url"`
	Version    string `yaml:"version"`
	Plan       string `yaml:"plan"`
	AuthHeader string `yaml:"auth_header"`
	LimitParam string `yaml:"limit_param,omitempty"`
}

// File is the on-disk catalog layout.
type File struct {
	Chains map[string][]string                      `yaml:"chains"`
	Paths  map[string]map[models.Operation][]string `yaml:"paths"`
	Bases  []Base                                   `yaml:"bases"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cannot parse catalog: %w", err)
	}
	if len(f.Bases) == 0 {
		return nil, fmt.Errorf("catalog has no bases")
	}
	for i, b := range f.Bases {
		if b.URL == "" || b.Version == "" {
			return nil, fmt.Errorf("catalog base %d: url and version are required", i)
		}
		if _, ok := f.Paths[b.Version]; !ok {
			return nil, fmt.Errorf("catalog base %d: no paths for version %q", i, b.Version)
		}
		if b.AuthHeader == "" {
			f.Bases[i].AuthHeader = "X-API-KEY"
		}
		if b.LimitParam == "" {
			f.Bases[i].LimitParam = "limit"
		}
	}
	for version, ops := range f.Paths {
		for op := range ops {
			if !op.Valid() {
				return nil, fmt.Errorf("catalog paths %s: unknown operation %q", version, op)
			}
		}
	}
	return &f, nil
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog file: %w", err)
	}
	return Parse(data)
}

type orderKey struct {
	op    models.Operation
	chain string
}

// Catalog yields ordered candidates per logical operation and learns from
// successful attempts. It is safe for concurrent use.
type Catalog struct {
	file   *File
	logger *zap.SugaredLogger

	mu           sync.RWMutex
	preferred    map[orderKey]Candidate
	workingTiers map[string]time.Time
	stats        map[string]*models.CandidateStats
}

func New(file *File, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Catalog{
		file:         file,
		logger:       logger,
		preferred:    make(map[orderKey]Candidate),
		workingTiers: make(map[string]time.Time),
		stats:        make(map[string]*models.CandidateStats),
	}
}

// ChainForms returns the on-wire spellings tried for chain. Unknown chains
// are passed through verbatim.
func (c *Catalog) ChainForms(chain string) []string {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if forms, ok := c.file.Chains[chain]; ok && len(forms) > 0 {
		return forms
	}
	return []string{chain}
}

// Plans lists the distinct plan tiers in declaration order.
func (c *Catalog) Plans() []string {
	seen := make(map[string]bool)
	var plans []string
	for _, b := range c.file.Bases {
		if !seen[b.Plan] {
			seen[b.Plan] = true
			plans = append(plans, b.Plan)
		}
	}
	return plans
}

func (c *Catalog) declared(op models.Operation, chain string) []Candidate {
	forms := c.ChainForms(chain)
	var out []Candidate
	for _, b := range c.file.Bases {
		for _, path := range c.file.Paths[b.Version][op] {
			if !strings.Contains(path, "{chain}") {
				out = append(out, c.candidate(b, op, path, ""))
				continue
			}
			for _, form := range forms {
				out = append(out, c.candidate(b, op, path, form))
			}
		}
	}
	return out
}

func (c *Catalog) candidate(b Base, op models.Operation, path, form string) Candidate {
	return Candidate{
		BaseURL:    strings.TrimRight(b.URL, "/"),
		APIVersion: b.Version,
		Operation:  op,
		ChainForm:  form,
		PlanTier:   b.Plan,
		Path:       path,
		AuthHeader: b.AuthHeader,
		LimitParam: b.LimitParam,
	}
}

// CandidatesFor returns the candidates for op on chain: the most recently
// successful candidate first, then candidates on plan tiers that have worked,
// then the rest, each group in declaration order.
func (c *Catalog) CandidatesFor(op models.Operation, chain string) []Candidate {
	all := c.declared(op, chain)
	if len(all) == 0 {
		return nil
	}

	c.mu.RLock()
	pref, hasPref := c.preferred[orderKey{op, normalizeChain(chain)}]
	tiers := make(map[string]bool, len(c.workingTiers))
	for t := range c.workingTiers {
		tiers[t] = true
	}
	c.mu.RUnlock()

	ordered := make([]Candidate, 0, len(all))
	if hasPref {
		for _, cand := range all {
			if cand == pref {
				ordered = append(ordered, cand)
				break
			}
		}
	}
	for _, cand := range all {
		if tiers[cand.PlanTier] && !(hasPref && cand == pref) {
			ordered = append(ordered, cand)
		}
	}
	for _, cand := range all {
		if !tiers[cand.PlanTier] && !(hasPref && cand == pref) {
			ordered = append(ordered, cand)
		}
	}
	return ordered
}

// CandidatesForPlan restricts CandidatesFor to one plan tier.
func (c *Catalog) CandidatesForPlan(op models.Operation, chain, plan string) []Candidate {
	var out []Candidate
	for _, cand := range c.CandidatesFor(op, chain) {
		if cand.PlanTier == plan {
			out = append(out, cand)
		}
	}
	return out
}

// RecordSuccess promotes cand for subsequent calls of the same operation on
// the same chain, and marks its plan tier as working.
func (c *Catalog) RecordSuccess(chain string, cand Candidate) {
	now := time.Now()
	key := orderKey{cand.Operation, normalizeChain(chain)}

	c.mu.Lock()
	prev, had := c.preferred[key]
	c.preferred[key] = cand
	c.workingTiers[cand.PlanTier] = now
	st := c.statsFor(cand)
	st.Successes++
	st.LastSuccess = now
	c.mu.Unlock()

	if !had || prev != cand {
		c.logger.Infow("Preferred candidate changed",
			"operation", cand.Operation,
			"chain", chain,
			"candidate", cand.ID(),
		)
	}
}

// RecordFailure is advisory: it only updates diagnostic counters.
func (c *Catalog) RecordFailure(cand Candidate) {
	c.mu.Lock()
	st := c.statsFor(cand)
	st.Failures++
	st.LastFailure = time.Now()
	c.mu.Unlock()
}

func (c *Catalog) statsFor(cand Candidate) *models.CandidateStats {
	id := cand.ID()
	st, ok := c.stats[id]
	if !ok {
		st = &models.CandidateStats{Candidate: id}
		c.stats[id] = st
	}
	return st
}

// Snapshot is a point-in-time copy of what the catalog has learned.
type Snapshot struct {
	Preferred    map[string]string       `json:"preferred"`
	WorkingTiers []string                `json:"working_tiers"`
	Stats        []models.CandidateStats `json:"stats"`
}

func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{Preferred: make(map[string]string, len(c.preferred))}
	for k, v := range c.preferred {
		s.Preferred[string(k.op)+"/"+k.chain] = v.ID()
	}
	for _, b := range c.Plans() {
		if _, ok := c.workingTiers[b]; ok {
			s.WorkingTiers = append(s.WorkingTiers, b)
		}
	}
	for _, st := range c.stats {
		s.Stats = append(s.Stats, *st)
	}
	sort.Slice(s.Stats, func(i, j int) bool { return s.Stats[i].Candidate < s.Stats[j].Candidate })
	return s
}

func normalizeChain(chain string) string {
	return strings.ToLower(strings.TrimSpace(chain))
}
