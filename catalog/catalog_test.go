package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"dexscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
chains:
  solana: ["solana", "1399811149"]
paths:
  v2:
    gainers: ["/v2/ranking/{chain}/gainers"]
    blockchains: ["/v2/blockchain"]
  v1:
    gainers: ["/ranking/{chain}/gainers"]
bases:
  - url: https://a.example/trial/
    version: v2
    plan: trial
  - url: https://a.example/pro
    version: v2
    plan: pro
    auth_header: X-BLOBR-KEY
  - url: https://b.example/v1
    version: v1
    plan: legacy
    limit_param: pageSize
`

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	f, err := Parse([]byte(testCatalog))
	require.NoError(t, err)
	return New(f, nil)
}

func TestLoad_DefaultCatalog(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)

	c := New(f, nil)
	for _, op := range []models.Operation{models.OpRecentPools, models.OpHotPools, models.OpGainers, models.OpLosers} {
		assert.NotEmpty(t, c.CandidatesFor(op, "solana"), "operation %s", op)
	}
	assert.Contains(t, c.Plans(), "trial")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Bases, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "bases: [unterminated"},
		{"no bases", "paths: {v2: {gainers: [/x]}}"},
		{"missing version paths", "paths: {v2: {gainers: [/x]}}\nbases: [{url: https://x, version: v3}]"},
		{"unknown operation", "paths: {v2: {bogus: [/x]}}\nbases: [{url: https://x, version: v2}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestCandidatesFor_DeclarationOrder(t *testing.T) {
	c := newTestCatalog(t)

	got := c.CandidatesFor(models.OpGainers, "Solana")
	require.Len(t, got, 6)

	assert.Equal(t, "https://a.example/trial", got[0].BaseURL)
	assert.Equal(t, "solana", got[0].ChainForm)
	assert.Equal(t, "1399811149", got[1].ChainForm)
	assert.Equal(t, "pro", got[2].PlanTier)
	assert.Equal(t, "X-BLOBR-KEY", got[2].AuthHeader)
	assert.Equal(t, "X-API-KEY", got[0].AuthHeader)
	assert.Equal(t, "legacy", got[4].PlanTier)
	assert.Equal(t, "pageSize", got[4].LimitParam)
	assert.Equal(t, "limit", got[0].LimitParam)
}

func TestCandidatesFor_UnknownChainIsVerbatim(t *testing.T) {
	c := newTestCatalog(t)

	got := c.CandidatesFor(models.OpGainers, "arbitrum")
	require.Len(t, got, 3)
	for _, cand := range got {
		assert.Equal(t, "arbitrum", cand.ChainForm)
	}
}

func TestCandidatesFor_PathWithoutChain(t *testing.T) {
	c := newTestCatalog(t)

	got := c.CandidatesFor(models.OpBlockchains, "solana")
	require.Len(t, got, 2)
	assert.Empty(t, got[0].ChainForm)
}

func TestRecordSuccess_PromotesCandidate(t *testing.T) {
	c := newTestCatalog(t)

	before := c.CandidatesFor(models.OpGainers, "solana")
	winner := before[4]
	c.RecordSuccess("solana", winner)

	after := c.CandidatesFor(models.OpGainers, "solana")
	require.Len(t, after, len(before))
	assert.Equal(t, winner, after[0])
	// Same tier goes next, then the untested tiers in declaration order.
	assert.Equal(t, before[5], after[1])
	assert.Equal(t, before[0], after[2])

	// Another chain is unaffected by the preference but benefits from the tier.
	other := c.CandidatesFor(models.OpGainers, "arbitrum")
	assert.Equal(t, "legacy", other[0].PlanTier)
}

func TestRecordSuccess_WorkingTierAcrossOperations(t *testing.T) {
	c := newTestCatalog(t)

	pro := c.CandidatesForPlan(models.OpGainers, "solana", "pro")
	require.Len(t, pro, 2)
	c.RecordSuccess("solana", pro[1])

	chains := c.CandidatesFor(models.OpBlockchains, "solana")
	assert.Equal(t, "pro", chains[0].PlanTier)
}

func TestRecordFailure_IsAdvisory(t *testing.T) {
	c := newTestCatalog(t)

	before := c.CandidatesFor(models.OpGainers, "solana")
	c.RecordFailure(before[0])
	c.RecordFailure(before[0])

	assert.Equal(t, before, c.CandidatesFor(models.OpGainers, "solana"))

	snap := c.Snapshot()
	require.Len(t, snap.Stats, 1)
	assert.Equal(t, int64(2), snap.Stats[0].Failures)
	assert.Empty(t, snap.Preferred)
}

func TestSnapshot(t *testing.T) {
	c := newTestCatalog(t)

	cand := c.CandidatesFor(models.OpGainers, "solana")[1]
	c.RecordSuccess("solana", cand)

	snap := c.Snapshot()
	assert.Equal(t, cand.ID(), snap.Preferred["gainers/solana"])
	assert.Equal(t, []string{"trial"}, snap.WorkingTiers)
}
