package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extremevalue/research-kit/pkg/record"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	store, err := record.Open(t.TempDir())
	require.NoError(t, err)
	return NewQueue(store, nil, 30*24*time.Hour)
}

func TestSubmitCreatesPendingProposal(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := q.Submit(context.Background(), record.ProposalComposite, "combines two legs", nil, nil, "VAL-001", now)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, record.ProposalPending, p.Status)
	assert.Equal(t, record.ProposalComposite, p.Kind)
}

func TestListFiltersByStatusAndKindAndIsFIFO(t *testing.T) {
	q := newTestQueue(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := q.Submit(context.Background(), record.ProposalComposite, "first", nil, nil, "VAL-001", base)
	require.NoError(t, err)
	second, err := q.Submit(context.Background(), record.ProposalComposite, "second", nil, nil, "VAL-002", base.Add(time.Hour))
	require.NoError(t, err)
	_, err = q.Submit(context.Background(), record.ProposalEnhancement, "third", nil, nil, "VAL-003", base.Add(2*time.Hour))
	require.NoError(t, err)

	composites, err := q.List(record.ProposalPending, record.ProposalComposite)
	require.NoError(t, err)
	require.Len(t, composites, 2)
	assert.Equal(t, first.ID, composites[0].ID)
	assert.Equal(t, second.ID, composites[1].ID)

	all, err := q.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestApproveIsPermanentAndRejectsDoubleTransition(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := q.Submit(context.Background(), record.ProposalComposite, "x", nil, nil, "VAL-001", now)
	require.NoError(t, err)

	approved, err := q.Approve(p.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, record.ProposalApproved, approved.Status)

	_, err = q.Reject(p.ID, "too late", now.Add(2*time.Hour))
	assert.Error(t, err)
}

func TestApproveMaterializesProposedDefinitionIntoAStrategy(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	def := &record.Definition{Universe: "us_equities"}
	p, err := q.Submit(context.Background(), record.ProposalComposite, "combines two legs", def, nil, "VAL-001", now)
	require.NoError(t, err)

	approved, err := q.Approve(p.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, approved.CreatedStrategyID)

	strat, err := q.Store.GetStrategy(approved.CreatedStrategyID)
	require.NoError(t, err)
	assert.Equal(t, record.StatePending, strat.State)
	assert.Equal(t, "us_equities", strat.Definition.Universe)
}

func TestApproveRejectsAProposalWhoseLineageWouldIntroduceACycle(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	def := &record.Definition{Universe: "us_equities"}
	p, err := q.Submit(context.Background(), record.ProposalComposite, "combines two legs", def, nil, "VAL-001", now)
	require.NoError(t, err)

	// A malformed lineage naming the proposal's own (eventual) identity
	// as one of its parents is the simplest deterministic cycle
	// WouldIntroduceCycle can detect before the strategy even exists.
	stored, err := q.Store.GetProposal(p.ID)
	require.NoError(t, err)
	stored.Lineage = record.Lineage{Parents: []string{p.ID}}
	require.NoError(t, q.Store.UpdateProposal(stored, now))

	_, err = q.Approve(p.ID, now.Add(time.Hour))
	assert.Error(t, err)
}

func TestApproveWithAcyclicLineageParentsMaterializesTheStrategy(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	parent, err := q.Store.CreateStrategy(record.Strategy{}, now)
	require.NoError(t, err)

	def := &record.Definition{Universe: "us_equities"}
	p, err := q.Submit(context.Background(), record.ProposalComposite, "combines two legs", def, []string{parent.ID}, "VAL-001", now)
	require.NoError(t, err)

	approved, err := q.Approve(p.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, approved.CreatedStrategyID)
}

func TestRejectRecordsReason(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := q.Submit(context.Background(), record.ProposalComposite, "x", nil, nil, "VAL-001", now)
	require.NoError(t, err)

	rejected, err := q.Reject(p.ID, "insufficient sample", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, record.ProposalRejected, rejected.Status)
	assert.Equal(t, "insufficient sample", rejected.RejectionReason)
}

func TestPruneExpiredRemovesOnlyExpiredDeferredProposals(t *testing.T) {
	q := newTestQueue(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stale, err := q.Submit(context.Background(), record.ProposalComposite, "stale", nil, nil, "VAL-001", now)
	require.NoError(t, err)
	_, err = q.Defer(stale.ID, now)
	require.NoError(t, err)

	fresh, err := q.Submit(context.Background(), record.ProposalComposite, "fresh", nil, nil, "VAL-002", now)
	require.NoError(t, err)
	_, err = q.Defer(fresh.ID, now.Add(29*24*time.Hour))
	require.NoError(t, err)

	pending, err := q.Submit(context.Background(), record.ProposalComposite, "pending", nil, nil, "VAL-003", now)
	require.NoError(t, err)

	pruned, err := q.PruneExpired(now.Add(31 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, pruned)

	remaining, err := q.List("", "")
	require.NoError(t, err)
	var remainingIDs []string
	for _, p := range remaining {
		remainingIDs = append(remainingIDs, p.ID)
	}
	assert.NotContains(t, remainingIDs, stale.ID)
	assert.Contains(t, remainingIDs, fresh.ID)
	assert.Contains(t, remainingIDs, pending.ID)
}
