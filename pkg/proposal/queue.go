// Package proposal implements the Proposal Queue (C11): a FIFO review
// queue per proposal kind, status filtering, permanent retention for
// `approved` proposals, and TTL prune for `deferred` ones (spec §3.1,
// §9). Persistence itself belongs to the Record Store (pkg/record);
// this package is the review workflow layered on top of it.
package proposal

import (
	"context"
	"sort"
	"time"

	"github.com/extremevalue/research-kit/pkg/notify"
	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Queue wraps a record.Store with the review-workflow operations
// spec §3.1 describes for Proposal Records. Notifier may be nil (no
// notification) or notify.New's no-op, both of which make Notify calls
// inert.
type Queue struct {
	Store    *record.Store
	Notifier notify.Notifier
	TTL      time.Duration
}

// NewQueue builds a Queue. notifier may be nil.
func NewQueue(store *record.Store, notifier notify.Notifier, ttl time.Duration) *Queue {
	return &Queue{Store: store, Notifier: notifier, TTL: ttl}
}

// Submit creates a new pending Proposal Record and best-effort notifies
// reviewers; a notification failure is never allowed to fail the
// submission itself, since the durable record is already written.
// parents names the strategies def was derived from (e.g. a composite's
// legs); it is checked for cycles at approval time.
func (q *Queue) Submit(ctx context.Context, kind record.ProposalKind, rationale string, def *record.Definition, parents []string, sourceValidation string, now time.Time) (record.Proposal, error) {
	p, err := q.Store.CreateProposal(record.Proposal{
		Kind:               kind,
		Rationale:          rationale,
		ProposedDefinition: def,
		Lineage:            record.Lineage{Parents: parents},
		SourceValidation:   sourceValidation,
	}, now)
	if err != nil {
		return record.Proposal{}, err
	}

	if q.Notifier != nil {
		_ = notify.ProposalSubmitted(ctx, q.Notifier, p)
	}
	return p, nil
}

// List returns proposals in FIFO (oldest-first) order, optionally
// filtered by status and/or kind; pass "" for either to skip that
// filter.
func (q *Queue) List(status record.ProposalStatus, kind record.ProposalKind) ([]record.Proposal, error) {
	all, err := q.Store.ListProposals()
	if err != nil {
		return nil, err
	}

	filtered := make([]record.Proposal, 0, len(all))
	for _, p := range all {
		if status != "" && p.Status != status {
			continue
		}
		if kind != "" && p.Kind != kind {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Approve permanently transitions a pending or deferred proposal to
// approved; approved proposals are never subject to TTL prune (spec §3.1).
func (q *Queue) Approve(id string, now time.Time) (record.Proposal, error) {
	return q.transition(id, record.ProposalApproved, "", now)
}

// Reject transitions a pending or deferred proposal to rejected,
// recording reason.
func (q *Queue) Reject(id, reason string, now time.Time) (record.Proposal, error) {
	return q.transition(id, record.ProposalRejected, reason, now)
}

// Defer transitions a pending proposal to deferred, starting its TTL
// clock at now.
func (q *Queue) Defer(id string, now time.Time) (record.Proposal, error) {
	return q.transition(id, record.ProposalDeferred, "", now)
}

func (q *Queue) transition(id string, to record.ProposalStatus, reason string, now time.Time) (record.Proposal, error) {
	p, err := q.Store.GetProposal(id)
	if err != nil {
		return record.Proposal{}, err
	}
	if p.Status == record.ProposalApproved || p.Status == record.ProposalRejected {
		return record.Proposal{}, apperrors.NewConflictError(id + " is already in a terminal state: " + string(p.Status))
	}

	// Approval of a proposal carrying a definition materializes it into
	// a pending Strategy Record (spec §4.12); the lineage parents it
	// names are cycle-checked first (spec §9), using p.ID itself as the
	// candidate since the strategy it becomes does not exist yet.
	if to == record.ProposalApproved && p.ProposedDefinition != nil {
		if len(p.Lineage.Parents) > 0 {
			cycle, err := record.WouldIntroduceCycle(p.ID, p.Lineage.Parents, q.Store.LineageLookup())
			if err != nil {
				return record.Proposal{}, err
			}
			if cycle {
				return record.Proposal{}, apperrors.NewConflictError(id + " approval would introduce a lineage cycle")
			}
		}

		strat, err := q.Store.CreateStrategy(record.Strategy{
			Name:       id + " (approved proposal)",
			Definition: *p.ProposedDefinition,
			Lineage:    p.Lineage,
			Provenance: record.Provenance{SourceRef: "proposal:" + id},
		}, now)
		if err != nil {
			return record.Proposal{}, err
		}
		p.CreatedStrategyID = strat.ID
	}

	p.Status = to
	if reason != "" {
		p.RejectionReason = reason
	}
	if err := q.Store.UpdateProposal(p, now); err != nil {
		return record.Proposal{}, err
	}
	return p, nil
}

// PruneExpired deletes every `deferred` proposal whose TTL has elapsed
// as of now, returning the pruned ids. `approved` and `rejected`
// proposals are retained permanently; `pending` proposals have no TTL.
func (q *Queue) PruneExpired(now time.Time) ([]string, error) {
	all, err := q.Store.ListProposals()
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, p := range all {
		if p.Status != record.ProposalDeferred {
			continue
		}
		if TimeRemaining(p.UpdatedAt, q.TTL, now) > 0 {
			continue
		}
		if err := q.Store.DeleteProposal(p.ID); err != nil {
			return pruned, err
		}
		pruned = append(pruned, p.ID)
	}
	return pruned, nil
}
