// Package notify implements the optional Slack notification hook for
// Proposal Queue review events (spec §3.1's Proposal Record; the Slack
// row of SPEC_FULL.md §B and its §C supplemented features).
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/record"
)

// Notifier announces a single proposal-queue event. Message
// construction is kept separate from delivery so callers can unit-test
// message shape without a live Slack workspace.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// New builds a Notifier from cfg: a no-op when Enabled is false, so
// callers never need to branch on whether notification is configured,
// and a real Slack-backed notifier when Enabled is true. An enabled
// config with an empty token or channel is an error.
func New(cfg config.Notify) (Notifier, error) {
	if !cfg.Enabled {
		return noopNotifier{}, nil
	}
	if cfg.SlackToken == "" {
		return nil, fmt.Errorf("notify: enabled but slack_token is empty")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("notify: enabled but channel is empty")
	}
	return &slackNotifier{client: slack.New(cfg.SlackToken), channel: cfg.Channel}, nil
}

type slackNotifier struct {
	client  *slack.Client
	channel string
}

func (s *slackNotifier) Notify(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("posting slack notification: %w", err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, message string) error { return nil }

// ProposalSubmitted formats and sends the review-queue notification for
// a newly submitted proposal.
func ProposalSubmitted(ctx context.Context, n Notifier, p record.Proposal) error {
	return n.Notify(ctx, fmt.Sprintf(
		"New proposal %s (%s) awaiting review: %s",
		p.ID, p.Kind, p.Rationale,
	))
}
