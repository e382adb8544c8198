// Package persona implements the Persona Orchestrator (C10): typed
// dispatch over a closed analytical roster, parallel sub-agent calls
// each isolated in its own context, and a quorum-gated synthesis step
// (spec §4.11).
package persona

// Assessment is the strict JSON payload every persona (other than the
// synthesizer) must return: assessment, concerns, actions, confidence.
type Assessment struct {
	Assessment string   `json:"assessment" validate:"required"`
	Concerns   []string `json:"concerns"`
	Actions    []string `json:"actions"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// Status is a single persona dispatch's outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing" // timed out or errored; does not block synthesis
)

// Result is one persona's dispatch outcome, always present in the
// orchestrator's output regardless of Status so callers can audit which
// personas answered and which were dropped to quorum (spec §4.11).
type Result struct {
	Persona       string     `json:"persona"`
	CorrelationID string     `json:"correlation_id"`
	Status        Status     `json:"status"`
	Assessment    Assessment `json:"assessment,omitempty"`
	Error         string     `json:"error,omitempty"`
}
