package record

import (
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// transitions enumerates the allowed edges of the strategy state
// machine (spec §4.1). Any state may additionally transition to
// StateError (handled separately in CanTransition), and terminal states
// never transition backward (P8).
var transitions = map[State][]State{
	StatePending:         {StateVerifying, StateArchived, StateRejected},
	StateVerifying:       {StateBlocked, StateReadyToGenerate},
	StateBlocked:         {StateVerifying}, // re-run verification after the cause is addressed
	StateReadyToGenerate: {StateGenerating},
	StateGenerating:      {StateGenFailed, StateReadyToExecute, StateNeedsReview},
	StateNeedsReview:     {StateReadyToExecute, StateGenFailed},
	StateGenFailed:       {StateGenerating}, // retry generation
	StateReadyToExecute:  {StateExecuting},
	StateExecuting:       {StateAnalyzing},
	StateAnalyzing:       {StateValidated, StateConditional, StateInvalidated},
	StateValidated:       {},
	StateConditional:     {},
	StateInvalidated:     {},
	StateArchived:        {},
	StateRejected:        {},
	StateError:           {}, // resumed by re-running the faulted stage, not by a transition table edge
}

// terminalStates never transition back to a non-terminal state (P8).
var terminalStates = map[State]bool{
	StateValidated:   true,
	StateConditional: true,
	StateInvalidated: true,
	StateArchived:    true,
	StateRejected:    true,
}

// CanTransition reports whether from -> to is a legal edge. Any
// non-terminal state may transition to StateError; StateError itself
// may transition to any state reachable from the state recorded at the
// time of failure, which callers pass as from (the state the record was
// "in" before the faulted stage, not StateError literally — the error
// path resumes the faulted stage against the same definition_hash per
// spec §4.1, it does not re-enter the table at StateError).
func CanTransition(from, to State) bool {
	if terminalStates[from] {
		return false // P8: terminal states never move again
	}
	if to == StateError {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a ConflictError if from does not match
// current, matching the Record Store's update_state contract (spec
// §4.2: "fails if the from state does not match current state"), and a
// ValidationError if from->to is not legal. A record in StateError is
// the exception: from names the state it held before the fault (see
// CanTransition), so it is not compared with current.
func ValidateTransition(current, from, to State) error {
	if current != from && current != StateError {
		return apperrors.NewConflictError(
			"state conflict: expected current state " + string(from) + " but found " + string(current),
		)
	}
	if !CanTransition(from, to) {
		return apperrors.NewValidationError(
			"illegal state transition " + string(from) + " -> " + string(to),
		)
	}
	return nil
}

// IsTerminal reports whether s is a terminal state (spec §4.1).
func IsTerminal(s State) bool {
	return terminalStates[s]
}
