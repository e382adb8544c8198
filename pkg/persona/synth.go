package persona

import "github.com/extremevalue/research-kit/pkg/record"

// synthesizerTask is the fixed instruction given to the synthesizer
// persona; unlike the analytical roster it does not use
// llm.RenderPersonaTask because its schema and role differ (it judges,
// it does not assess).
const synthesizerTask = `You are the synthesizer. You receive every analytical persona's
assessment of the same strategy validation as evidence, already sorted
by persona name so your answer does not depend on dispatch order.
Form your own independent judgment — you are not required to take the
union or intersection of the individual verdicts. Respond with a JSON
object carrying exactly these fields: "status" (one of "VALIDATED",
"CONDITIONAL", "INVALIDATED"), "consensus" (string summarizing points
of agreement), "disagreements" (array of strings), "actions" (array of
strings).`

// Synthesis is the synthesizer persona's final structured verdict
// (spec §4.11): an independent judgment over all persona evidence, not
// constrained to the union/intersection of individual verdicts (see
// DESIGN.md's resolution of this Open Question).
type Synthesis struct {
	Status        record.Verdict `json:"status" validate:"required,oneof=VALIDATED CONDITIONAL INVALIDATED"`
	Consensus     string         `json:"consensus" validate:"required"`
	Disagreements []string       `json:"disagreements"`
	Actions       []string       `json:"actions"`
}
