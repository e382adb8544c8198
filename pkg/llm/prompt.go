package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/template"
)

// promptTemplate mirrors the teacher's <|system|>/<|user|>/<|assistant|>
// sectioning, generalized from a single alert-analysis task to an
// arbitrary persona/rationale sub-agent task with a JSON-context block.
const promptTemplate = `<|system|>
You are an isolated analytical sub-agent. You see only the task and
context below; you have no memory of any other sub-agent's output.
Respond with a single raw JSON object matching the requested schema.
Do not wrap it in markdown code fences. Do not include any prose
outside the JSON object.

TASK:
%s

<|user|>
CONTEXT:
%s

<|assistant|>
`

// buildPrompt renders task and promptContext (marshaled as indented,
// key-sorted JSON for determinism) into the shared sub-agent prompt
// shape every provider adapter sends.
func buildPrompt(task string, promptContext map[string]any) (string, error) {
	contextJSON, err := marshalSorted(promptContext)
	if err != nil {
		return "", fmt.Errorf("marshaling prompt context: %w", err)
	}
	return fmt.Sprintf(promptTemplate, task, contextJSON), nil
}

// marshalSorted renders m as indented JSON with map keys in sorted
// order. Top-level keys are sorted explicitly here; nested map values
// are rendered by json.MarshalIndent, which sorts their keys itself.
func marshalSorted(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		val, err := json.MarshalIndent(m[k], "  ", "  ")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "  %q: %s", k, val)
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.String(), nil
}

// personaTaskTemplate is rendered by pkg/persona into buildPrompt's task
// argument, naming the persona's lens so the model adopts it (spec §4.11).
var personaTaskTemplate = template.Must(template.New("persona_task").Parse(
	`Act as the "{{.Persona}}" analytical lens. Assess the attached strategy
validation and respond with a JSON object carrying exactly these
fields: "assessment" (string), "concerns" (array of strings), "actions"
(array of strings), "confidence" (number between 0 and 1).`))

// RenderPersonaTask renders the fixed persona-lens instruction for kind,
// shared by pkg/persona so every adapter receives an identically-shaped
// task string regardless of which provider is dispatching it.
func RenderPersonaTask(kind string) (string, error) {
	var buf bytes.Buffer
	if err := personaTaskTemplate.Execute(&buf, struct{ Persona string }{Persona: kind}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
