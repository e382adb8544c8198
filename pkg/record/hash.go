package record

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// DefinitionHash computes the content-addressed digest of a Definition,
// satisfying P7: semantically identical definitions hash identically,
// and reordering an unordered set (DataRequirements, Assumptions, Risks)
// does not change the hash. It excludes metadata mutables (id, state,
// timestamps) by construction, since Definition carries none of those.
func DefinitionHash(d Definition) string {
	canonical := canonicalDefinition{
		Tier:               d.Tier,
		Universe:           d.Universe,
		Entry:              d.Entry,
		Position:           d.Position,
		Exit:               d.Exit,
		PositionManagement: d.PositionManagement,
		RegimeAdaptive:     d.RegimeAdaptive,
		DataRequirements:   sortedCopy(d.DataRequirements),
		Assumptions:        sortedCopy(d.Assumptions),
		Risks:              sortedCopy(d.Risks),
		Parameters:         d.Parameters,
		MaxLeverage:        d.MaxLeverage,
	}
	// encoding/json sorts map keys during Marshal, giving the canonical
	// ordering needed for Parameters/RegimeAdaptive regardless of how
	// they were constructed in memory.
	b, err := json.Marshal(canonical)
	if err != nil {
		// Definition fields are all JSON-marshalable scalars, slices,
		// and maps; Marshal cannot fail for them in practice.
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type canonicalDefinition struct {
	Tier               Tier
	Universe           string
	Entry              string
	Position           string
	Exit               string
	PositionManagement string
	RegimeAdaptive     map[string]any
	DataRequirements   []string
	Assumptions        []string
	Risks              []string
	Parameters         map[string]any
	MaxLeverage        float64
}

func sortedCopy(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

// ContentHash computes a stable digest over arbitrary source bytes, used
// for source-content-hash idempotence keys (P1).
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
