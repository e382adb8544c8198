package codegen

import (
	"embed"
	"strings"
	"text/template"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

//go:embed templates/*.tmpl
var tier1Templates embed.FS

// archetypeKeywords maps each tier-1 archetype (spec §4.7: "momentum
// rotation, mean reversion, trend following, dual momentum, breakout")
// to the entry/exit/position keywords that select it. Checked in order;
// the first match wins.
var archetypeKeywords = []struct {
	archetype string
	keywords  []string
}{
	{"dual_momentum", []string{"dual momentum", "relative momentum", "absolute momentum"}},
	{"momentum_rotation", []string{"momentum", "rank", "rotation"}},
	{"mean_reversion", []string{"mean reversion", "rsi", "z-score", "bollinger"}},
	{"trend_following", []string{"trend", "moving average cross", "macd"}},
	{"breakout", []string{"breakout", "donchian", "52-week high", "new high"}},
}

func detectArchetype(d record.Definition) string {
	text := strings.ToLower(d.Entry + " " + d.Exit + " " + d.Position)
	for _, a := range archetypeKeywords {
		for _, kw := range a.keywords {
			if strings.Contains(text, kw) {
				return a.archetype
			}
		}
	}
	return "generic"
}

type tier1Context struct {
	Universe    string
	Entry       string
	Exit        string
	Position    string
	MaxLeverage float64
	Parameters  map[string]any
}

// generateTier1 expands a known archetype's template with the
// definition's fields, deterministic by construction since
// text/template's map iteration sorts keys (spec §4.7's "covers ~70% of
// ingestable strategies").
func generateTier1(d record.Definition, generatorVersion string) (Artifact, error) {
	archetype := detectArchetype(d)
	tmpl, err := template.ParseFS(tier1Templates, "templates/"+archetype+".tmpl")
	if err != nil {
		return Artifact{}, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "loading tier-1 template %s", archetype)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, tier1Context{
		Universe: d.Universe, Entry: d.Entry, Exit: d.Exit, Position: d.Position,
		MaxLeverage: d.MaxLeverage, Parameters: d.Parameters,
	}); err != nil {
		return Artifact{}, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "rendering tier-1 template %s", archetype)
	}

	tokens := append(strings.Fields(d.Universe), strings.Fields(d.Entry)...)
	tokens = append(tokens, strings.Fields(d.Exit)...)
	return Artifact{Source: buf.String(), LogicFingerprint: sortedUnique(tokens), Tier: record.Tier1}, nil
}
