package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extremevalue/research-kit/internal/config"
)

func TestNewProviderDispatchesOnConfiguredProvider(t *testing.T) {
	cases := []struct {
		provider string
		want     any
	}{
		{"anthropic", &anthropicProvider{}},
		{"bedrock", &bedrockProvider{}},
		{"genai", &genAIProvider{}},
	}

	for _, tc := range cases {
		p, err := NewProvider(config.LLMConfig{Provider: tc.provider, Model: "test-model", Timeout: 30 * time.Second})
		require.NoError(t, err)
		assert.IsType(t, tc.want, p)
	}
}

func TestNewProviderRejectsUnknownProvider(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{Provider: "not-a-real-provider"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider: not-a-real-provider")
}

func TestDispatchTimeoutFallsBackWhenUnset(t *testing.T) {
	assert.Equal(t, 60*time.Second, dispatchTimeout(config.LLMConfig{}))
	assert.Equal(t, 5*time.Second, dispatchTimeout(config.LLMConfig{Timeout: 5 * time.Second}))
}
