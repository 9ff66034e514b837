// internal/app/app_test.go
package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LitLensMCP/internal/llm"
)

func TestProvidersRegisteredAtStartup(t *testing.T) {
	providers := llm.ListProviders()
	assert.Contains(t, providers, "anthropic")
	assert.Contains(t, providers, "openai")
}

func TestRegisteredProvidersConstruct(t *testing.T) {
	provider, err := llm.GetProvider("anthropic", map[string]string{"api_key": "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "Anthropic Claude", provider.GetName())
	assert.NotEmpty(t, provider.GetSupportedModels())

	provider, err = llm.GetProvider("openai", map[string]string{"api_key": "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", provider.GetName())
}
