package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	provider, err := NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	provider, err = NewLLMProvider("gemini", "gemini-2.5-flash", "", "key")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = NewLLMProvider("gemini", "gemini-2.5-flash", "", "")
	assert.Error(t, err)

	_, err = NewLLMProvider("anthropic", "claude", "", "")
	assert.Error(t, err)
}
