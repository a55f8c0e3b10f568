package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setGraphEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
}

func TestValidateRequiresGraphCredentials(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	t.Setenv("NEO4J_USER", "")
	t.Setenv("NEO4J_PASSWORD", "")

	cfg := Load()
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresGeminiKey(t *testing.T) {
	setGraphEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := Load()
	assert.Error(t, cfg.Validate())

	t.Setenv("GOOGLE_API_KEY", "key")
	cfg = Load()
	assert.NoError(t, cfg.Validate())
}

func TestValidateOllamaNeedsNoKey(t *testing.T) {
	setGraphEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := Load()
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	setGraphEnv(t)
	cfg := Load()

	require.NotNil(t, cfg)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 10, cfg.Ai.TopK)
	assert.Equal(t, 30*time.Second, cfg.Graph.QueryTimeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.Ai.LLMModel)
}

func TestValidateRejectsNonPositiveTopK(t *testing.T) {
	setGraphEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("RETRIEVER_TOP_K", "0")

	cfg := Load()
	assert.Error(t, cfg.Validate())
}
