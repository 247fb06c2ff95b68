package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AGENT_CLASSIFIER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "GEMINI_API_KEY", "GEMINI_MODELS",
		"AGENT_ENDPOINT", "AGENT_ADDR", "ALLOWED_ORIGINS", "AGENT_MEMORY_BACKEND", "AGENT_MEMORY_PATH",
		"AGENT_HISTORY_LIMIT", "AGENT_SUBMITTER", "DB_URL", "AGENT_SUBMIT_DELAY_MS", "AGENT_PROMPT_FILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ClassifierLocal, conf.Classifier)
	assert.Equal(t, ":8080", conf.Addr)
	assert.Equal(t, BackendMemory, conf.MemoryBackend)
	assert.Equal(t, 1500, conf.SubmitDelayMS)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"classifier": "openai",
		"api_key": "sk-file",
		"model": "gpt-4o",
		"memory_backend": "sqlite",
		"memory_path": "data/agent.db",
		"history_limit": 20
	}`), 0o644))

	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("GEMINI_MODELS", "gemini-2.0-flash, gemini-pro-latest,")
	t.Setenv("AGENT_HISTORY_LIMIT", "not-a-number")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ClassifierOpenAI, conf.Classifier)
	assert.Equal(t, "sk-file", conf.APIKey)
	assert.Equal(t, "gpt-4.1-mini", conf.Model)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-pro-latest"}, conf.GeminiModels)
	assert.Equal(t, 20, conf.HistoryLimit)
	assert.Equal(t, BackendSQLite, conf.MemoryBackend)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("AGENT_CLASSIFIER", "gemini")
	_, err = Load("")
	assert.ErrorContains(t, err, "gemini_api_key")
}

func TestValidate(t *testing.T) {
	conf := Default()
	conf.Classifier = "magic"
	conf.MemoryBackend = "tape"
	conf.Submitter = SubmitterPostgres
	err := conf.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown classifier")
	assert.ErrorContains(t, err, "unknown memory backend")
	assert.ErrorContains(t, err, "database_url")
}

func TestLoadPromptSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
system: |
  You are the assistant of a portfolio.
  Call the '%s' tool.
models:
  - gemini-2.0-flash
owner: Sam
`), 0o644))

	spec, err := LoadPromptSpec(path)
	require.NoError(t, err)
	assert.Contains(t, spec.System, "Call the '%s' tool.")
	assert.Equal(t, []string{"gemini-2.0-flash"}, spec.Models)
	assert.Equal(t, "Sam", spec.Owner)

	_, err = LoadPromptSpec(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
