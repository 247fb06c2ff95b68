package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

const (
	ClassifierOpenAI = "openai"
	ClassifierGemini = "gemini"
	ClassifierHTTP   = "http"
	ClassifierLocal  = "local"

	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	SubmitterLog      = "log"
	SubmitterSQLite   = "sqlite"
	SubmitterPostgres = "postgres"
)

type Config struct {
	// Classifier selects the intent classifier: openai, gemini, http or local.
	Classifier string `json:"classifier"`

	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`

	GeminiAPIKey string   `json:"gemini_api_key"`
	GeminiModels []string `json:"gemini_models"`

	AgentEndpoint string `json:"agent_endpoint"`

	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`

	MemoryBackend string `json:"memory_backend"`
	MemoryPath    string `json:"memory_path"`
	HistoryLimit  int    `json:"history_limit"`

	Submitter     string `json:"submitter"`
	DatabaseURL   string `json:"database_url"`
	SubmitDelayMS int    `json:"submit_delay_ms"`

	PromptFile string `json:"prompt_file"`
	LogLevel   string `json:"log_level"`
}

func Default() *Config {
	return &Config{
		Classifier:     ClassifierLocal,
		Model:          "gpt-4o-mini",
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
		MemoryBackend:  BackendMemory,
		MemoryPath:     "data/memory",
		HistoryLimit:   100,
		Submitter:      SubmitterLog,
		SubmitDelayMS:  1500,
		LogLevel:       "info",
	}
}

// Load reads .env (if present), then the JSON file at path (if path is not
// empty), then environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	conf := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := sonic.Unmarshal(file, conf); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	conf.applyEnv()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) applyEnv() {
	c.Classifier = getEnvDefault("AGENT_CLASSIFIER", c.Classifier)
	c.APIKey = getEnvDefault("OPENAI_API_KEY", c.APIKey)
	c.BaseURL = getEnvDefault("OPENAI_BASE_URL", c.BaseURL)
	c.Model = getEnvDefault("OPENAI_MODEL", c.Model)
	c.GeminiAPIKey = strings.TrimSpace(getEnvDefault("GEMINI_API_KEY", c.GeminiAPIKey))
	c.GeminiModels = getEnvListDefault("GEMINI_MODELS", c.GeminiModels)
	c.AgentEndpoint = getEnvDefault("AGENT_ENDPOINT", c.AgentEndpoint)
	c.Addr = getEnvDefault("AGENT_ADDR", c.Addr)
	c.AllowedOrigins = getEnvListDefault("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.MemoryBackend = getEnvDefault("AGENT_MEMORY_BACKEND", c.MemoryBackend)
	c.MemoryPath = getEnvDefault("AGENT_MEMORY_PATH", c.MemoryPath)
	c.HistoryLimit = getEnvIntDefault("AGENT_HISTORY_LIMIT", c.HistoryLimit)
	c.Submitter = getEnvDefault("AGENT_SUBMITTER", c.Submitter)
	c.DatabaseURL = getEnvDefault("DB_URL", c.DatabaseURL)
	c.SubmitDelayMS = getEnvIntDefault("AGENT_SUBMIT_DELAY_MS", c.SubmitDelayMS)
	c.PromptFile = getEnvDefault("AGENT_PROMPT_FILE", c.PromptFile)
	c.LogLevel = getEnvDefault("LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Classifier {
	case ClassifierOpenAI:
		if c.APIKey == "" {
			errs = append(errs, errors.New("openai classifier requires api_key"))
		}
	case ClassifierGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("gemini classifier requires gemini_api_key"))
		}
	case ClassifierHTTP:
		if c.AgentEndpoint == "" {
			errs = append(errs, errors.New("http classifier requires agent_endpoint"))
		}
	case ClassifierLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown classifier %q", c.Classifier))
	}
	switch c.MemoryBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown memory backend %q", c.MemoryBackend))
	}
	switch c.Submitter {
	case SubmitterLog, SubmitterSQLite:
	case SubmitterPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("postgres submitter requires database_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown submitter %q", c.Submitter))
	}
	return errors.Join(errs...)
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
