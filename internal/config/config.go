package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	LogLevel  string
	LogFormat string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OllamaURL     string
	OllamaModel   string

	ChunkSize        int
	MaxTokens        int
	Temperature      float64
	StructuredOutput bool

	RetryMaxAttempts int
	RetryDelay       time.Duration
	BreakerEnabled   bool
	RateLimitRPS     float64

	MatchStrategy     string
	MatchThreshold    float64
	LookupKeyLength   int
	FolderNameLength  int
	FilenameMaxLength int
	PathMaxLength     int
	CollisionPolicy   string
	ExcerptLength     int
	LogFilename       string

	QueueSize   int
	FileTimeout time.Duration

	MetricsAddr string
	ConfigFile  string
}

// Load reads configuration from the environment. When CATALOG_CONFIG_FILE
// names a YAML file its values replace the built-in defaults; environment
// variables still take precedence.
func Load() (Config, error) {
	env := source{file: map[string]string{}}
	configFile := os.Getenv("CATALOG_CONFIG_FILE")
	if configFile != "" {
		values, err := readFile(configFile)
		if err != nil {
			return Config{}, err
		}
		env.file = values
	}

	return Config{
		LogLevel:  env.str("LOG_LEVEL", "info"),
		LogFormat: env.str("LOG_FORMAT", "json"),

		LLMProvider:   strings.ToLower(env.str("CATALOG_LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  env.str("OPENAI_API_KEY", ""),
		OpenAIBaseURL: env.str("OPENAI_BASE_URL", ""),
		OpenAIModel:   env.str("OPENAI_MODEL", "gpt-4"),
		OllamaURL:     env.str("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   env.str("OLLAMA_MODEL", "llama3.1:8b"),

		ChunkSize:        env.integer("CATALOG_CHUNK_SIZE", 4096),
		MaxTokens:        env.integer("CATALOG_MAX_TOKENS", 500),
		Temperature:      env.number("CATALOG_TEMPERATURE", 0.5),
		StructuredOutput: env.flag("CATALOG_STRUCTURED_OUTPUT", false),

		RetryMaxAttempts: env.integer("CATALOG_RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:       env.duration("CATALOG_RETRY_DELAY", 5*time.Second),
		BreakerEnabled:   env.flag("CATALOG_BREAKER_ENABLED", false),
		RateLimitRPS:     env.number("CATALOG_RATE_LIMIT_RPS", 0),

		MatchStrategy:     strings.ToLower(env.str("CATALOG_MATCH_STRATEGY", "substring")),
		MatchThreshold:    env.number("CATALOG_MATCH_THRESHOLD", 0.6),
		LookupKeyLength:   env.integer("CATALOG_LOOKUP_KEY_LENGTH", 30),
		FolderNameLength:  env.integer("CATALOG_FOLDER_NAME_LENGTH", 50),
		FilenameMaxLength: env.integer("CATALOG_FILENAME_MAX_LENGTH", 100),
		PathMaxLength:     env.integer("CATALOG_PATH_MAX_LENGTH", 260),
		CollisionPolicy:   strings.ToLower(env.str("CATALOG_COLLISION_POLICY", "overwrite")),
		ExcerptLength:     env.integer("CATALOG_EXCERPT_LENGTH", 1000),
		LogFilename:       env.str("CATALOG_LOG_FILENAME", "all_descriptions.txt"),

		QueueSize:   env.integer("CATALOG_QUEUE_SIZE", 16),
		FileTimeout: env.duration("CATALOG_FILE_TIMEOUT", 5*time.Minute),

		MetricsAddr: env.str("CATALOG_METRICS_ADDR", ""),
		ConfigFile:  configFile,
	}, nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("config: OPENAI_API_KEY is required for provider %q", ProviderOpenAI)
		}
	case ProviderOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("config: OLLAMA_URL is required for provider %q", ProviderOllama)
		}
	default:
		return fmt.Errorf("config: unknown CATALOG_LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.MatchStrategy != "substring" && c.MatchStrategy != "similarity" {
		return fmt.Errorf("config: unknown CATALOG_MATCH_STRATEGY %q", c.MatchStrategy)
	}
	if c.CollisionPolicy != "overwrite" && c.CollisionPolicy != "rename" {
		return fmt.Errorf("config: unknown CATALOG_COLLISION_POLICY %q", c.CollisionPolicy)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("config: CATALOG_MATCH_THRESHOLD must be in (0, 1], got %v", c.MatchThreshold)
	}
	return nil
}

// fileKey maps an env key to its YAML key: CATALOG_CHUNK_SIZE -> chunk_size.
func fileKey(envKey string) string {
	return strings.ToLower(strings.TrimPrefix(envKey, "CATALOG_"))
}

func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var parsed map[string]any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	values := make(map[string]string, len(parsed))
	for key, value := range parsed {
		if value == nil {
			continue
		}
		values[strings.ToLower(key)] = fmt.Sprint(value)
	}
	return values, nil
}

type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[fileKey(key)]
}

func (s source) str(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) integer(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) number(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) flag(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) duration(key string, fallback time.Duration) time.Duration {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
