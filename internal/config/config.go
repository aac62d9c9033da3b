package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Keys        APIKeys
	Ai          AIConfig
	Recognition RecognitionConfig
	Session     SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelSampleRatio    float64
}

type APIKeys struct {
	Anthropic   string
	HuggingFace string
}

type AIConfig struct {
	LLMProvider      string // "anthropic", "ollama" or "huggingface"
	LLMModel         string
	LLMBaseURL       string
	AnthropicVersion string
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration
	OllamaBaseURL    string
}

type RecognitionConfig struct {
	Provider           string // "device" or "vision"
	Model              string
	Debounce           time.Duration
	Level              string // "fast" or "accurate"
	Languages          []string
	MinimumTextHeight  float64
	LanguageCorrection bool
	CustomWords        []string
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OtelSampleRatio:    getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
		Keys: APIKeys{
			Anthropic:   getEnv("ANTHROPIC_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "anthropic"),
			LLMModel:         getEnv("LLM_MODEL", "claude-3-haiku-20240307"),
			LLMBaseURL:       getEnv("LLM_BASE_URL", ""),
			AnthropicVersion: getEnv("ANTHROPIC_VERSION", "2023-06-01"),
			MaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 1000),
			Temperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			Timeout:          getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Recognition: RecognitionConfig{
			Provider:           getEnv("RECOGNITION_PROVIDER", "device"),
			Model:              getEnv("RECOGNITION_MODEL", "claude-3-haiku-20240307"),
			Debounce:           getEnvAsDuration("RECOGNITION_DEBOUNCE", 500*time.Millisecond),
			Level:              getEnv("RECOGNITION_LEVEL", "accurate"),
			Languages:          getEnvAsList("RECOGNITION_LANGUAGES", []string{"en-US"}),
			MinimumTextHeight:  getEnvAsFloat("RECOGNITION_MIN_TEXT_HEIGHT", 0.1),
			LanguageCorrection: getEnvAsBool("RECOGNITION_LANGUAGE_CORRECTION", true),
			CustomWords:        getEnvAsList("RECOGNITION_CUSTOM_WORDS", []string{"Riddle", "Tom", "Hogwarts", "Chamber", "Secrets"}),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate reports every setting the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Ai.LLMProvider {
	case "anthropic", "":
		if !strings.HasPrefix(c.Keys.Anthropic, "sk-ant-") {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY must start with sk-ant-"))
		}
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			errs = append(errs, errors.New("HUGGINGFACE_API_KEY is required for the huggingface provider"))
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.Ai.LLMProvider))
	}

	switch c.Recognition.Provider {
	case "device":
	case "vision":
		if c.Keys.Anthropic == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for vision recognition"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported RECOGNITION_PROVIDER %q", c.Recognition.Provider))
	}

	if c.Recognition.Level != "fast" && c.Recognition.Level != "accurate" {
		errs = append(errs, fmt.Errorf("RECOGNITION_LEVEL must be fast or accurate, got %q", c.Recognition.Level))
	}
	if c.Ai.MaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if c.Ai.Temperature < 0 || c.Ai.Temperature > 1 {
		errs = append(errs, errors.New("LLM_TEMPERATURE must be within [0, 1]"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
