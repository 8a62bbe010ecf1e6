package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally via a .env file) with sensible defaults.
type Config struct {
	// Logging
	LogLevel string
	LogPath  string

	// Which generation backend to use by default:
	// anthropic, openai, openai-tools, local, keyword
	Backend string

	// Anthropic (tool-calling backend)
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// OpenAI (single-shot and tool-calling backends)
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Prompt construction
	MaxPromptTracks   int // Cap for the single-shot prompt enumeration
	LocalPromptTracks int // Smaller cap for local models with tight context

	// Local model
	LocalModelPath   string
	LocalContextSize int
	LocalThreads     int
	LocalMaxTokens   int
	Temperature      float64

	// Keyword fallback backend
	KeywordMinScore   float64
	KeywordMaxResults int

	// Library source: path to a JSON manifest, or "mysql" to load from the DB
	LibraryManifest string
	LibrarySource   string

	// MySQL (track import + playlist history; optional)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis (playlist result cache; optional)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// HTTP server
	ServerAddr string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),

		Backend: getEnv("VIBELIST_BACKEND", "anthropic"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),

		MaxPromptTracks:   getEnvInt("MAX_PROMPT_TRACKS", 2000),
		LocalPromptTracks: getEnvInt("LOCAL_PROMPT_TRACKS", 50),

		LocalModelPath:   getEnv("LOCAL_MODEL_PATH", ""),
		LocalContextSize: getEnvInt("LOCAL_CONTEXT_SIZE", 2048),
		LocalThreads:     getEnvInt("LOCAL_THREADS", 4),
		LocalMaxTokens:   getEnvInt("LOCAL_MAX_TOKENS", 1024),
		Temperature:      getEnvFloat("TEMPERATURE", 0.7),

		KeywordMinScore:   getEnvFloat("KEYWORD_MIN_SCORE", 0),
		KeywordMaxResults: getEnvInt("KEYWORD_MAX_RESULTS", 50),

		LibraryManifest: getEnv("LIBRARY_MANIFEST", "library.json"),
		LibrarySource:   getEnv("LIBRARY_SOURCE", "manifest"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // No hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "vibelist"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
	}
}
