package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// chat client
	APIBaseURL     string
	RequestTimeout time.Duration
	RecordErrors   bool
	Theme          string
	Markdown       bool
	LogFile        string
	LogLevel       string

	// server
	ServerAddr            string
	DBDriver              string
	DBDSN                 string
	ChatContextWindowSize int
	RateLimitPerMinute    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	AIProvider        string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Real environment variables win over .env.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			// app:apppass@tcp(127.0.0.1:3306)/bundle_chat?charset=utf8mb4&parseTime=true&loc=Local
			dsn = "app:apppass@tcp(127.0.0.1:3306)/bundle_chat?charset=utf8mb4&parseTime=true&loc=Local"
		default:
			dsn = "file::memory:?cache=shared"
		}
	}

	theme := strings.ToLower(getEnv("CHAT_THEME", "dark"))
	if theme != "light" {
		theme = "dark"
	}

	return Config{
		APIBaseURL:     getEnv("CHAT_API_BASE_URL", "http://localhost:8000/api/v1"),
		RequestTimeout: getEnvDuration("CHAT_REQUEST_TIMEOUT", 0),
		RecordErrors:   getEnvBool("CHAT_RECORD_ERRORS", true),
		Theme:          theme,
		Markdown:       getEnvBool("CHAT_MARKDOWN", true),
		LogFile:        getEnv("CHAT_LOG_FILE", "chat.log"),
		LogLevel:       getEnv("CHAT_LOG_LEVEL", "info"),

		ServerAddr:            getEnv("SERVER_ADDR", ":8000"),
		DBDriver:              driver,
		DBDSN:                 dsn,
		ChatContextWindowSize: getEnvInt("CHAT_CONTEXT_WINDOW_SIZE", 20),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AIProvider:        strings.ToLower(getEnv("AI_PROVIDER", "ollama")),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3:latest"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("30s") and bare seconds ("30").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
