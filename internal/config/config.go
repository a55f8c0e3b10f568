package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Graph    GraphConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type GraphConfig struct {
	URI          string
	Username     string
	Password     string
	Database     string
	MaxPoolSize  int
	QueryTimeout time.Duration
}

type DatabaseConfig struct {
	Connection string // empty disables transcript persistence
}

type APIKeys struct {
	GoogleGemini    string
	TranscriptTopic string
}

type AIConfig struct {
	LLMProvider    string // "gemini" or "ollama"
	LLMModel       string
	OllamaBaseURL  string
	TopK           int
	DailyChatLimit int // 0 disables limiting
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Graph: GraphConfig{
			URI:          getEnv("NEO4J_URI", ""),
			Username:     getEnv("NEO4J_USER", ""),
			Password:     getEnv("NEO4J_PASSWORD", ""),
			Database:     getEnv("NEO4J_DATABASE", ""),
			MaxPoolSize:  getEnvAsInt("NEO4J_MAX_POOL_SIZE", 50),
			QueryTimeout: time.Duration(getEnvAsInt("GRAPH_QUERY_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:    getEnv("GOOGLE_API_KEY", ""),
			TranscriptTopic: getEnv("CHAT_TRANSCRIPT_TOPIC_NAME", "CHAT_TRANSCRIPT"),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TopK:           getEnvAsInt("RETRIEVER_TOP_K", 10),
			DailyChatLimit: getEnvAsInt("DAILY_CHAT_LIMIT", 0),
		},
	}
}

// Validate enforces the startup contract: missing graph credentials or a
// missing model key must prevent the service from becoming ready.
func (c *Config) Validate() error {
	if c.Graph.URI == "" || c.Graph.Username == "" || c.Graph.Password == "" {
		return errors.New("config: NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD are required")
	}
	if c.Ai.LLMProvider == "gemini" && c.Keys.GoogleGemini == "" {
		return errors.New("config: GOOGLE_API_KEY is required for the gemini provider")
	}
	if c.Ai.TopK <= 0 {
		return errors.New("config: RETRIEVER_TOP_K must be positive")
	}
	return nil
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
