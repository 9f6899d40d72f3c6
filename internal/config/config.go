package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort string

	// Provider credentials and endpoints.
	NomicAPIKey       string // ATLAS_API_KEY
	PineconeAPIKey    string
	PineconeIndexName string
	PineconeIndexHost string // data-plane host for the index, e.g. https://portfolio219-rag-xxxx.svc.pinecone.io
	GroqAPIKey        string

	// Model identifiers.
	EmbeddingModel  string
	GenerationModel string

	// Admin token secret for the document-upsert endpoint.
	AdminJWTSecret string

	// Persona configuration file for the RAG chat.
	PersonaPath string

	// CORS origins allowed to call the API.
	AllowedOrigins []string

	// Pipeline tunables.
	TopK               int
	EmbedBatchSize     int
	MaxHistoryMessages int
	MaxMessageLength   int
	MaxQueryLength     int
	MinQueryLength     int
	GenerationTimeout  time.Duration
	QueryTimeout       time.Duration
	StatusCacheTTL     time.Duration

	// Rate limiting (fixed window, per client).
	RateLimitMaxMessages int
	RateLimitWindow      time.Duration
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load() // Loads .env from the current directory or parent dirs
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")

	// Required provider credentials. Queries cannot proceed without these, so
	// fail at startup rather than on the first request.
	nomicKey := getEnv("ATLAS_API_KEY", "")
	if nomicKey == "" {
		log.Fatal("FATAL: ATLAS_API_KEY environment variable is not set.")
	}
	pineconeKey := getEnv("PINECONE_API_KEY", "")
	if pineconeKey == "" {
		log.Fatal("FATAL: PINECONE_API_KEY environment variable is not set.")
	}
	pineconeHost := getEnv("PINECONE_INDEX_HOST", "")
	if pineconeHost == "" {
		log.Fatal("FATAL: PINECONE_INDEX_HOST environment variable is not set.")
	}
	groqKey := getEnv("GROQ_API_KEY", "")
	if groqKey == "" {
		log.Fatal("FATAL: GROQ_API_KEY environment variable is not set.")
	}
	adminSecret := getEnv("ADMIN_JWT_SECRET", "")
	if adminSecret == "" {
		log.Fatal("FATAL: ADMIN_JWT_SECRET environment variable is not set.")
	}

	cfg := &Config{
		HTTPPort:          port,
		NomicAPIKey:       nomicKey,
		PineconeAPIKey:    pineconeKey,
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "portfolio219-rag"),
		PineconeIndexHost: pineconeHost,
		GroqAPIKey:        groqKey,
		AdminJWTSecret:    adminSecret,

		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "nomic-embed-text-v1.5"),
		GenerationModel: getEnv("GENERATION_MODEL", "llama3-8b-8192"),
		PersonaPath:     getEnv("PERSONA_PATH", "persona.json"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,https://*.vercel.app"), ","),

		TopK:               getEnvInt("RAG_TOP_K", 4),
		EmbedBatchSize:     getEnvInt("EMBED_BATCH_SIZE", 100),
		MaxHistoryMessages: getEnvInt("MAX_HISTORY_MESSAGES", 20),
		MaxMessageLength:   getEnvInt("MAX_MESSAGE_LENGTH", 4000),
		MaxQueryLength:     getEnvInt("MAX_QUERY_LENGTH", 1000),
		MinQueryLength:     getEnvInt("MIN_QUERY_LENGTH", 3),
		GenerationTimeout:  getEnvDurationMs("GENERATION_TIMEOUT_MS", 15000),
		QueryTimeout:       getEnvDurationMs("QUERY_TIMEOUT_MS", 5000),
		StatusCacheTTL:     getEnvDurationMs("STATUS_CACHE_TTL_MS", 30000),

		RateLimitMaxMessages: getEnvInt("RATE_LIMIT_MAX_MESSAGES", 10),
		RateLimitWindow:      time.Duration(getEnvInt("RATE_LIMIT_WINDOW_HOURS", 5)) * time.Hour,
	}

	log.Printf("Loaded config: Port=%s, Index=%s, EmbeddingModel=%s, GenerationModel=%s, TopK=%d, RateLimit=%d/%s",
		cfg.HTTPPort, cfg.PineconeIndexName, cfg.EmbeddingModel, cfg.GenerationModel,
		cfg.TopK, cfg.RateLimitMaxMessages, cfg.RateLimitWindow)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, value, fallback, err)
		return fallback
	}
	return n
}

// getEnvDurationMs retrieves a millisecond environment variable as a duration.
func getEnvDurationMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
