package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings recognized by the
// system.
type Config struct {
	Port string

	GeminiAPIKey string

	StorageType     string
	S3Bucket        string
	S3Region        string
	AWSAccessKey    string
	AWSSecretKey    string
	LocalStoragePath string

	PostgresDSN string

	PDFSourceDir string

	ChatStorage string // "inmemory" | "remote"

	AuditLogDir string

	PIIConfidenceThreshold float64
	InputMinLength         int
	InputMaxLength         int
	FileUploadLimitBytes   int64

	EmbeddingDimension int
	MaxChunkSize       int
}

// Load reads the process environment, optionally after loading a .env
// file, via godotenv.Load() + os.Getenv rather than a general-purpose
// config framework.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../../.env")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		StorageType:      getEnv("STORAGE_TYPE", "local"),
		S3Bucket:         os.Getenv("AWS_S3_BUCKET"),
		S3Region:         getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
		LocalStoragePath: getEnv("STORAGE_LOCAL_PATH", "./storage/files"),

		PostgresDSN: os.Getenv("DATABASE_URL"),

		PDFSourceDir: getEnv("PDF_SOURCE_DIR", "./corpus"),

		ChatStorage: getEnv("CHAT_STORAGE", "inmemory"),

		AuditLogDir: getEnv("AUDIT_LOG_DIR", "./logs"),

		PIIConfidenceThreshold: getEnvFloat("PII_CONFIDENCE_THRESHOLD", 0.7),
		InputMinLength:         getEnvInt("INPUT_MIN_LENGTH", 10),
		InputMaxLength:         getEnvInt("INPUT_MAX_LENGTH", 50_000),
		FileUploadLimitBytes:   int64(getEnvInt("FILE_UPLOAD_LIMIT_BYTES", 10*1024*1024)),

		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 768),
		MaxChunkSize:       getEnvInt("MAX_CHUNK_SIZE", 2000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
