package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	LogLevel     string
	ProjectID    string
	Region       string
	VertexModel  string
	GeminiAPIKey string
	GeminiModel  string
}

func New() *Config {
	// Local runs read a .env file; deployed environments set real env vars.
	godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DB_URL"),
		LogLevel:     os.Getenv("LOGLEVEL"),
		ProjectID:    os.Getenv("PROJECTID"),
		Region:       os.Getenv("REGION"),
		VertexModel:  getEnv("VERTEXMODEL", "gemini-2.0-flash"),
		GeminiAPIKey: os.Getenv("GEMINIAPIKEY"),
		GeminiModel:  getEnv("GEMINIMODEL", "gemini-2.0-flash"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
