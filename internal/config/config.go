package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID     string
	StorageBucket string
	Port          string
	LogLevel      string
	MapCuratorUID string
}

func New() *Config {
	// .env is a local-dev convenience; deployed environments set real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &Config{
		ProjectID:     os.Getenv("PROJECTID"),
		StorageBucket: os.Getenv("STORAGEBUCKET"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOGLEVEL", "info"),
		MapCuratorUID: os.Getenv("MAPCURATORUID"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
