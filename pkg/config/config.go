package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	FirebaseApiKey  string
	Environment     string
	SessionBuffer   int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		SessionBuffer:   getEnvAsInt("SESSION_EVENT_BUFFER", 64),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
