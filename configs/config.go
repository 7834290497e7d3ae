package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	APIBaseURL string
	StateDir   string
	SecretKey  string
	StubAddr   string
}

func LoadConfig() *Config {
	return &Config{
		APIBaseURL: getEnv("POSTFLOW_API_URL", "http://localhost:8000/api"),
		StateDir:   getEnv("POSTFLOW_STATE_DIR", defaultStateDir()),
		SecretKey:  getEnv("SECRET_KEY", "postflow-dev-secret-key-32bytes!"),
		StubAddr:   getEnv("STUB_ADDR", ":8000"),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postflow"
	}
	return filepath.Join(home, ".postflow")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
