package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	UploadDir     string
	DataDir       string
	TelegramToken string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":5000"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		DataDir:       getEnv("DATA_DIR", "database"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
