package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBDriver   string
	DBDSN      string
	JWTSecret  string
	ValkeyAddr string
}

var Cfg *Config

func Load() {
	_ = godotenv.Load()

	Cfg = &Config{
		ServerAddr: ":" + getEnv("PORT", "8080"),
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBDSN:      getEnv("DB_DSN", "root:root@tcp(localhost:3306)/chatline?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:  getEnv("JWT_SECRET", "chatline-secret-key-change-in-production"),
		ValkeyAddr: getEnv("VALKEY_ADDR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
