package postgres

import (
	"fmt"
	"os"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func NewPostgresConfig(fallbackDBName string) *PostgresConfig {
	var cfg PostgresConfig

	cfg.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Port = getEnv("POSTGRES_PORT", "5432")
	cfg.User = getEnv("POSTGRES_USER", "user")
	cfg.Password = getEnv("POSTGRES_PASSWORD", "pass")
	cfg.DBName = getEnv("POSTGRES_DATABASE", fallbackDBName)

	return &cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func GetConnString(cfg *PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
}
