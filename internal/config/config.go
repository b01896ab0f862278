package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/voxeterna/blog-api/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ACTIVATION_SECRET string
	SESSION_SECRET    string
	RESET_SECRET      string

	GOOGLE_CLIENT_ID string

	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USER     string
	SMTP_PASSWORD string
	EMAIL_FROM    string
	EMAIL_TO      string

	CLIENT_URL string
	APP_NAME   string

	KAFKA_ADDRESS string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string

	LOG_LEVEL string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ACTIVATION_SECRET: os.Getenv("JWT_ACCOUNT_ACTIVATION"),
		SESSION_SECRET:    os.Getenv("JWT_SECRET"),
		RESET_SECRET:      os.Getenv("JWT_RESET_PASSWORD"),

		GOOGLE_CLIENT_ID: os.Getenv("GOOGLE_CLIENT_ID"),

		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     envIntDefault("SMTP_PORT", 587),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		EMAIL_FROM:    os.Getenv("EMAIL_FROM"),
		EMAIL_TO:      os.Getenv("EMAIL_TO"),

		CLIENT_URL: envDefault("CLIENT_URL", "http://localhost:3000"),
		APP_NAME:   envDefault("APP_NAME", "voxeterna"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),

		LOG_LEVEL: envDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

// MustValidate stops the process when a signing secret is missing. Each token
// purpose uses its own secret so a token minted for one purpose can never be
// replayed for another.
func (c *Config) MustValidate() {
	mustNonEmpty(c.ACTIVATION_SECRET, "JWT_ACCOUNT_ACTIVATION")
	mustNonEmpty(c.SESSION_SECRET, "JWT_SECRET")
	mustNonEmpty(c.RESET_SECRET, "JWT_RESET_PASSWORD")
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Blog{}, &models.Category{}, &models.Tag{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
