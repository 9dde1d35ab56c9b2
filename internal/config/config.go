package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv     string
	AppPort    string
	CORSOrigin string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	PostalCodeBaseURL string

	StoreName      string
	StoreWhatsApp  string
	StoreTimezone  *time.Location
	DeliveryFee    decimal.Decimal
	CashbackRate   decimal.Decimal
	JWTSecret      string
	AdminPassHash  string
	InternalAPIKey string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		AppPort:           getEnv("APP_PORT", "8080"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "order.placed"),
		PostalCodeBaseURL: getEnv("POSTAL_CODE_API_URL", "https://viacep.com.br/ws"),
		StoreName:         getEnv("STORE_NAME", "Pizzaria"),
		StoreWhatsApp:     os.Getenv("STORE_WHATSAPP"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPassHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		InternalAPIKey:    os.Getenv("INTERNAL_SERVICE_KEY"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.CartTTL, err = time.ParseDuration(getEnv("CART_TTL", "72h")); err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}
	if cfg.DeliveryFee, err = decimal.NewFromString(getEnv("DELIVERY_FEE", "0")); err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: %w", err)
	}
	if cfg.CashbackRate, err = decimal.NewFromString(getEnv("CASHBACK_RATE_PERCENT", "0")); err != nil {
		return nil, fmt.Errorf("invalid CASHBACK_RATE_PERCENT: %w", err)
	}
	if cfg.StoreTimezone, err = time.LoadLocation(getEnv("STORE_TIMEZONE", "America/Sao_Paulo")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE: %w", err)
	}

	if cfg.DeliveryFee.IsNegative() {
		return nil, errors.New("DELIVERY_FEE must not be negative")
	}
	if cfg.DBHost == "" {
		return nil, errors.New("DB_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
