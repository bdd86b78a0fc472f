package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Email    EmailConfig
	Mailer   MailerConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	FromName     string
}

type MailerConfig struct {
	Interval     time.Duration
	BatchSize    int
	ReclaimAfter time.Duration
}

type LimitsConfig struct {
	BookingsPerWindow int
	Window            time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     stringEnv("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  stringEnv("POSTGRES_SSLMODE", "disable"),
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     stringEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	// Delivery is disabled when no API key is configured; the outbox still
	// accumulates rows.
	emailCfg := EmailConfig{
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		FromEmail:    stringEnv("EMAIL_FROM", "bookings@clubtix.local"),
		FromName:     stringEnv("EMAIL_FROM_NAME", "ClubTix"),
	}

	mailerInterval, err := durationEnv("MAILER_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	mailerBatch, err := intEnv("MAILER_BATCH_SIZE", 50)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	mailerReclaim, err := durationEnv("MAILER_RECLAIM_AFTER", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	mailerCfg := MailerConfig{
		Interval:     mailerInterval,
		BatchSize:    mailerBatch,
		ReclaimAfter: mailerReclaim,
	}

	bookingsPerWindow, err := intEnv("RATE_LIMIT_BOOKINGS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	rateWindow, err := durationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	limitsCfg := LimitsConfig{
		BookingsPerWindow: bookingsPerWindow,
		Window:            rateWindow,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Email:    emailCfg,
		Mailer:   mailerCfg,
		Limits:   limitsCfg,
	}, nil
}

func stringEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
