// Package config loads all runtime configuration from environment
// variables, with a .env file for development.
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL     string
	VisionAPIKey string

	// IncludeThreshold is the relevance scorer's inclusion threshold.
	// Deliberately low by default: downstream stages can still exclude.
	IncludeThreshold float64

	ScanIntervalHours int
	MaxConcurrency    int
	RateLimitMs       int
	MaxRetries        int

	CSVOutputPath string
	ChromeBin     string
	EbayAppToken  string

	KeywordsPath      string
	SyntheticListings bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "wildguard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "wildguard123"),
		PostgresDB:       getEnv("POSTGRES_DB", "wildguard_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		VisionAPIKey: getEnv("VISION_API_KEY", ""),

		IncludeThreshold: getEnvFloat("INCLUDE_THRESHOLD", 0.2),

		ScanIntervalHours: getEnvInt("SCAN_INTERVAL_HOURS", 6),
		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:       getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		EbayAppToken:  getEnv("EBAY_APP_TOKEN", ""),

		KeywordsPath:      getEnv("KEYWORDS_PATH", ""),
		SyntheticListings: getEnv("SYNTHETIC_LISTINGS", "") == "true",
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// defaultKeywords is a compact starter set; production deployments point
// KEYWORDS_PATH at the full curated list (one keyword per line).
var defaultKeywords = []string{
	"ivory carving", "rhino horn", "tiger bone", "pangolin scale",
	"elephant tusk", "bear bile", "live parrot", "exotic reptile",
	"taxidermy mount", "rare specimen", "tortoiseshell", "shark fin",
}

// Keywords returns the search keyword list: the file at KeywordsPath when
// set and readable, otherwise the embedded defaults.
func (c *Config) Keywords() []string {
	if c.KeywordsPath == "" {
		return defaultKeywords
	}

	f, err := os.Open(c.KeywordsPath)
	if err != nil {
		log.Printf("[config] Cannot open keywords file %q: %v — using defaults", c.KeywordsPath, err)
		return defaultKeywords
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if len(keywords) == 0 {
		return defaultKeywords
	}
	return keywords
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
