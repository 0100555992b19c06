package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	ProviderURL     string
	ProviderAPIKey  string
	ProviderModel   string
	ProviderTimeout time.Duration
	MaxRetries      int
	BatchSize       int
	RateLimitPerMin int
	Temperature     float64
	MaxTokens       int

	DefaultLanguage  string
	EnabledLanguages []string
	QualityThreshold float64

	EligibilityMinLength     int
	EligibilityMaxDigitRatio float64

	// TranslatableFields maps a content-type identifier to the field names
	// watched by the trigger layer, parsed from
	// "ads.ad:title|description,users.profile:bio" style input.
	TranslatableFields map[string][]string

	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	RetrySweepInterval time.Duration

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	APIRateLimitPerMin int
	CORSOrigins        []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		ProviderURL:     getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		ProviderAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		ProviderModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		ProviderTimeout: time.Second * time.Duration(getEnvInt("DEEPSEEK_TIMEOUT_SECONDS", 30)),
		MaxRetries:      getEnvInt("DEEPSEEK_MAX_RETRIES", 3),
		BatchSize:       getEnvInt("DEEPSEEK_BATCH_SIZE", 5),
		RateLimitPerMin: getEnvInt("DEEPSEEK_RATE_LIMIT_PER_MINUTE", 60),
		Temperature:     getEnvFloat("DEEPSEEK_TEMPERATURE", 0.1),
		MaxTokens:       getEnvInt("DEEPSEEK_MAX_TOKENS", 4000),

		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "fr"),
		EnabledLanguages: getEnvList("ENABLED_LANGUAGES", "fr,en,ar,es,de,it,pt,ru,zh,tr,nl"),
		QualityThreshold: getEnvFloat("QUALITY_THRESHOLD", 0.7),

		EligibilityMinLength:     getEnvInt("ELIGIBILITY_MIN_LENGTH", 3),
		EligibilityMaxDigitRatio: getEnvFloat("ELIGIBILITY_MAX_DIGIT_RATIO", 0.7),

		TranslatableFields: parseFieldTable(os.Getenv("TRANSLATABLE_FIELDS")),

		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
		RetrySweepInterval: time.Minute * time.Duration(getEnvInt("RETRY_SWEEP_INTERVAL_MINUTES", 120)),

		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		APIRateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSOrigins:        getEnvList("CORS_ORIGINS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFieldTable turns "type:field1|field2,type2:field" into the static
// translatable-field table. Malformed segments are skipped.
func parseFieldTable(raw string) map[string][]string {
	table := make(map[string][]string)
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.SplitN(segment, ":", 2)
		if len(parts) != 2 {
			continue
		}
		contentType := strings.TrimSpace(parts[0])
		var fields []string
		for _, f := range strings.Split(parts[1], "|") {
			f = strings.TrimSpace(f)
			if f != "" {
				fields = append(fields, f)
			}
		}
		if contentType != "" && len(fields) > 0 {
			table[contentType] = fields
		}
	}
	return table
}
