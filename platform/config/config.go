// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// RecordStoreConfig provides settings for the external record store.
type RecordStoreConfig interface {
	GetRecordStoreDriver() string
	GetRecordStoreURL() string
	GetRecordStoreAPIKey() string
	GetRecordStoreBaseID() string
	GetRecordStoreTimeout() time.Duration
	GetRecordStoreMaxRetries() int
	GetRecordStoreRateLimit() float64
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetOpsAlertEmail() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MinIOConfig provides settings for MinIO S3-compatible photo storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicURL() string
	GetMinioBucketItemPhotos() string
	IsMinIOEnabled() bool
}

// BillingConfig provides settings for the payment processor.
type BillingConfig interface {
	GetBillingAPIURL() string
	GetBillingAPIKey() string
	GetBillingPriceID(plan string) string
	GetDefaultSetupFeeCents() int64
	IsBillingEnabled() bool
}

// SchedulerConfig provides settings for the background task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EstimationConfig provides settings for the quote engine.
type EstimationConfig interface {
	GetPricingFile() string
}

// IdempotencyConfig provides settings for request idempotency keys.
type IdempotencyConfig interface {
	GetIdempotencyTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	AppBaseURL            string
	RecordStoreDriver     string
	RecordStoreURL        string
	RecordStoreAPIKey     string
	RecordStoreBaseID     string
	RecordStoreTimeout    time.Duration
	RecordStoreMaxRetries int
	RecordStoreRateLimit  float64
	EmailEnabled          bool
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
	OpsAlertEmail         string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinIOPublicURL        string
	MinioBucketItemPhotos string
	BillingAPIURL         string
	BillingAPIKey         string
	BillingPriceIDs       map[string]string
	DefaultSetupFeeCents  int64
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	PricingFile           string
	IdempotencyTTL        time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// RecordStoreConfig implementation
func (c *Config) GetRecordStoreDriver() string         { return c.RecordStoreDriver }
func (c *Config) GetRecordStoreURL() string            { return c.RecordStoreURL }
func (c *Config) GetRecordStoreAPIKey() string         { return c.RecordStoreAPIKey }
func (c *Config) GetRecordStoreBaseID() string         { return c.RecordStoreBaseID }
func (c *Config) GetRecordStoreTimeout() time.Duration { return c.RecordStoreTimeout }
func (c *Config) GetRecordStoreMaxRetries() int        { return c.RecordStoreMaxRetries }
func (c *Config) GetRecordStoreRateLimit() float64     { return c.RecordStoreRateLimit }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }
func (c *Config) GetOpsAlertEmail() string { return c.OpsAlertEmail }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64       { return c.MinIOMaxFileSize }
func (c *Config) GetMinIOPublicURL() string        { return c.MinIOPublicURL }
func (c *Config) GetMinioBucketItemPhotos() string { return c.MinioBucketItemPhotos }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// BillingConfig implementation
func (c *Config) GetBillingAPIURL() string       { return c.BillingAPIURL }
func (c *Config) GetBillingAPIKey() string       { return c.BillingAPIKey }
func (c *Config) GetDefaultSetupFeeCents() int64 { return c.DefaultSetupFeeCents }
func (c *Config) IsBillingEnabled() bool         { return c.BillingAPIKey != "" }
func (c *Config) GetBillingPriceID(plan string) string {
	return c.BillingPriceIDs[strings.ToLower(plan)]
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EstimationConfig implementation
func (c *Config) GetPricingFile() string { return c.PricingFile }

// IdempotencyConfig implementation
func (c *Config) GetIdempotencyTTL() time.Duration { return c.IdempotencyTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:            getEnv("APP_BASE_URL", "http://localhost:4200"),
		RecordStoreDriver:     strings.ToLower(getEnv("RECORD_STORE_DRIVER", "airtable")),
		RecordStoreURL:        getEnv("RECORD_STORE_URL", "https://api.airtable.com"),
		RecordStoreAPIKey:     getEnv("RECORD_STORE_API_KEY", ""),
		RecordStoreBaseID:     getEnv("RECORD_STORE_BASE_ID", ""),
		RecordStoreTimeout:    mustDuration(getEnv("RECORD_STORE_TIMEOUT", "10s")),
		RecordStoreMaxRetries: mustInt(getEnv("RECORD_STORE_MAX_RETRIES", "3")),
		RecordStoreRateLimit:  mustFloat(getEnv("RECORD_STORE_RATE_LIMIT", "5")),
		EmailEnabled:          emailEnabled && smtpHost != "",
		SMTPHost:              smtpHost,
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Storeroom"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
		OpsAlertEmail:         getEnv("OPS_ALERT_EMAIL", ""),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:      mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinIOPublicURL:        getEnv("MINIO_PUBLIC_URL", ""),
		MinioBucketItemPhotos: getEnv("MINIO_BUCKET_ITEM_PHOTOS", "item-photos"),
		BillingAPIURL:         getEnv("BILLING_API_URL", "https://api.stripe.com"),
		BillingAPIKey:         getEnv("BILLING_API_KEY", ""),
		BillingPriceIDs: map[string]string{
			"starter": getEnv("BILLING_PRICE_STARTER", ""),
			"medium":  getEnv("BILLING_PRICE_MEDIUM", ""),
			"family":  getEnv("BILLING_PRICE_FAMILY", ""),
		},
		DefaultSetupFeeCents: mustInt64(getEnv("SETUP_FEE_CENTS", "9900")),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		PricingFile:          getEnv("PRICING_FILE", ""),
		IdempotencyTTL:       mustDuration(getEnv("IDEMPOTENCY_TTL", "24h")),
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.RecordStoreDriver {
	case "airtable":
		if cfg.RecordStoreAPIKey == "" || cfg.RecordStoreBaseID == "" {
			return nil, fmt.Errorf("RECORD_STORE_API_KEY and RECORD_STORE_BASE_ID are required for the airtable driver")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unsupported RECORD_STORE_DRIVER %q", cfg.RecordStoreDriver)
	}
	if cfg.RecordStoreMaxRetries < 0 {
		return nil, fmt.Errorf("RECORD_STORE_MAX_RETRIES must not be negative")
	}
	if cfg.RecordStoreRateLimit <= 0 {
		return nil, fmt.Errorf("RECORD_STORE_RATE_LIMIT must be positive")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
