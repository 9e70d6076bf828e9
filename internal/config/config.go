package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// WhatsApp Cloud API
	WebhookVerifyToken string
	WhatsAppAppSecret  string
	GraphAPIToken      string
	GraphAPIBaseURL    string
	BusinessPhone      string
	APIVersion         string
	GraphTimeoutSecs   int

	// Conversation sessions
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	// Assistant
	AssistantProvider         string
	AssistantFallbackProvider string
	OpenAIAPIKey              string
	OpenAIModel               string
	BedrockModelID            string
	GeminiAPIKey              string
	GeminiModel               string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Appointment ledger
	LedgerBackend         string
	SpreadsheetID         string
	SpreadsheetRange      string
	GoogleCredentialsFile string
	DatabaseURL           string

	// Webhook de-duplication
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	ProcessedTTL  time.Duration

	// Clinic notifications
	EmailProvider     string
	SendGridAPIKey    string
	NotifyFromEmail   string
	NotifyFromName    string
	ClinicNotifyEmail string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:  getEnv("WHATSAPP_APP_SECRET", ""),
		GraphAPIToken:      getEnv("GRAPH_API_TOKEN", ""),
		GraphAPIBaseURL:    getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		BusinessPhone:      getEnv("BUSINESS_PHONE", ""),
		APIVersion:         getEnv("API_VERSION", "v21.0"),
		GraphTimeoutSecs:   getEnvAsInt("GRAPH_API_TIMEOUT_SECONDS", 10),

		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		AssistantProvider:         lower(getEnv("ASSISTANT_PROVIDER", "openai")),
		AssistantFallbackProvider: lower(getEnv("ASSISTANT_FALLBACK_PROVIDER", "")),
		OpenAIAPIKey:              getEnv("CHATGPT_API_KEY", getEnv("OPENAI_API_KEY", "")),
		OpenAIModel:               getEnv("OPENAI_MODEL", "gpt-4o"),
		BedrockModelID:            getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:              getEnv("GEMINI_API_KEY", ""),
		GeminiModel:               getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LedgerBackend:         lower(getEnv("LEDGER_BACKEND", "sheets")),
		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		SpreadsheetRange:      getEnv("SPREADSHEET_RANGE", "Sheet1"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "src/credentials/credentials.json"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		ProcessedTTL:  getEnvAsDuration("PROCESSED_TTL", 24*time.Hour),

		EmailProvider:     lower(getEnv("EMAIL_PROVIDER", "none")),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail:   getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:    getEnv("NOTIFY_FROM_NAME", "MedPet"),
		ClinicNotifyEmail: getEnv("CLINIC_NOTIFY_EMAIL", ""),
	}
}

// GraphMessagesURL returns the Cloud API endpoint used for sends and read receipts.
func (c *Config) GraphMessagesURL() string {
	base := strings.TrimRight(c.GraphAPIBaseURL, "/")
	return base + "/" + c.APIVersion + "/" + c.BusinessPhone + "/messages"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func lower(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
