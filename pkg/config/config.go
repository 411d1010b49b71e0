package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Vector backend (Chroma Cloud)
	ChromaAPIKey   string
	ChromaTenant   string
	ChromaDatabase string

	// AI providers
	AIProvider    string
	GeminiApiKey  string
	OpenAIApiKey  string
	OllamaBaseURL string
	OllamaModel   string
	PromptsDir    string

	// Mail I/O
	UserEmail    string
	ImapServer   string
	ImapPort     int
	ImapPassword string
	SMTPHost     string
	SMTPPort     int
	SMTPPassword string

	// Inbound trigger (optional)
	GoogleProjectID    string
	PubSubSubscription string

	// Channel adapters
	SlackToken         string
	SlackUserID        string
	TelegramExportPath string
	TelegramUserID     string
	WhatsAppExportPath string
	WhatsAppName       string
	CalendarICSPath    string

	EncryptionKey string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres dbname=persona port=5432 sslmode=disable"),

		ChromaAPIKey:   getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:   getEnv("CHROMA_TENANT", ""),
		ChromaDatabase: getEnv("CHROMA_DATABASE", ""),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIApiKey:  getEnv("OPENAI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		PromptsDir:    getEnv("PROMPTS_DIR", "prompts"),

		UserEmail:    getEnv("USER_EMAIL", ""),
		ImapServer:   getEnv("IMAP_SERVER", ""),
		ImapPort:     getEnvInt("IMAP_PORT", 993),
		ImapPassword: getEnv("IMAP_PASSWORD", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		GoogleProjectID:    getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubSubscription: getEnv("PUBSUB_SUBSCRIPTION", "inbound-mail"),

		SlackToken:         getEnv("SLACK_TOKEN", ""),
		SlackUserID:        getEnv("SLACK_USER_ID", ""),
		TelegramExportPath: getEnv("TELEGRAM_EXPORT_PATH", ""),
		TelegramUserID:     getEnv("TELEGRAM_USER_ID", ""),
		WhatsAppExportPath: getEnv("WHATSAPP_EXPORT_PATH", ""),
		WhatsAppName:       getEnv("WHATSAPP_DISPLAY_NAME", ""),
		CalendarICSPath:    getEnv("CALENDAR_ICS_PATH", ""),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
