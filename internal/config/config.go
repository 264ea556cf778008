package config

import "os"

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	// Invoice Issuer (hosted payment pages).
	InvoiceAPIURL       string
	InvoiceSecretKey    string
	InvoiceWebhookToken string

	// WhatsApp gateway.
	NotifyAPIURL string
	NotifyAPIKey string

	// Base URL used to build payment redirect targets. When empty the
	// order handler derives it from the incoming request.
	PublicBaseURL string

	// Optional; when empty the webhook processed-event log is disabled.
	RedisAddr string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr:                getenv("APP_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		InvoiceAPIURL:       getenv("INVOICE_API_URL", "https://api.xendit.co/v2/invoices"),
		InvoiceSecretKey:    os.Getenv("INVOICE_SECRET_KEY"),
		InvoiceWebhookToken: os.Getenv("INVOICE_WEBHOOK_TOKEN"),
		NotifyAPIURL:        getenv("NOTIFY_API_URL", "https://api.fonnte.com/send"),
		NotifyAPIKey:        os.Getenv("NOTIFY_API_KEY"),
		PublicBaseURL:       os.Getenv("PUBLIC_BASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
