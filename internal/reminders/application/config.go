package application

import (
	"os"

	"gopkg.in/yaml.v3"

	leasing "rental-cloud/internal/leasing/domain"
)

// Config defines reminder batch configuration.
type Config struct {
	DailyAt    string `yaml:"daily_at"`
	Timezone   string `yaml:"timezone"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoadConfig loads config from yaml (REMINDER_CONFIG path) with env fallbacks.
func LoadConfig() (Config, error) {
	cfg := Config{
		WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}

	if path := os.Getenv("REMINDER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DailyAt == "" {
		cfg.DailyAt = getenvDefault("REMINDER_DAILY_AT", "08:00")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = getenvDefault("CIVIL_TIMEZONE", leasing.DefaultTimezone)
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("NOTIFY_WEBHOOK_URL")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
