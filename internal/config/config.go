package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerline/payment-engine/internal/engine"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type KafkaConfig struct {
	Enabled          bool
	BootstrapServers string
	EventsTopic      string
	RequestsTopic    string
	ConsumerGroup    string
}

type Config struct {
	Kafka          KafkaConfig
	Engine         engine.Config
	WebhookTimeout time.Duration
	OutboxInterval time.Duration
	MetricsAddr    string
}

func Load() *Config {
	return &Config{
		Kafka: KafkaConfig{
			Enabled:          getEnv("KAFKA_ENABLED", "true") == "true",
			BootstrapServers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost"),
			EventsTopic:      getEnv("KAFKA_EVENTS_TOPIC", "payment.events"),
			RequestsTopic:    getEnv("KAFKA_REQUESTS_TOPIC", "payment.charge.requested"),
			ConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "payment-engine"),
		},
		Engine:         loadEngineConfig(),
		WebhookTimeout: getDurationEnv("WEBHOOK_TIMEOUT", 5*time.Second),
		OutboxInterval: getDurationEnv("OUTBOX_INTERVAL", 2*time.Second),
		MetricsAddr:    getEnv("METRICS_ADDR", ":2112"),
	}
}

func loadEngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.FraudThreshold = getDecimalEnv("FRAUD_AMOUNT_THRESHOLD", cfg.FraudThreshold)
	cfg.MinAmount = getDecimalEnv("MIN_PROCESSABLE_AMOUNT", cfg.MinAmount)
	cfg.SuccessProbability = getFloatEnv("SUCCESS_PROBABILITY", cfg.SuccessProbability)
	cfg.MaxRetryCount = getIntEnv("MAX_RETRY_COUNT", cfg.MaxRetryCount)

	// Optional rule; MAINTENANCE_WINDOW="45-50" fails processing during
	// minutes 45..49 of every hour.
	if w := os.Getenv("MAINTENANCE_WINDOW"); w != "" {
		cfg.Maintenance = parseMaintenanceWindow(w)
		if cfg.Maintenance == nil {
			logrus.Warnf("ignoring invalid MAINTENANCE_WINDOW %q", w)
		}
	}
	return cfg
}

// parseMaintenanceWindow accepts "start-end" minutes of the hour, half-open.
// The window must fit the hour (start 0..59, end up to 60) and be non-empty;
// anything else disables the rule.
func parseMaintenanceWindow(w string) *engine.MaintenanceWindow {
	parts := strings.SplitN(w, "-", 2)
	if len(parts) != 2 {
		return nil
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start < 0 || start > 59 || end <= start || end > 60 {
		return nil
	}
	return &engine.MaintenanceWindow{StartMinute: start, EndMinute: end}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDecimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
