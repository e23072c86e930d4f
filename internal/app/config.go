package app

import (
	"os"
	"strings"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес публичного API.
	HTTPAddr string
	// MetricsAddr — адрес служебного HTTP: /metrics, /healthz, /livez.
	MetricsAddr string
	// PostgresDSN — строка подключения к PostgreSQL; пустая означает
	// in-memory хранилище (локальная разработка и тесты).
	PostgresDSN string
	// RedisAddr — адрес Redis для распределённых замков; пустой означает
	// in-process менеджер замков.
	RedisAddr string
	// KafkaBrokers — список брокеров для публикации событий заказов;
	// пустой отключает Kafka.
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые адреса для API и служебного HTTP.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения поверх значений
// по умолчанию.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ORDERFLOW_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ORDERFLOW_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ORDERFLOW_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("ORDERFLOW_REDIS_ADDR")); v != "" {
		cfg.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ORDERFLOW_KAFKA_BROKERS")); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	return cfg
}
