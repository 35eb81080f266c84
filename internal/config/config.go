// config - источник загрузки конфигурации review-desk.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// В случаях 1-3 переменные окружения накладываются поверх значений из файла.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Backend  BackendConfig  `yaml:"backend"`
	Queue    QueueConfig    `yaml:"queue"`
	Decision DecisionConfig `yaml:"decision"`
	History  HistoryConfig  `yaml:"history"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// TimeoutConfig — таймауты локального API.
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request"  env:"REQUEST_TIMEOUT"  env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — локальный API для слоя отображения.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"5174"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MetricsConfig — отдельный HTTP для Prometheus.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50085"`
}

func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// BackendConfig — бэкенд с очередью сделок и историей сообщений.
type BackendConfig struct {
	BaseURL           string        `yaml:"base_url"           env:"BACKEND_BASE_URL"   env-default:"http://localhost:8000"`
	Timeout           time.Duration `yaml:"timeout"            env:"BACKEND_TIMEOUT"    env-default:"10s"`
	UserAgent         string        `yaml:"user_agent"         env:"BACKEND_USER_AGENT" env-default:"review-desk"`
	ThumbnailFallback string        `yaml:"thumbnail_fallback" env:"THUMBNAIL_FALLBACK" env-default:"https://tr.rbxcdn.com/42px-placeholder.png"`
}

// QueueConfig — буфер предзагрузки.
type QueueConfig struct {
	Capacity     int           `yaml:"capacity"      env:"QUEUE_CAPACITY"      env-default:"3"`
	PollInterval time.Duration `yaml:"poll_interval" env:"QUEUE_POLL_INTERVAL" env-default:"5s"`
}

// DecisionConfig — отправка решений.
type DecisionConfig struct {
	// Endpoint: "action" (POST /action) или "tag" (POST /tag/<filename> для accept).
	Endpoint string `yaml:"endpoint" env:"DECISION_ENDPOINT" env-default:"action"`
	// OnFailure: "alert" или "requeue".
	OnFailure string `yaml:"on_failure" env:"DECISION_ON_FAILURE" env-default:"alert"`
	// LockWhileDispatching — игнорировать ввод, пока решение в полёте.
	LockWhileDispatching bool `yaml:"lock_while_dispatching" env:"DECISION_LOCK" env-default:"false"`
}

// HistoryConfig — лента истории.
type HistoryConfig struct {
	PageSize   int `yaml:"page_size"   env:"HISTORY_PAGE_SIZE"   env-default:"50"`
	MinRecords int `yaml:"min_records" env:"HISTORY_MIN_RECORDS" env-default:"10"`
}

// AlertsConfig — доска ошибок оператора.
type AlertsConfig struct {
	Capacity int `yaml:"capacity" env:"ALERTS_CAPACITY" env-default:"100"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("env must be one of local, dev, prod")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL")
	}
	if c.Queue.Capacity < 1 || c.Queue.Capacity > 16 {
		return fmt.Errorf("queue.capacity must be in [1, 16]")
	}
	if c.Queue.PollInterval < 0 {
		return fmt.Errorf("queue.poll_interval must be >= 0")
	}
	switch c.Decision.Endpoint {
	case "action", "tag":
	default:
		return fmt.Errorf("decision.endpoint must be action or tag")
	}
	switch c.Decision.OnFailure {
	case "alert", "requeue":
	default:
		return fmt.Errorf("decision.on_failure must be alert or requeue")
	}
	if c.History.PageSize <= 0 {
		return fmt.Errorf("history.page_size must be > 0")
	}
	if c.History.MinRecords < 0 {
		return fmt.Errorf("history.min_records must be >= 0")
	}
	if c.Alerts.Capacity <= 0 {
		return fmt.Errorf("alerts.capacity must be > 0")
	}

	return nil
}
