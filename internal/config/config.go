// Package config loads the suggester's configuration from a YAML file with
// environment variable overrides.
package config

import (
	"time"

	"github.com/suqly/category-suggester/internal/classifier"
	"github.com/suqly/category-suggester/internal/database"
	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/listener"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/storage"
)

// Default configuration values.
const (
	defaultServiceName     = "category-suggester"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultShutdownTimeout = 10 * time.Second
	defaultRateLimit       = 50
	defaultRateBurst       = 100
	defaultDBHost          = "localhost"
	defaultDBPort          = "5432"
	defaultDBUser          = "postgres"
	defaultDBName          = "suggester"
	defaultDBSSLMode       = "disable"
	defaultESURL           = "http://localhost:9200"
	defaultESMaxRetries    = 3
	defaultESTimeout       = 30 * time.Second
)

// Config holds all configuration for the suggester service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Database       DatabaseConfig       `yaml:"database"`
	Elasticsearch  ElasticsearchConfig  `yaml:"elasticsearch"`
	Listener       ListenerConfig       `yaml:"listener"`
	Classification ClassificationConfig `yaml:"classification"`
	Logging        logger.Config        `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"SUGGESTER_PORT" yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"      yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
}

// DatabaseConfig holds relational store configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     string `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// Connection converts to the database package's connection config.
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.Database,
		SSLMode:  d.SSLMode,
	}
}

// ElasticsearchConfig holds document store configuration.
type ElasticsearchConfig struct {
	URL        string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username   string        `env:"ELASTICSEARCH_USER"     yaml:"username"`
	Password   string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	Index      string        `yaml:"index"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ListenerConfig holds change listener configuration.
type ListenerConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	BackoffFloor   time.Duration `yaml:"backoff_floor"`
	BackoffCeiling time.Duration `yaml:"backoff_ceiling"`
	WaitInterval   time.Duration `yaml:"wait_interval"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// Runtime converts to the listener package's config.
func (l ListenerConfig) Runtime() listener.Config {
	return listener.Config{
		MaxRetries:     l.MaxRetries,
		BackoffFloor:   l.BackoffFloor,
		BackoffCeiling: l.BackoffCeiling,
		WaitInterval:   l.WaitInterval,
		ShutdownGrace:  l.ShutdownGrace,
	}
}

// ClassificationConfig holds classification settings. PublishKeywords and
// Prefixes are keyed by language code; when empty the built-in defaults are
// used.
type ClassificationConfig struct {
	BaseURL         string              `env:"SUGGESTER_BASE_URL" yaml:"base_url"`
	CacheTTL        time.Duration       `yaml:"cache_ttl"`
	MaxTextLength   int                 `yaml:"max_text_length"`
	PublishKeywords map[string][]string `yaml:"publish_keywords"`
	Prefixes        map[string][]string `yaml:"prefixes"`
}

// Orchestrator converts to the classifier package's config.
func (c ClassificationConfig) Orchestrator() classifier.Config {
	return classifier.Config{
		BaseURL:       c.BaseURL,
		CacheTTL:      c.CacheTTL,
		MaxTextLength: c.MaxTextLength,
	}
}

// byLanguage converts a YAML language-code map, keeping supported codes only.
func byLanguage(m map[string][]string) map[domain.Language][]string {
	out := make(map[domain.Language][]string, len(m))
	for code, values := range m {
		lang := domain.Language(code)
		if lang.Supported() {
			out[lang] = values
		}
	}
	return out
}

// PublishKeywordsByLanguage returns the configured publish keywords, or nil
// when none are configured so the caller can fall back to the defaults.
func (c ClassificationConfig) PublishKeywordsByLanguage() map[domain.Language][]string {
	if len(c.PublishKeywords) == 0 {
		return nil
	}
	return byLanguage(c.PublishKeywords)
}

// PrefixesByLanguage returns the configured normalizer prefixes, or nil when
// none are configured.
func (c ClassificationConfig) PrefixesByLanguage() map[domain.Language][]string {
	if len(c.Prefixes) == 0 {
		return nil
	}
	return byLanguage(c.Prefixes)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	cfg.Logging.SetDefaults()
	// Listener and classification zero values are filled by their packages.
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
	if s.RateLimit == 0 {
		s.RateLimit = defaultRateLimit
	}
	if s.RateBurst == 0 {
		s.RateBurst = defaultRateBurst
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == "" {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = storage.DefaultIndex
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeout
	}
}
