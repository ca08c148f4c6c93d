package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Sources  SourcesConfig  `yaml:"sources"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type IngestConfig struct {
	Interval        time.Duration `yaml:"interval"`
	RunCap          int           `yaml:"run_cap"`
	PerDomainCap    int           `yaml:"per_domain_cap"`
	PerSourceTopK   int           `yaml:"per_source_top_k"`
	FreshnessWindow time.Duration `yaml:"freshness_window"`
	MinBodyWords    int           `yaml:"min_body_words"`
	Workers         int           `yaml:"workers"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	RunDeadline     time.Duration `yaml:"run_deadline"`
	Languages       []string      `yaml:"languages"`
	UserAgent       string        `yaml:"user_agent"`
}

type ScoringConfig struct {
	BatchSize       int     `yaml:"batch_size"`
	ConfidenceFloor float64 `yaml:"confidence_floor"`
	// TablesPath optionally overrides the built-in keyword and multiplier
	// tables so scoring policy changes without a rebuild.
	TablesPath string `yaml:"tables_path"`
}

type SourcesConfig struct {
	Feeds     []string     `yaml:"feeds"`
	SeedPages []string     `yaml:"seed_pages"`
	Search    SearchConfig `yaml:"search"`
}

type SearchConfig struct {
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"api_key"`
	EngineID string   `yaml:"engine_id"`
	Queries  []string `yaml:"queries"`
	PerQuery int      `yaml:"per_query"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "curator"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "scored"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "curator_scored"
	}
	if c.Ingest.Interval == 0 {
		c.Ingest.Interval = 1 * time.Hour
	}
	if c.Ingest.RunCap == 0 {
		c.Ingest.RunCap = 100
	}
	if c.Ingest.PerDomainCap == 0 {
		c.Ingest.PerDomainCap = 8
	}
	if c.Ingest.PerSourceTopK == 0 {
		c.Ingest.PerSourceTopK = 8
	}
	if c.Ingest.FreshnessWindow == 0 {
		c.Ingest.FreshnessWindow = 72 * time.Hour
	}
	if c.Ingest.MinBodyWords == 0 {
		c.Ingest.MinBodyWords = 180
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.FetchTimeout == 0 {
		c.Ingest.FetchTimeout = 20 * time.Second
	}
	if c.Ingest.RunDeadline == 0 {
		c.Ingest.RunDeadline = 10 * time.Minute
	}
	if len(c.Ingest.Languages) == 0 {
		c.Ingest.Languages = []string{"en"}
	}
	if c.Ingest.UserAgent == "" {
		c.Ingest.UserAgent = "curator/1.0 (+content pipeline)"
	}
	if c.Scoring.BatchSize == 0 {
		c.Scoring.BatchSize = 100
	}
	if c.Scoring.ConfidenceFloor == 0 {
		c.Scoring.ConfidenceFloor = 0.2
	}
	if c.Sources.Search.PerQuery == 0 {
		c.Sources.Search.PerQuery = 5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
