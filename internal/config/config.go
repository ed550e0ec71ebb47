package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Ledger    LedgerConfig    `yaml:"ledger"`
	Feeds     FeedConfig      `yaml:"feeds"`
	Providers ProvidersConfig `yaml:"providers"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	API       APIConfig       `yaml:"api"`
	Output    OutputConfig    `yaml:"output"`
}

type LedgerConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	ProgramID  string `yaml:"program_id"`
	ManagerRef string `yaml:"fulfillment_manager"`
}

type FeedConfig struct {
	Sport                 string        `yaml:"sport"`
	MinConfirmations      int           `yaml:"min_confirmations"`
	MinUpdateDelaySeconds int           `yaml:"min_update_delay_seconds"`
	RetryBudget           int           `yaml:"retry_budget"`
	Delay                 time.Duration `yaml:"delay"`
}

type ProvidersConfig struct {
	Anchor    string   `yaml:"anchor"`
	Secondary []string `yaml:"secondary"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type OutputConfig struct {
	KeypairDir string `yaml:"keypair_dir"`
	ReportDir  string `yaml:"report_dir"`
}

func Default() *Config {
	return &Config{
		Feeds: FeedConfig{
			Sport:                 "nba",
			MinConfirmations:      5,
			MinUpdateDelaySeconds: 60,
			RetryBudget:           2,
			Delay:                 time.Second,
		},
		Providers: ProvidersConfig{
			Anchor:    "nba",
			Secondary: []string{"espn", "yahoo"},
		},
		API: APIConfig{
			Port: 8080,
		},
		Output: OutputConfig{
			KeypairDir: "keypairs",
			ReportDir:  "reports",
		},
	}
}

// Load reads the yaml file at path, falling back to defaults for anything
// unset, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Ledger.GatewayURL = getEnv("LEDGER_GATEWAY_URL", c.Ledger.GatewayURL)
	c.Ledger.ProgramID = getEnv("PROGRAM_ID", c.Ledger.ProgramID)
	c.Ledger.ManagerRef = getEnv("FULFILLMENT_MANAGER_KEY", c.Ledger.ManagerRef)
	c.Feeds.Sport = getEnv("SPORT", c.Feeds.Sport)
	c.Postgres.DSN = getEnv("POSTGRES_DSN", c.Postgres.DSN)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Output.KeypairDir = getEnv("KEYPAIR_DIR", c.Output.KeypairDir)
	c.Output.ReportDir = getEnv("REPORT_DIR", c.Output.ReportDir)
	if port := os.Getenv("API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.API.Port = p
			c.API.Enabled = true
		}
	}
}

func (c *Config) Validate() error {
	if c.Ledger.GatewayURL == "" {
		return fmt.Errorf("ledger.gateway_url is required (or set LEDGER_GATEWAY_URL)")
	}
	if c.Ledger.ProgramID == "" {
		return fmt.Errorf("ledger.program_id is required (or set PROGRAM_ID)")
	}
	if c.Feeds.Sport == "" {
		return fmt.Errorf("feeds.sport is required")
	}
	if c.Feeds.MinConfirmations <= 0 {
		return fmt.Errorf("feeds.min_confirmations must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
