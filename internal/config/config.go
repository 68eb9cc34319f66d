// Package config builds the immutable daemon configuration once at
// startup. Values come from environment variables with defaults and may
// be overridden by an optional YAML file. No component reads ambient
// state after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxConcentrationInstances bounds the instance-index range probed for
// the concentration family.
const MaxConcentrationInstances = 10

// DefaultConcentrationRules is the family default applied when an
// enabled instance supplies no rule string.
const DefaultConcentrationRules = "2:50"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Channels ChannelsConfig `yaml:"channels"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

type ServerConfig struct {
	BindAddr string `yaml:"bindAddr"`
	// AdminToken protects the read API when set. Empty leaves it open.
	AdminToken string `yaml:"adminToken"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig points at the snapshot history store. An empty host
// disables persistence entirely.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type SourceConfig struct {
	FAAMBaseURL    string `yaml:"faamBaseUrl"`
	FAAMAPIKey     string `yaml:"faamApiKey"`
	RewardsBaseURL string `yaml:"rewardsBaseUrl"`
	Timeout        string `yaml:"timeout"` // e.g. "15s"
}

type ChannelsConfig struct {
	Pushover PushoverConfig `yaml:"pushover"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type PushoverConfig struct {
	APIURL  string `yaml:"apiUrl"`
	Token   string `yaml:"token"`
	UserKey string `yaml:"userKey"`
	Timeout string `yaml:"timeout"`
}

type TelegramConfig struct {
	APIBase    string `yaml:"apiBase"`
	BotToken   string `yaml:"botToken"`
	Channels   string `yaml:"channels"`   // comma-separated chat ids
	Recipients string `yaml:"recipients"` // comma-separated chat ids
	Timeout    string `yaml:"timeout"`
}

// AudienceConfig is the raw per-instance exclusion configuration.
type AudienceConfig struct {
	ExcludePushover           bool   `yaml:"excludePushover"`
	ExcludeTelegramChannels   string `yaml:"excludeTelegramChannels"`
	ExcludeTelegramRecipients string `yaml:"excludeTelegramRecipients"`
}

type AlertsConfig struct {
	// StateChange toggles transition-only notification globally. When
	// off, every triggered evaluation emits and no state is persisted.
	StateChange   bool                `yaml:"stateChange"`
	CycleTimeout  string              `yaml:"cycleTimeout"`
	Traffic       TrafficConfig       `yaml:"traffic"`
	Concentration ConcentrationConfig `yaml:"concentration"`
	Report        ReportConfig        `yaml:"report"`
}

type TrafficConfig struct {
	Enabled         bool           `yaml:"enabled"`
	IntervalMinutes int            `yaml:"intervalMinutes"`
	Periods         string         `yaml:"periods"` // comma-separated reporting periods
	ThresholdPct    float64        `yaml:"thresholdPct"`
	Audience        AudienceConfig `yaml:"audience"`
}

type ConcentrationConfig struct {
	Instances []ConcentrationInstance `yaml:"instances"`
}

type ConcentrationInstance struct {
	Enabled         bool           `yaml:"enabled"`
	Name            string         `yaml:"name"`
	Rules           string         `yaml:"rules"`
	TimeWindowHours int            `yaml:"timeWindowHours"`
	IntervalMinutes int            `yaml:"intervalMinutes"`
	ProviderLimit   int            `yaml:"providerLimit"`
	Audience        AudienceConfig `yaml:"audience"`
}

type ReportConfig struct {
	Enabled         bool           `yaml:"enabled"`
	IntervalMinutes int            `yaml:"intervalMinutes"`
	TimeWindowHours int            `yaml:"timeWindowHours"`
	ShowTopX        string         `yaml:"showTopX"` // e.g. "5,10,20"
	BreakdownCount  int            `yaml:"breakdownCount"`
	Audience        AudienceConfig `yaml:"audience"`
}

// Load builds the configuration from the environment, then overlays the
// YAML file at path when one is given, then fills remaining defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			BindAddr:   getEnv("SERVER_BIND_ADDR", "0.0.0.0:8080"),
			AdminToken: getEnv("ADMIN_TOKEN", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "sentinel"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "sentinel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Source: SourceConfig{
			FAAMBaseURL:    getEnv("FAAM_API_URL", "https://faamview.noves.fi"),
			FAAMAPIKey:     getEnv("FAAM_API_KEY", ""),
			RewardsBaseURL: getEnv("REWARDS_URL", "https://canton-rewards.noves.fi"),
			Timeout:        getEnv("SOURCE_TIMEOUT", "15s"),
		},
		Channels: ChannelsConfig{
			Pushover: PushoverConfig{
				APIURL:  getEnv("PUSHOVER_API_URL", ""),
				Token:   getEnv("PUSHOVER_API_TOKEN", ""),
				UserKey: getEnv("PUSHOVER_USER_KEY", ""),
				Timeout: getEnv("PUSHOVER_TIMEOUT", "10s"),
			},
			Telegram: TelegramConfig{
				APIBase:    getEnv("TELEGRAM_API_BASE", ""),
				BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
				Channels:   getEnv("TELEGRAM_CHANNELS", ""),
				Recipients: getEnv("TELEGRAM_RECIPIENTS", ""),
				Timeout:    getEnv("TELEGRAM_TIMEOUT", "10s"),
			},
		},
		Alerts: AlertsConfig{
			StateChange:  getEnvBool("STATE_CHANGE_MODE", true),
			CycleTimeout: getEnv("CYCLE_TIMEOUT", "1m"),
			Traffic: TrafficConfig{
				Enabled:         getEnvBool("TRAFFIC_ENABLED", false),
				IntervalMinutes: getEnvInt("TRAFFIC_INTERVAL_MINUTES", 10),
				Periods:         getEnv("TRAFFIC_PERIODS", "Latest Round,1-Hour Average"),
				ThresholdPct:    getEnvFloat("TRAFFIC_THRESHOLD_PCT", 0),
				Audience:        audienceFromEnv("TRAFFIC"),
			},
			Concentration: ConcentrationConfig{
				Instances: concentrationInstancesFromEnv(),
			},
			Report: ReportConfig{
				Enabled:         getEnvBool("REPORT_ENABLED", false),
				IntervalMinutes: getEnvInt("REPORT_INTERVAL_MINUTES", 60),
				TimeWindowHours: getEnvInt("REPORT_TIME_WINDOW_HOURS", 1),
				ShowTopX:        getEnv("REPORT_SHOW_TOP_X", "5,10,20"),
				BreakdownCount:  getEnvInt("REPORT_BREAKDOWN_COUNT", 5),
				Audience:        audienceFromEnv("REPORT"),
			},
		},
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Source.Timeout == "" {
		cfg.Source.Timeout = "15s"
	}
	if cfg.Alerts.CycleTimeout == "" {
		cfg.Alerts.CycleTimeout = "1m"
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// concentrationInstancesFromEnv probes the bounded index range. Gaps
// are allowed; disabled indices stay in the slice so instance numbers
// remain stable.
func concentrationInstancesFromEnv() []ConcentrationInstance {
	out := make([]ConcentrationInstance, MaxConcentrationInstances)
	for i := range out {
		prefix := fmt.Sprintf("CONCENTRATION_%d", i+1)
		out[i] = ConcentrationInstance{
			Enabled:         getEnvBool(prefix+"_ENABLED", false),
			Name:            getEnv(prefix+"_NAME", fmt.Sprintf("FAAM Concentration #%d", i+1)),
			Rules:           getEnv(prefix+"_RULES", ""),
			TimeWindowHours: getEnvInt(prefix+"_TIME_WINDOW_HOURS", 24),
			IntervalMinutes: getEnvInt(prefix+"_INTERVAL_MINUTES", 30),
			ProviderLimit:   getEnvInt(prefix+"_PROVIDER_LIMIT", 0),
			Audience:        audienceFromEnv(prefix),
		}
	}
	return out
}

func audienceFromEnv(prefix string) AudienceConfig {
	return AudienceConfig{
		ExcludePushover:           getEnvBool(prefix+"_EXCLUDE_PUSHOVER", false),
		ExcludeTelegramChannels:   getEnv(prefix+"_EXCLUDE_TELEGRAM_CHANNELS", ""),
		ExcludeTelegramRecipients: getEnv(prefix+"_EXCLUDE_TELEGRAM_RECIPIENTS", ""),
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
