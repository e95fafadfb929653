package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"healthchain/internal/logging"
	"healthchain/internal/vitals"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	SubjectID   string `mapstructure:"subject_id"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs sampling cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// FeedConfig selects and bounds the vitals source.
type FeedConfig struct {
	Mode            string  `mapstructure:"mode"`
	HeartRateMin    int     `mapstructure:"heart_rate_min"`
	HeartRateMax    int     `mapstructure:"heart_rate_max"`
	SystolicMin     int     `mapstructure:"systolic_min"`
	SystolicMax     int     `mapstructure:"systolic_max"`
	DiastolicMin    int     `mapstructure:"diastolic_min"`
	DiastolicMax    int     `mapstructure:"diastolic_max"`
	OxygenMin       int     `mapstructure:"oxygen_min"`
	OxygenMax       int     `mapstructure:"oxygen_max"`
	TemperatureMin  float64 `mapstructure:"temperature_min"`
	TemperatureMax  float64 `mapstructure:"temperature_max"`
	TemperatureUnit string  `mapstructure:"temperature_unit"`
}

// AssessmentConfig controls how much history feeds a risk assessment.
type AssessmentConfig struct {
	WindowSize int `mapstructure:"window_size"`
}

// AlertingConfig defines alert thresholds and routing.
type AlertingConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	MinRiskLevel string         `mapstructure:"min_risk_level"`
	Cooldown     time.Duration  `mapstructure:"cooldown"`
	Channels     []string       `mapstructure:"channels"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram alert delivery.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HEALTHCHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "healthchain")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.subject_id", "demo")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "3s")
	v.SetDefault("scheduler.align_to_interval", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x68636861))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("feed.mode", "simulated")
	v.SetDefault("feed.heart_rate_min", 60)
	v.SetDefault("feed.heart_rate_max", 100)
	v.SetDefault("feed.systolic_min", 110)
	v.SetDefault("feed.systolic_max", 140)
	v.SetDefault("feed.diastolic_min", 70)
	v.SetDefault("feed.diastolic_max", 90)
	v.SetDefault("feed.oxygen_min", 96)
	v.SetDefault("feed.oxygen_max", 100)
	v.SetDefault("feed.temperature_min", 97.5)
	v.SetDefault("feed.temperature_max", 99.5)
	v.SetDefault("feed.temperature_unit", "F")

	v.SetDefault("assessment.window_size", 20)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.min_risk_level", "high")
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// ResolveMaxPoints picks the export cap, preferring an explicit override.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// MinLevel parses the configured alert threshold tier.
func (c *AlertingConfig) MinLevel() vitals.RiskLevel {
	if c.MinRiskLevel == "" {
		return vitals.RiskHigh
	}
	return vitals.RiskLevel(strings.ToLower(c.MinRiskLevel))
}

// TemperatureUnit parses the configured feed unit.
func (c *FeedConfig) Unit() vitals.TemperatureUnit {
	return vitals.TemperatureUnit(strings.ToUpper(c.TemperatureUnit))
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.App.SubjectID == "" {
		return fmt.Errorf("app.subject_id must not be empty")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Assessment.WindowSize <= 0 {
		return fmt.Errorf("assessment.window_size must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}

	switch c.Feed.Mode {
	case "simulated", "static":
	default:
		return fmt.Errorf("feed.mode must be simulated or static, got %q", c.Feed.Mode)
	}

	switch c.Feed.Unit() {
	case vitals.UnitFahrenheit, vitals.UnitCelsius:
	default:
		return fmt.Errorf("feed.temperature_unit must be F or C, got %q", c.Feed.TemperatureUnit)
	}

	switch c.Alerting.MinLevel() {
	case vitals.RiskLow, vitals.RiskMedium, vitals.RiskHigh:
	default:
		return fmt.Errorf("alerting.min_risk_level must be low, medium, or high, got %q", c.Alerting.MinRiskLevel)
	}

	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}
