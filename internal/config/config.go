package config

import (
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. AUTOMAIL_SIMULATION_SEED for simulation.seed.
const EnvPrefix = "AUTOMAIL"

// Config represents the complete simulator configuration
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Robots     RobotsConfig     `mapstructure:"robots"`
	Mail       MailConfig       `mapstructure:"mail"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig controls the clock and the building
type SimulationConfig struct {
	Seed          int64 `mapstructure:"seed"`
	MaxTicks      int   `mapstructure:"max_ticks"`
	MailroomFloor int   `mapstructure:"mailroom_floor"`
	Floors        int   `mapstructure:"floors"`
	// LoadLimit caps how many items the pool hands a robot in one dispatch
	LoadLimit int `mapstructure:"load_limit"`
	// MaxDeliveriesPerLoad is the fault threshold for deliveries in one tube cycle
	MaxDeliveriesPerLoad int     `mapstructure:"max_deliveries_per_load"`
	ScorePenalty         float64 `mapstructure:"score_penalty"`
	VerifyInvariants     bool    `mapstructure:"verify_invariants"`
}

// RobotsConfig lists the roster and per-type parameters
type RobotsConfig struct {
	// Types is the ordered roster, one robot per token
	Types    []string                       `mapstructure:"types"`
	Settings map[string]RobotSettingsConfig `mapstructure:"settings"`
}

type RobotSettingsConfig struct {
	Capacity    int  `mapstructure:"capacity"`
	WeightLimit int  `mapstructure:"weight_limit"`
	MoveTicks   int  `mapstructure:"move_ticks"`
	FragileSafe bool `mapstructure:"fragile_safe"`
}

// MailConfig controls where mail comes from
type MailConfig struct {
	// Source is one of: generator, sqlite, postgres
	Source          string  `mapstructure:"source"`
	Count           int     `mapstructure:"count"`
	LastArrivalTick int     `mapstructure:"last_arrival_tick"`
	PriorityRatio   float64 `mapstructure:"priority_ratio"`
	PriorityLevels  []int   `mapstructure:"priority_levels"`
	FragileRatio    float64 `mapstructure:"fragile_ratio"`
	MinWeight       int     `mapstructure:"min_weight"`
	MaxWeight       int     `mapstructure:"max_weight"`
	SeedPath        string  `mapstructure:"seed_path"`
}

// ReportConfig controls where run reports are written
type ReportConfig struct {
	// Backends is any of: sqlite, postgres, redis
	Backends    []string `mapstructure:"backends"`
	SqlitePath  string   `mapstructure:"sqlite_path"`
	DatabaseURL string   `mapstructure:"database_url"`
	RedisAddr   string   `mapstructure:"redis_addr"`
	RedisPrefix string   `mapstructure:"redis_prefix"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	settings := make(map[string]RobotSettingsConfig)
	for kind, s := range domain.DefaultRobotSettings() {
		settings[strings.ToLower(kind.String())] = RobotSettingsConfig{
			Capacity:    s.Capacity,
			WeightLimit: s.WeightLimit,
			MoveTicks:   s.MoveTicks,
			FragileSafe: s.FragileSafe,
		}
	}

	return &Config{
		Simulation: SimulationConfig{
			Seed:                 30006,
			MaxTicks:             10000,
			MailroomFloor:        domain.DefaultMailroom,
			Floors:               14,
			LoadLimit:            domain.DefaultLoadLimit,
			MaxDeliveriesPerLoad: domain.MaxLoadDeliveries,
			ScorePenalty:         1.2,
		},
		Robots: RobotsConfig{
			Types:    []string{"Standard", "Careful", "Weak", "Big"},
			Settings: settings,
		},
		Mail: MailConfig{
			Source:          "generator",
			Count:           80,
			LastArrivalTick: 100,
			PriorityRatio:   0.1,
			PriorityLevels:  []int{10, 100},
			FragileRatio:    0.05,
			MinWeight:       200,
			MaxWeight:       3000,
			SeedPath:        "data/seeds/mail.json",
		},
		Report: ReportConfig{
			Backends:    []string{},
			SqlitePath:  "data/automail.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "automail",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default on v so env vars and config files can
// override individual keys.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.max_ticks", d.Simulation.MaxTicks)
	v.SetDefault("simulation.mailroom_floor", d.Simulation.MailroomFloor)
	v.SetDefault("simulation.floors", d.Simulation.Floors)
	v.SetDefault("simulation.load_limit", d.Simulation.LoadLimit)
	v.SetDefault("simulation.max_deliveries_per_load", d.Simulation.MaxDeliveriesPerLoad)
	v.SetDefault("simulation.score_penalty", d.Simulation.ScorePenalty)
	v.SetDefault("simulation.verify_invariants", d.Simulation.VerifyInvariants)

	v.SetDefault("robots.types", d.Robots.Types)
	for name, s := range d.Robots.Settings {
		prefix := "robots.settings." + name
		v.SetDefault(prefix+".capacity", s.Capacity)
		v.SetDefault(prefix+".weight_limit", s.WeightLimit)
		v.SetDefault(prefix+".move_ticks", s.MoveTicks)
		v.SetDefault(prefix+".fragile_safe", s.FragileSafe)
	}

	v.SetDefault("mail.source", d.Mail.Source)
	v.SetDefault("mail.count", d.Mail.Count)
	v.SetDefault("mail.last_arrival_tick", d.Mail.LastArrivalTick)
	v.SetDefault("mail.priority_ratio", d.Mail.PriorityRatio)
	v.SetDefault("mail.priority_levels", d.Mail.PriorityLevels)
	v.SetDefault("mail.fragile_ratio", d.Mail.FragileRatio)
	v.SetDefault("mail.min_weight", d.Mail.MinWeight)
	v.SetDefault("mail.max_weight", d.Mail.MaxWeight)
	v.SetDefault("mail.seed_path", d.Mail.SeedPath)

	v.SetDefault("report.backends", d.Report.Backends)
	v.SetDefault("report.sqlite_path", d.Report.SqlitePath)
	v.SetDefault("report.database_url", d.Report.DatabaseURL)
	v.SetDefault("report.redis_addr", d.Report.RedisAddr)
	v.SetDefault("report.redis_prefix", d.Report.RedisPrefix)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// New returns a viper instance with defaults and env overrides wired.
// A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes v into a validated Config.
// An empty path looks for automail.yaml in the working directory; a missing
// default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("automail")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", ValidationErrors(errs))
	}
	return &cfg, nil
}

// RobotTypes parses the roster tokens.
func (c *Config) RobotTypes() ([]domain.RobotType, error) {
	types := make([]domain.RobotType, 0, len(c.Robots.Types))
	for _, token := range c.Robots.Types {
		t, err := domain.ParseRobotType(token)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// RobotSettings builds the per-type table; unlisted types keep their defaults.
func (c *Config) RobotSettings() domain.RobotSettingsTable {
	table := domain.DefaultRobotSettings()
	for name, s := range c.Robots.Settings {
		kind, err := domain.ParseRobotType(name)
		if err != nil {
			continue
		}
		table[kind] = domain.RobotSettings{
			Capacity:    s.Capacity,
			WeightLimit: s.WeightLimit,
			MoveTicks:   s.MoveTicks,
			FragileSafe: s.FragileSafe,
		}
	}
	return table
}

// Get reads an environment variable with a fallback.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
