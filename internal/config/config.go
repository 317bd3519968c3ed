package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the effect simulator.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Tick loop
	TickInterval time.Duration `yaml:"tick_interval"`
	Ticks        int           `yaml:"ticks"` // 0 runs until the script is done

	// Effect bus
	Bus BusConfig `yaml:"bus"`

	// Database (snapshots)
	Database DatabaseConfig `yaml:"database"`

	// Per-attribute stacking curvature
	Attributes map[string]AttributeConfig `yaml:"attributes"`

	// Scripted scenario
	Entities []EntityConfig `yaml:"entities"`
	Script   []Step         `yaml:"script"`
}

// BusConfig configures deferred effect delivery.
type BusConfig struct {
	Workers    int  `yaml:"workers"`
	DeferRetry bool `yaml:"defer_retry"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Config with sensible defaults.
// The default scenario buffs one player: speed with sqrt stacking, health linear.
func Default() Config {
	return Config{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		Bus: BusConfig{
			Workers: 4,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "statuseffect",
			Password: "statuseffect",
			DBName:   "statuseffect",
			SSLMode:  "disable",
		},
		Attributes: map[string]AttributeConfig{
			"speed":  {Scaling: "sqrt"},
			"health": {Scaling: "linear"},
		},
		Entities: []EntityConfig{
			{
				Name:      "player",
				Kind:      "player",
				Speed:     ptr(100.0),
				Health:    ptr(80.0),
				MaxHealth: ptr(100.0),
			},
		},
		Script: []Step{
			{Tick: 2, Entity: "player", Effect: "SpeedChange", Params: map[string]string{"value": "50%"}},
			{Tick: 4, Entity: "player", Effect: "SpeedChange", Params: map[string]string{"value": "50%"}},
			{Tick: 8, Entity: "player", Effect: "SpeedChange", Params: map[string]string{"value": "+30"}},
			{Tick: 10, Entity: "player", Effect: "MaxHealthChange", Params: map[string]string{"value": "+50"}},
			{Tick: 12, Entity: "player", Effect: "SpeedChange", Params: map[string]string{"value": "-20%"}},
			{Tick: 14, Entity: "player", Effect: "ArmorChange", Params: map[string]string{"value": "+15"}},
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	// Entities and script form one scenario: a file that declares either
	// replaces the default scenario as a whole.
	var keys scenarioKeys
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if keys.declared() {
		cfg.Entities = nil
		cfg.Script = nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// scenarioKeys records which scenario keys a config file sets.
type scenarioKeys struct {
	Entities yaml.Node `yaml:"entities"`
	Script   yaml.Node `yaml:"script"`
}

func (k scenarioKeys) declared() bool {
	return k.Entities.Kind != 0 || k.Script.Kind != 0
}

// Validate checks cross-field consistency: script steps must reference
// declared entities, entity names must be unique, powers must parse.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if _, err := c.Applications(); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(c.Entities))
	for _, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity without name")
		}
		if _, dup := names[e.Name]; dup {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		if _, err := e.ObjectKind(); err != nil {
			return err
		}
		names[e.Name] = struct{}{}
	}

	for i, s := range c.Script {
		if s.Tick < 0 {
			return fmt.Errorf("script step %d: negative tick %d", i, s.Tick)
		}
		if _, ok := names[s.Entity]; !ok {
			return fmt.Errorf("script step %d: unknown entity %q", i, s.Entity)
		}
		if s.Effect == "" && !s.Despawn {
			return fmt.Errorf("script step %d: missing effect", i)
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
