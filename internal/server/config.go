package server

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokertables/internal/bot"
	"github.com/lox/pokertables/internal/game"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid server config")

// Config represents the complete server configuration
type Config struct {
	Server Settings      `hcl:"server,block"`
	Tables []TableConfig `hcl:"table,block"`
	Bots   []BotConfig   `hcl:"bot,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address      string `hcl:"address,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	HandRanks    string `hcl:"hand_ranks,optional"`
	HistoryDir   string `hcl:"history_dir,optional"`
	RedisURL     string `hcl:"redis_url,optional"`
	RedisChannel string `hcl:"redis_channel,optional"`
}

// TableConfig defines one table. Durations are Go duration strings.
type TableConfig struct {
	Name                 string `hcl:"name,label"`
	Variant              string `hcl:"variant,optional"`
	MaxSeats             int    `hcl:"max_seats,optional"`
	MinSeats             int    `hcl:"min_seats,optional"`
	SmallBlind           int    `hcl:"small_blind"`
	BigBlind             int    `hcl:"big_blind"`
	TurnTimeout          string `hcl:"turn_timeout,optional"`
	Tick                 string `hcl:"tick,optional"`
	CollectPause         string `hcl:"collect_pause,optional"`
	ResultsDelay         string `hcl:"results_delay,optional"`
	EliminationThreshold int    `hcl:"elimination_threshold,optional"`
	Seed                 int64  `hcl:"seed,optional"`
}

// BotConfig seats one bot at a table.
type BotConfig struct {
	Name     string `hcl:"name,label"`
	Table    string `hcl:"table"`
	Strategy string `hcl:"strategy,optional"`
	Stack    int    `hcl:"stack,optional"`
	Endpoint string `hcl:"endpoint,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

// DefaultConfig is used when no config file exists: one hold'em table with
// a table of rule bots.
func DefaultConfig() *Config {
	cfg := &Config{
		Tables: []TableConfig{{Name: "main", SmallBlind: 5, BigBlind: 10}},
		Bots: []BotConfig{
			{Name: "ace", Table: "main", Strategy: bot.StrategyRule},
			{Name: "deuce", Table: "main", Strategy: bot.StrategyEquity},
			{Name: "maverick", Table: "main", Strategy: bot.StrategyManiac},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source, applies defaults and validates the result.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	if diags := gohcl.DecodeBody(file.Body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.RedisChannel == "" {
		c.Server.RedisChannel = "pokertables"
	}

	def := game.DefaultConfig()
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Variant == "" {
			t.Variant = def.Variant
		}
		if t.MaxSeats == 0 {
			t.MaxSeats = def.MaxSeats
		}
		if t.MinSeats == 0 {
			t.MinSeats = def.MinSeats
		}
		if t.TurnTimeout == "" {
			t.TurnTimeout = def.TurnTimeout.String()
		}
		if t.Tick == "" {
			t.Tick = def.Tick.String()
		}
		if t.CollectPause == "" {
			t.CollectPause = def.CollectPause.String()
		}
		if t.ResultsDelay == "" {
			t.ResultsDelay = def.ResultsDelay.String()
		}
	}

	for i := range c.Bots {
		b := &c.Bots[i]
		if b.Strategy == "" {
			b.Strategy = bot.StrategyRule
		}
		if b.Stack == 0 {
			if t := c.Table(b.Table); t != nil {
				b.Stack = t.BigBlind * 100 // 100 big blinds
			}
		}
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("%w: at least one table must be configured", ErrInvalidConfig)
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("%w: table %q is defined twice", ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = true
		if _, err := t.GameConfig(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}

	seated := make(map[string]int)
	names := make(map[string]bool)
	for _, b := range c.Bots {
		t := c.Table(b.Table)
		switch {
		case names[b.Name]:
			return fmt.Errorf("%w: bot %q is defined twice", ErrInvalidConfig, b.Name)
		case t == nil:
			return fmt.Errorf("%w: bot %s: unknown table %q", ErrInvalidConfig, b.Name, b.Table)
		case !slices.Contains(bot.Strategies(), b.Strategy):
			return fmt.Errorf("%w: bot %s: invalid strategy %s", ErrInvalidConfig, b.Name, b.Strategy)
		case b.Strategy == bot.StrategyRemote && b.Endpoint == "":
			return fmt.Errorf("%w: bot %s: remote strategy needs an endpoint", ErrInvalidConfig, b.Name)
		case b.Stack <= 0:
			return fmt.Errorf("%w: bot %s: stack must be positive", ErrInvalidConfig, b.Name)
		}
		names[b.Name] = true
		seated[b.Table]++
		if seated[b.Table] > t.MaxSeats {
			return fmt.Errorf("%w: table %s has more bots than its %d seats", ErrInvalidConfig, t.Name, t.MaxSeats)
		}
	}
	return nil
}

// Table returns a table configuration by name
func (c *Config) Table(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// BotsAt returns the bots configured for a table, in file order.
func (c *Config) BotsAt(table string) []BotConfig {
	var out []BotConfig
	for _, b := range c.Bots {
		if b.Table == table {
			out = append(out, b)
		}
	}
	return out
}

// GameConfig converts the table block into an engine config.
func (t TableConfig) GameConfig() (game.Config, error) {
	cfg := game.Config{
		Variant:              t.Variant,
		MaxSeats:             t.MaxSeats,
		MinSeats:             t.MinSeats,
		SmallBlind:           t.SmallBlind,
		BigBlind:             t.BigBlind,
		EliminationThreshold: t.EliminationThreshold,
	}
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"turn_timeout", t.TurnTimeout, &cfg.TurnTimeout},
		{"tick", t.Tick, &cfg.Tick},
		{"collect_pause", t.CollectPause, &cfg.CollectPause},
		{"results_delay", t.ResultsDelay, &cfg.ResultsDelay},
	}
	for _, d := range durations {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return game.Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, d.name, err)
		}
		*d.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}
