// Package config loads holdem settings from an HCL file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kelseyhightower/envconfig"

	"github.com/lox/holdem/internal/game"
)

// EnvPrefix prefixes every environment override, e.g. HOLDEM_BOTS
const EnvPrefix = "holdem"

// Config is the complete holdem configuration
type Config struct {
	Game   GameConfig
	Engine EngineConfig
}

// GameConfig describes the table
type GameConfig struct {
	Bots           int
	StartingChips  int
	SmallBlind     int
	BigBlind       int
	AllowShortCall bool
	Seed           int64 // 0 picks a seed from the clock
}

// EngineConfig controls pacing, persistence and logging
type EngineConfig struct {
	AIDelay   time.Duration
	StateFile string
	LogLevel  string
	LogFile   string
}

// fileConfig mirrors the HCL layout. Every attribute is optional.
type fileConfig struct {
	Game   *fileGame   `hcl:"game,block"`
	Engine *fileEngine `hcl:"engine,block"`
}

type fileGame struct {
	Bots           *int   `hcl:"bots,optional"`
	StartingChips  *int   `hcl:"starting_chips,optional"`
	SmallBlind     *int   `hcl:"small_blind,optional"`
	BigBlind       *int   `hcl:"big_blind,optional"`
	AllowShortCall *bool  `hcl:"allow_short_call,optional"`
	Seed           *int64 `hcl:"seed,optional"`
}

type fileEngine struct {
	AIDelay   *string `hcl:"ai_delay,optional"`
	StateFile *string `hcl:"state_file,optional"`
	LogLevel  *string `hcl:"log_level,optional"`
	LogFile   *string `hcl:"log_file,optional"`
}

// envOverrides are read with envconfig; unset variables stay nil
type envOverrides struct {
	Bots           *int           `envconfig:"BOTS"`
	StartingChips  *int           `envconfig:"STARTING_CHIPS"`
	SmallBlind     *int           `envconfig:"SMALL_BLIND"`
	BigBlind       *int           `envconfig:"BIG_BLIND"`
	AllowShortCall *bool          `envconfig:"ALLOW_SHORT_CALL"`
	Seed           *int64         `envconfig:"SEED"`
	AIDelay        *time.Duration `envconfig:"AI_DELAY"`
	StateFile      *string        `envconfig:"STATE_FILE"`
	LogLevel       *string        `envconfig:"LOG_LEVEL"`
	LogFile        *string        `envconfig:"LOG_FILE"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Bots:           3,
			StartingChips:  game.DefaultStartingChips,
			SmallBlind:     game.DefaultSmallBlind,
			BigBlind:       game.DefaultBigBlind,
			AllowShortCall: true,
		},
		Engine: EngineConfig{
			AIDelay:   time.Second,
			StateFile: defaultStateFile(),
			LogLevel:  "info",
			LogFile:   "holdem.log",
		},
	}
}

func defaultStateFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "holdem", "game.json")
	}
	return "holdem-game.json"
}

// Load reads the HCL file at filename, falling back to defaults for anything
// it leaves out, then applies environment overrides. A missing file is not
// an error.
func Load(filename string) (*Config, error) {
	cfg, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the HCL file without consulting the environment
func LoadFile(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if g := fc.Game; g != nil {
		set(&cfg.Game.Bots, g.Bots)
		set(&cfg.Game.StartingChips, g.StartingChips)
		set(&cfg.Game.SmallBlind, g.SmallBlind)
		set(&cfg.Game.BigBlind, g.BigBlind)
		set(&cfg.Game.AllowShortCall, g.AllowShortCall)
		set(&cfg.Game.Seed, g.Seed)
	}
	if e := fc.Engine; e != nil {
		if e.AIDelay != nil {
			d, err := time.ParseDuration(*e.AIDelay)
			if err != nil {
				return nil, fmt.Errorf("invalid ai_delay %q: %w", *e.AIDelay, err)
			}
			cfg.Engine.AIDelay = d
		}
		set(&cfg.Engine.StateFile, e.StateFile)
		set(&cfg.Engine.LogLevel, e.LogLevel)
		set(&cfg.Engine.LogFile, e.LogFile)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from HOLDEM_* environment variables
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	set(&c.Game.Bots, env.Bots)
	set(&c.Game.StartingChips, env.StartingChips)
	set(&c.Game.SmallBlind, env.SmallBlind)
	set(&c.Game.BigBlind, env.BigBlind)
	set(&c.Game.AllowShortCall, env.AllowShortCall)
	set(&c.Game.Seed, env.Seed)
	set(&c.Engine.AIDelay, env.AIDelay)
	set(&c.Engine.StateFile, env.StateFile)
	set(&c.Engine.LogLevel, env.LogLevel)
	set(&c.Engine.LogFile, env.LogFile)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	g := c.Game
	if g.Bots < 1 || g.Bots > game.MaxPlayers-1 {
		return fmt.Errorf("bots must be between 1 and %d, got %d", game.MaxPlayers-1, g.Bots)
	}
	if g.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive, got %d", g.StartingChips)
	}
	if g.SmallBlind <= 0 || g.BigBlind < g.SmallBlind {
		return fmt.Errorf("invalid blinds %d/%d", g.SmallBlind, g.BigBlind)
	}
	if g.BigBlind > g.StartingChips {
		return fmt.Errorf("big blind %d exceeds starting chips %d", g.BigBlind, g.StartingChips)
	}
	if c.Engine.AIDelay < 0 {
		return fmt.Errorf("ai delay cannot be negative, got %s", c.Engine.AIDelay)
	}
	if _, err := log.ParseLevel(c.Engine.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Engine.LogLevel)
	}
	return nil
}

// GameOptions translates the table settings into game options
func (c *Config) GameOptions() []game.Option {
	return []game.Option{
		game.WithBlinds(c.Game.SmallBlind, c.Game.BigBlind),
		game.WithShortCalls(c.Game.AllowShortCall),
	}
}
