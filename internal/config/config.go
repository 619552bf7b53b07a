// Package config loads game settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/dealer"
)

// Defaults for the game and ui blocks.
const (
	DefaultTableSize          = 12
	DefaultTurnTimeout        = "60s"
	DefaultTurnTimeoutWarning = "5s"
	DefaultPointFreeze        = "1s"
	DefaultPenaltyFreeze      = "3s"
	DefaultTableDelay         = "100ms"
	DefaultDisplayRefresh     = "1s"
	DefaultThinkTime          = "500ms"
	DefaultLogLevel           = "info"
	DefaultLogFile            = "setforbots.log"
)

// MaxPlayers bounds the number of seats at one table.
const MaxPlayers = 8

var (
	ErrNoPlayers = errors.New("at least one player must be configured")
	ErrKeys      = errors.New("invalid key bindings")
)

// KeyLayouts are the default per-slot keys of the first and second human
// seat on a table of up to twelve slots, row by row.
var KeyLayouts = [][]string{
	{"q", "w", "e", "r", "a", "s", "d", "f", "z", "x", "c", "v"},
	{"u", "i", "o", "p", "j", "k", "l", ";", "m", ",", ".", "/"},
}

// Config represents the complete game configuration
type Config struct {
	Game    *GameSettings  `hcl:"game,block"`
	UI      *UISettings    `hcl:"ui,block"`
	Players []PlayerConfig `hcl:"player,block"`
}

// GameSettings holds the table, deck and timing rules. Durations are Go
// duration strings. A negative turn timeout disables the timer and a zero
// one shows the time since the last set instead of a countdown.
type GameSettings struct {
	TableSize          int    `hcl:"table_size,optional"`
	DeckSize           int    `hcl:"deck_size,optional"`
	FeatureSize        int    `hcl:"feature_size,optional"`
	FeatureCount       int    `hcl:"feature_count,optional"`
	TurnTimeout        string `hcl:"turn_timeout,optional"`
	TurnTimeoutWarning string `hcl:"turn_timeout_warning,optional"`
	PointFreeze        string `hcl:"point_freeze,optional"`
	PenaltyFreeze      string `hcl:"penalty_freeze,optional"`
	TableDelay         string `hcl:"table_delay,optional"`
	DisplayRefresh     string `hcl:"display_refresh,optional"`
	Hints              bool   `hcl:"hints,optional"`
	Seed               int64  `hcl:"seed,optional"`
}

// UISettings configures the terminal front end.
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// PlayerConfig defines one seat. Humans play from the keyboard, everyone
// else is a random bot.
type PlayerConfig struct {
	Name      string   `hcl:"name,label"`
	Human     bool     `hcl:"human,optional"`
	Keys      []string `hcl:"keys,optional"`
	ThinkTime string   `hcl:"think_time,optional"`
}

// Default returns the default configuration: one human against two bots.
func Default() *Config {
	cfg := &Config{
		Players: []PlayerConfig{
			{Name: "you", Human: true},
			{Name: "bot-1"},
			{Name: "bot-2"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from an HCL file. A missing file yields the
// default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file)
}

// Parse decodes configuration from HCL source. filename only appears in
// diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file)
}

// Encode renders the configuration as HCL that Parse accepts.
func (c *Config) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return hclwrite.Format(f.Bytes())
}

func decode(file *hcl.File) (*Config, error) {
	var config Config
	diags := gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if len(config.Players) == 0 {
		config.Players = Default().Players
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills every unset value, including the key bindings of the
// first two human seats.
func (c *Config) applyDefaults() {
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	g := c.Game
	if g.TableSize == 0 {
		g.TableSize = DefaultTableSize
	}
	if g.FeatureSize == 0 {
		g.FeatureSize = card.DefaultFeatureSize
	}
	if g.FeatureCount == 0 {
		g.FeatureCount = card.DefaultFeatureCount
	}
	if g.DeckSize == 0 {
		g.DeckSize = card.Universe{FeatureSize: g.FeatureSize, FeatureCount: g.FeatureCount}.Capacity()
	}
	setDefault(&g.TurnTimeout, DefaultTurnTimeout)
	setDefault(&g.TurnTimeoutWarning, DefaultTurnTimeoutWarning)
	setDefault(&g.PointFreeze, DefaultPointFreeze)
	setDefault(&g.PenaltyFreeze, DefaultPenaltyFreeze)
	setDefault(&g.TableDelay, DefaultTableDelay)
	setDefault(&g.DisplayRefresh, DefaultDisplayRefresh)

	if c.UI == nil {
		c.UI = &UISettings{}
	}
	setDefault(&c.UI.LogLevel, DefaultLogLevel)
	setDefault(&c.UI.LogFile, DefaultLogFile)

	humans := 0
	for i := range c.Players {
		p := &c.Players[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("player-%d", i+1)
		}
		if !p.Human {
			setDefault(&p.ThinkTime, DefaultThinkTime)
			continue
		}
		if len(p.Keys) == 0 && humans < len(KeyLayouts) && g.TableSize <= len(KeyLayouts[humans]) {
			p.Keys = slices.Clone(KeyLayouts[humans][:g.TableSize])
		}
		humans++
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Universe(); err != nil {
		return err
	}
	if c.Game.TableSize < 3 {
		return fmt.Errorf("table size must be at least 3, got %d", c.Game.TableSize)
	}
	if _, err := c.DealerConfig(); err != nil {
		return err
	}

	if len(c.Players) == 0 {
		return ErrNoPlayers
	}
	if len(c.Players) > MaxPlayers {
		return fmt.Errorf("at most %d players are supported, got %d", MaxPlayers, len(c.Players))
	}

	names := make(map[string]bool, len(c.Players))
	bound := make(map[string]string)
	for _, p := range c.Players {
		if names[p.Name] {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		names[p.Name] = true

		if !p.Human {
			if _, err := p.Think(); err != nil {
				return err
			}
			continue
		}
		if len(p.Keys) != c.Game.TableSize {
			return fmt.Errorf("%w: player %s needs %d keys, got %d", ErrKeys, p.Name, c.Game.TableSize, len(p.Keys))
		}
		for _, k := range p.Keys {
			if owner, taken := bound[k]; taken {
				return fmt.Errorf("%w: key %q bound by both %s and %s", ErrKeys, k, owner, p.Name)
			}
			bound[k] = p.Name
		}
	}
	return nil
}

// Universe returns the card universe the game deals from.
func (c *Config) Universe() (card.Universe, error) {
	u, err := card.NewUniverse(c.Game.FeatureSize, c.Game.FeatureCount, c.Game.DeckSize)
	if err != nil {
		return card.Universe{}, fmt.Errorf("invalid deck: %w", err)
	}
	return u, nil
}

// DealerConfig converts the game block into dealer settings.
func (c *Config) DealerConfig() (dealer.Config, error) {
	u, err := c.Universe()
	if err != nil {
		return dealer.Config{}, err
	}
	g := c.Game
	cfg := dealer.Config{Universe: u, Hints: g.Hints}
	durations := []struct {
		name   string
		value  string
		dst    *time.Duration
		signed bool
	}{
		{"turn_timeout", g.TurnTimeout, &cfg.TurnTimeout, true},
		{"turn_timeout_warning", g.TurnTimeoutWarning, &cfg.TurnTimeoutWarning, false},
		{"point_freeze", g.PointFreeze, &cfg.PointFreeze, false},
		{"penalty_freeze", g.PenaltyFreeze, &cfg.PenaltyFreeze, false},
		{"table_delay", g.TableDelay, &cfg.TableDelay, false},
		{"display_refresh", g.DisplayRefresh, &cfg.DisplayRefresh, false},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return dealer.Config{}, fmt.Errorf("%s: %w", d.name, err)
		}
		if v < 0 && !d.signed {
			return dealer.Config{}, fmt.Errorf("%s must not be negative, got %s", d.name, d.value)
		}
		*d.dst = v
	}
	return cfg, nil
}

// Names returns the player names in seat order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	return names
}

// Think returns the bot's delay between selections.
func (p PlayerConfig) Think() (time.Duration, error) {
	if p.ThinkTime == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.ThinkTime)
	if err != nil {
		return 0, fmt.Errorf("player %s think_time: %w", p.Name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("player %s think_time must not be negative", p.Name)
	}
	return d, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := &Config{}
	if c.Game != nil {
		g := *c.Game
		out.Game = &g
	}
	if c.UI != nil {
		ui := *c.UI
		out.UI = &ui
	}
	out.Players = make([]PlayerConfig, len(c.Players))
	for i, p := range c.Players {
		p.Keys = slices.Clone(p.Keys)
		out.Players[i] = p
	}
	return out
}
