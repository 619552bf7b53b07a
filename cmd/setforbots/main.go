package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/setforbots/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" help:"Path to the HCL configuration file" default:"setforbots.hcl" env:"SETFORBOTS_CONFIG" type:"path"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)" env:"SETFORBOTS_LOG_LEVEL"`
	NoColor  bool   `help:"Disable coloured output" env:"NO_COLOR"`
}

// load reads the configuration and applies the global overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.UI.LogLevel = g.LogLevel
	}
	return cfg, nil
}

func (g *Globals) level(cfg *config.Config) (log.Level, error) {
	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", cfg.UI.LogLevel, err)
	}
	return level, nil
}

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Play        PlayCmd          `cmd:"" default:"withargs" help:"Play a game in the terminal"`
	Simulate    SimulateCmd      `cmd:"" help:"Play many bot games and report statistics"`
	CheckConfig CheckConfigCmd   `cmd:"check-config" help:"Validate a configuration file"`
	InitConfig  InitConfigCmd    `cmd:"init-config" help:"Write the default configuration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setforbots"),
		kong.Description("The card game Set, played against bots in the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	log.SetOutput(os.Stderr)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
