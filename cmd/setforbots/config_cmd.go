package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/fileutil"
)

type CheckConfigCmd struct{}

func (c *CheckConfigCmd) Run(globals *Globals) error {
	if _, err := os.Stat(globals.Config); err != nil {
		return fmt.Errorf("cannot read %s: %w", globals.Config, err)
	}
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", globals.Config, err)
	}
	if _, err := globals.level(cfg); err != nil {
		return err
	}

	u, _ := cfg.Universe()
	fmt.Printf("%s is valid\n", globals.Config)
	fmt.Printf("  table: %d slots, deck: %d cards (%d features of %d values)\n",
		cfg.Game.TableSize, u.Size, u.FeatureCount, u.FeatureSize)
	for _, p := range cfg.Players {
		kind := "bot"
		if p.Human {
			kind = fmt.Sprintf("human, keys %v", p.Keys)
		}
		fmt.Printf("  player %s (%s)\n", p.Name, kind)
	}
	return nil
}

type InitConfigCmd struct {
	Force bool `short:"f" help:"Overwrite an existing file"`
}

func (c *InitConfigCmd) Run(globals *Globals) error {
	if !c.Force {
		if _, err := os.Stat(globals.Config); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", globals.Config)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg := config.Default()
	err := fileutil.WriteAtomic(globals.Config, 0o644, func(w io.Writer) error {
		_, err := w.Write(cfg.Encode())
		return err
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", globals.Config)
	return nil
}
