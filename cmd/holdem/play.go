package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/engine"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/store"
	"github.com/lox/holdem/internal/tui"
)

type PlayCmd struct {
	Bots  int   `short:"b" help:"Number of bot opponents; overrides the config"`
	Chips int   `help:"Starting chips; overrides the config"`
	Seed  int64 `help:"Random seed; 0 uses the config or the clock"`
	Fast  bool  `help:"Let bots act without pausing"`
	New   bool  `short:"n" help:"Start a new game instead of resuming the saved one"`
}

// apply folds the command's flags into cfg
func (c *PlayCmd) apply(cfg *config.Config) {
	if c.Bots > 0 {
		cfg.Game.Bots = c.Bots
	}
	if c.Chips > 0 {
		cfg.Game.StartingChips = c.Chips
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if c.Fast {
		cfg.Engine.AIDelay = 0
	}
}

func (c *PlayCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := newLogger(cfg.Engine.LogFile, cfg.Engine.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	rng, seed := seededSource(cfg.Game.Seed)
	logger.Info("Starting holdem", "version", version, "seed", seed, "bots", cfg.Game.Bots,
		"state_file", cfg.Engine.StateFile)

	// Views are forwarded in order without ever blocking the engine
	updates := make(chan game.TableView, 64)
	var eng *engine.Engine
	eng = engine.New(rng, logger,
		engine.WithStore(store.NewFileStore(cfg.Engine.StateFile, logger)),
		engine.WithAIDelay(cfg.Engine.AIDelay),
		engine.WithObserver(func() {
			v, err := eng.View()
			if err != nil {
				return
			}
			select {
			case updates <- v:
			default:
			}
		}),
	)

	if err := startOrResume(ctx, eng, cfg, c.New, logger); err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(ctx, eng, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		for v := range updates {
			program.Send(tui.TableMsg(v))
		}
	}()

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}

	if eng.IsGameOver() {
		if err := eng.Forget(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to delete finished game", "error", err)
		}
	}
	if err := eng.LastSaveError(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: the game could not be saved: %v\n", err)
	}
	return nil
}

// startOrResume resumes the saved game unless a new one is requested or the
// saved game is finished
func startOrResume(ctx context.Context, eng *engine.Engine, cfg *config.Config, fresh bool, logger *log.Logger) error {
	if !fresh {
		err := eng.Resume(ctx)
		switch {
		case err == nil && !eng.IsGameOver():
			return nil
		case err == nil, errors.Is(err, store.ErrNotFound):
		default:
			logger.Warn("Could not resume saved game, starting a new one", "error", err)
		}
	}
	return eng.NewGame(ctx, cfg.Game.Bots, cfg.Game.StartingChips, cfg.GameOptions()...)
}

// seededSource returns a source for seed, or a clock-seeded one for zero
func seededSource(seed int64) (randutil.Source, int64) {
	if seed == 0 {
		return randutil.NewFromTime()
	}
	return randutil.New(seed), seed
}
