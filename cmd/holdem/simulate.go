package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/engine"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
)

type SimulateCmd struct {
	Games    int   `default:"100" help:"Number of games to play"`
	Bots     int   `short:"b" help:"Bots per game besides the autopilot seat; overrides the config"`
	Chips    int   `help:"Starting chips; overrides the config"`
	MaxHands int   `default:"1000" help:"Abandon a game after this many hands"`
	Seed     int64 `help:"Base seed; 0 uses the config or the clock"`
	Parallel int   `short:"j" help:"Games to play at once (default: number of CPUs)"`
}

// simulation describes one batch of games
type simulation struct {
	games    int
	bots     int
	chips    int
	maxHands int
	seed     int64
	parallel int
	options  []game.Option
}

// gameResult is the outcome of one simulated game
type gameResult struct {
	Hands     int
	Showdowns int
	Finished  bool
	Winner    string
	HandsWon  map[string]int
	Names     map[string]string
}

func (c *SimulateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Bots > 0 {
		cfg.Game.Bots = c.Bots
	}
	if c.Chips > 0 {
		cfg.Game.StartingChips = c.Chips
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Games < 1 || c.MaxHands < 1 {
		return errors.New("games and max-hands must be positive")
	}

	logger, closeLog, err := newLogger(cfg.Engine.LogFile, cfg.Engine.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	_, seed := seededSource(cfg.Game.Seed)
	sim := simulation{
		games:    c.Games,
		bots:     cfg.Game.Bots,
		chips:    cfg.Game.StartingChips,
		maxHands: c.MaxHands,
		seed:     seed,
		parallel: c.Parallel,
		options:  cfg.GameOptions(),
	}

	logger.Info("Starting simulation", "games", sim.games, "bots", sim.bots, "seed", seed)
	start := time.Now()
	results, err := sim.run(ctx, logger)
	if err != nil {
		return err
	}

	s := summarize(results)
	s.Seed = seed
	s.Elapsed = time.Since(start)
	s.render(os.Stdout)
	return nil
}

// run plays every game, at most parallel at a time. Each game draws from its
// own stream of the base seed, so results do not depend on scheduling.
func (s simulation) run(ctx context.Context, logger *log.Logger) ([]gameResult, error) {
	parallel := s.parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	results := make([]gameResult, s.games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range s.games {
		g.Go(func() error {
			r, err := s.play(gctx, i, logger.With("game", i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// play runs game n to completion or the hand limit
func (s simulation) play(ctx context.Context, n int, logger *log.Logger) (gameResult, error) {
	autopilot := bot.NewHeuristic(randutil.Derive(s.seed, 2*n+1), logger)
	e := engine.New(randutil.Derive(s.seed, 2*n), logger,
		engine.WithAIDelay(0),
		engine.WithAutopilot(autopilot))

	if err := e.NewGame(ctx, s.bots, s.chips, s.options...); err != nil {
		return gameResult{}, err
	}
	total := (s.bots + 1) * s.chips

	r := gameResult{HandsWon: make(map[string]int), Names: make(map[string]string)}
	for r.Hands < s.maxHands {
		if err := e.RunAutomated(ctx); err != nil {
			return r, err
		}
		h, err := e.State()
		if err != nil {
			return r, err
		}
		if !h.Complete {
			return r, fmt.Errorf("hand %d stopped before it finished", h.HandNumber)
		}
		if got := h.TotalChips(); got != total {
			return r, fmt.Errorf("hand %d: %d chips on the table, want %d", h.HandNumber, got, total)
		}

		r.Hands++
		if h.Result != nil {
			if h.Result.Showdown {
				r.Showdowns++
			}
			for _, w := range h.Result.Winners {
				r.HandsWon[w.PlayerID]++
				r.Names[w.PlayerID] = w.Name
			}
		}

		err = e.NewHand(ctx)
		if errors.Is(err, game.ErrGameOver) {
			break
		}
		if err != nil {
			return r, err
		}
	}

	r.Winner, r.Finished = e.Winner()
	return r, nil
}

// summary aggregates a batch of games
type summary struct {
	Games     int
	Finished  int
	Hands     int
	Showdowns int
	GameWins  map[string]int
	HandsWon  map[string]int
	Names     map[string]string
	Seed      int64
	Elapsed   time.Duration
}

func summarize(results []gameResult) summary {
	s := summary{
		GameWins: make(map[string]int),
		HandsWon: make(map[string]int),
		Names:    make(map[string]string),
	}
	for _, r := range results {
		s.Games++
		s.Hands += r.Hands
		s.Showdowns += r.Showdowns
		if r.Finished {
			s.Finished++
			s.GameWins[r.Winner]++
		}
		for id, n := range r.HandsWon {
			s.HandsWon[id] += n
		}
		for id, name := range r.Names {
			s.Names[id] = name
		}
	}
	return s
}

func (s summary) render(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render(" ♠ ♥ Simulation ♦ ♣ "))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Games:      %d (%d finished)\n", s.Games, s.Finished)
	fmt.Fprintf(w, "Hands:      %d (%.1f per game)\n", s.Hands, ratio(s.Hands, s.Games))
	fmt.Fprintf(w, "Showdowns:  %.1f%%\n", 100*ratio(s.Showdowns, s.Hands))
	fmt.Fprintf(w, "Seed:       %d\n", s.Seed)
	if s.Elapsed > 0 {
		fmt.Fprintf(w, "Elapsed:    %s\n", s.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	ids := make([]string, 0, len(s.HandsWon))
	for id := range s.HandsWon {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if d := s.GameWins[b] - s.GameWins[a]; d != 0 {
			return d
		}
		if d := s.HandsWon[b] - s.HandsWon[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	fmt.Fprintf(w, "%-12s %10s %10s\n", "Player", "Games won", "Hands won")
	for _, id := range ids {
		name := s.Names[id]
		if id == game.HumanPlayerID {
			name = "Autopilot"
		}
		fmt.Fprintf(w, "%-12s %10d %10d\n", name, s.GameWins[id], s.HandsWon[id])
	}
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
