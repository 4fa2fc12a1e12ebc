package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// scripted replays a fixed sequence of draws
type scripted struct {
	draws []float64
	n     int
}

func (s *scripted) Float64() float64 {
	v := s.draws[s.n%len(s.draws)]
	s.n++
	return v
}

func (s *scripted) IntN(n int) int { return 0 }

func TestDecideTable(t *testing.T) {
	t.Parallel()
	base := situation{cards: "Xx Xx", pot: 150, chips: 1000, bigBlind: 50, minRaise: 50, canRaise: true}
	with := func(f func(*situation)) situation {
		s := base
		f(&s)
		return s
	}

	tests := []struct {
		name      string
		s         situation
		draws     []float64
		want      game.Action
		wantDraws int
	}{
		{
			name:      "open with strong hand",
			s:         with(func(s *situation) { s.strength = 0.72 }),
			draws:     []float64{0.5},
			want:      raise(50),
			wantDraws: 1,
		},
		{
			name:      "strong hand checks on low draw",
			s:         with(func(s *situation) { s.strength = 0.72 }),
			draws:     []float64{0.2},
			want:      check(),
			wantDraws: 1,
		},
		{
			name:      "open capped below minimum checks",
			s:         with(func(s *situation) { s.strength = 0.72; s.chips = 30 }),
			draws:     []float64{0.9},
			want:      check(),
			wantDraws: 1,
		},
		{
			name:      "open checks when nobody could call",
			s:         with(func(s *situation) { s.strength = 0.72; s.canRaise = false }),
			draws:     []float64{0.9},
			want:      check(),
			wantDraws: 1,
		},
		{
			name:  "weak hand checks without drawing",
			s:     with(func(s *situation) { s.strength = 0.3 }),
			draws: []float64{0.99},
			want:  check(),
		},
		{
			name:  "cannot afford call",
			s:     with(func(s *situation) { s.strength = 0.9; s.toCall = 200; s.chips = 100 }),
			draws: []float64{0.99},
			want:  fold(),
		},
		{
			name:      "strong hand raises scaled by draw",
			s:         with(func(s *situation) { s.strength = 0.8; s.toCall = 50 }),
			draws:     []float64{0.5, 0.5},
			want:      raise(75),
			wantDraws: 2,
		},
		{
			name:      "strong raise capped at stack",
			s:         with(func(s *situation) { s.strength = 0.8; s.toCall = 50; s.chips = 120 }),
			draws:     []float64{0.9, 0.99},
			want:      raise(70),
			wantDraws: 2,
		},
		{
			name:      "strong hand calls when stack cannot cover a raise",
			s:         with(func(s *situation) { s.strength = 0.8; s.toCall = 50; s.chips = 100 }),
			draws:     []float64{0.9},
			want:      call(),
			wantDraws: 1,
		},
		{
			name:      "strong hand calls an all-in opponent",
			s:         with(func(s *situation) { s.strength = 0.8; s.toCall = 50; s.canRaise = false }),
			draws:     []float64{0.9},
			want:      call(),
			wantDraws: 1,
		},
		{
			name:      "strong hand calls on low draw",
			s:         with(func(s *situation) { s.strength = 0.8; s.toCall = 50 }),
			draws:     []float64{0.3},
			want:      call(),
			wantDraws: 1,
		},
		{
			name:  "medium hand calls with good pot odds",
			s:     with(func(s *situation) { s.strength = 0.5; s.toCall = 50; s.pot = 200 }),
			draws: []float64{0.0},
			want:  call(),
		},
		{
			name:      "medium hand calls poor odds on high draw",
			s:         with(func(s *situation) { s.strength = 0.5; s.toCall = 100; s.pot = 100 }),
			draws:     []float64{0.7},
			want:      call(),
			wantDraws: 1,
		},
		{
			name:      "medium hand folds poor odds",
			s:         with(func(s *situation) { s.strength = 0.5; s.toCall = 100; s.pot = 100 }),
			draws:     []float64{0.5},
			want:      fold(),
			wantDraws: 1,
		},
		{
			name:      "weak hand floats cheap bet",
			s:         with(func(s *situation) { s.strength = 0.2; s.toCall = 50 }),
			draws:     []float64{0.9},
			want:      call(),
			wantDraws: 1,
		},
		{
			name:      "weak hand folds expensive bet",
			s:         with(func(s *situation) { s.strength = 0.2; s.toCall = 50; s.chips = 400 }),
			draws:     []float64{0.9},
			want:      fold(),
			wantDraws: 1,
		},
		{
			name:      "weak hand folds",
			s:         with(func(s *situation) { s.strength = 0.2; s.toCall = 50 }),
			draws:     []float64{0.5},
			want:      fold(),
			wantDraws: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &scripted{draws: tt.draws}
			d := decide(tt.s, src.Float64)
			assert.Equal(t, tt.want, d.Action)
			assert.Equal(t, tt.wantDraws, src.n)
			assert.NotEmpty(t, d.Reasoning)
		})
	}
}

func TestPotOdds(t *testing.T) {
	t.Parallel()
	d := decide(situation{strength: 0.5, toCall: 50, pot: 150, chips: 1000, minRaise: 50}, func() float64 { return 0 })
	assert.InDelta(t, 0.25, d.PotOdds, 1e-9)

	d = decide(situation{strength: 0.5, chips: 1000, minRaise: 50}, func() float64 { return 0 })
	assert.InDelta(t, 1.0, d.PotOdds, 1e-9)
}

func TestDecideWithoutCardsFolds(t *testing.T) {
	t.Parallel()
	h, err := game.InitializeGame(randutil.New(3), 2, 1500, game.WithButton(0))
	require.NoError(t, err)

	b := NewHeuristic(randutil.New(1), log.New(io.Discard))
	assert.Equal(t, game.Action{Kind: game.Fold}, b.Decide(h, "player"))
	assert.Equal(t, game.Action{Kind: game.Fold}, b.Decide(h, "nobody"))
}

func TestDecideUsesHoleCards(t *testing.T) {
	t.Parallel()
	h, err := game.InitializeGame(randutil.New(3), 2, 1500, game.WithButton(0))
	require.NoError(t, err)
	require.NoError(t, h.DealHoleCards())
	h.Players[0].HoleCards = poker.MustParseCards("7c 2d")

	// Weak cards, 50 to call and a draw that never bluffs
	b := NewHeuristic(&scripted{draws: []float64{0.1}}, log.New(io.Discard))
	d := b.Decision(h, "player")
	assert.Equal(t, game.Fold, d.Action.Kind)
	assert.InDelta(t, poker.HoleCardStrength(h.Players[0].HoleCards[0], h.Players[0].HoleCards[1]), d.Strength, 1e-9)
}

func TestBotDecisionsAreAlwaysLegal(t *testing.T) {
	t.Parallel()
	b := NewHeuristic(randutil.New(5), log.New(io.Discard))

	for seed := range 30 {
		rng := randutil.New(int64(seed))
		h, err := game.InitializeGame(rng, 4, 1500)
		require.NoError(t, err)
		require.NoError(t, h.DealHoleCards())

		for hand := 0; hand < 5 && !h.IsGameOver(); hand++ {
			for steps := 0; !h.Complete; steps++ {
				require.Less(t, steps, 200)
				id := h.ActivePlayerID
				a := b.Decide(h, id)
				require.NoError(t, h.Validate(a.Kind, id, a.Amount), "seed %d: %s chose %s", seed, id, a)
				require.NoError(t, h.Apply(id, a))
			}
			if !h.IsGameOver() {
				require.NoError(t, h.StartNewHand(rng))
			}
		}
	}
}

func TestDecideNeverRaisesAllInOpponent(t *testing.T) {
	t.Parallel()
	for seed := range 20 {
		h, err := game.InitializeGame(randutil.New(3), 1, 1500, game.WithButton(0))
		require.NoError(t, err)
		require.NoError(t, h.DealHoleCards())
		h.Players[0].Chips = 500
		require.NoError(t, h.Raise("player", 475)) // all-in
		h.Players[1].HoleCards = poker.MustParseCards("Ah As")

		b := NewHeuristic(randutil.New(int64(seed)), log.New(io.Discard))
		a := b.Decide(h, "bot1")
		assert.NotEqual(t, game.Raise, a.Kind, "seed %d", seed)
		assert.NoError(t, h.Validate(a.Kind, "bot1", a.Amount), "seed %d", seed)
	}
}

func TestNewHeuristicRequiresSource(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewHeuristic(nil, log.New(io.Discard)) })
}

func TestAdvise(t *testing.T) {
	t.Parallel()
	h, err := game.InitializeGame(randutil.New(3), 2, 1500, game.WithButton(0))
	require.NoError(t, err)
	require.NoError(t, h.DealHoleCards())
	h.Players[0].HoleCards = poker.MustParseCards("Ah As")

	hint, ok := Advise(h, "player")
	require.True(t, ok)
	assert.Equal(t, poker.CategoryPremium, hint.Category)
	assert.Equal(t, game.Action{Kind: game.Raise, Amount: 50}, hint.Suggestion)
	assert.Contains(t, hint.Text, "Premium hand")
	assert.InDelta(t, 0.4, hint.PotOdds, 1e-9)

	again, _ := Advise(h, "player")
	assert.Equal(t, hint, again)

	_, ok = Advise(h, "bot1")
	assert.False(t, ok)

	h.Players[0].HoleCards = poker.MustParseCards("7c 2d")
	hint, ok = Advise(h, "player")
	require.True(t, ok)
	assert.Equal(t, poker.CategoryTrash, hint.Category)
	assert.Equal(t, game.Action{Kind: game.Fold}, hint.Suggestion)
}
