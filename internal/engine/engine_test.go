package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/store"
	"github.com/lox/holdem/poker"
)

// passive checks when it can and calls otherwise
type passive struct{}

func (passive) Decide(h *game.HandState, playerID string) game.Action {
	if h.LegalActions(playerID).CanCheck {
		return game.Action{Kind: game.Check}
	}
	return game.Action{Kind: game.Call}
}

// minRaiser always tries a raise that is too small
type minRaiser struct{}

func (minRaiser) Decide(*game.HandState, string) game.Action {
	return game.Action{Kind: game.Raise, Amount: 1}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.MemoryStore, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	s := store.NewMemoryStore()
	opts = append([]Option{
		WithClock(clock),
		WithStore(s),
		WithAIDelay(0),
		WithPolicy(passive{}),
	}, opts...)
	return New(randutil.New(42), log.New(io.Discard), opts...), s, clock
}

func startGame(t *testing.T, e *Engine, bots, button int) {
	t.Helper()
	require.NoError(t, e.NewGame(context.Background(), bots, 1500,
		game.WithButton(button), game.WithGameID("test-game")))
}

func history(t *testing.T, e *Engine) int {
	t.Helper()
	h, err := e.State()
	require.NoError(t, err)
	return len(h.History)
}

func TestNoActiveGame(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.Call(ctx), game.ErrNoActiveGame)
	assert.ErrorIs(t, e.NewHand(ctx), game.ErrNoActiveGame)
	assert.ErrorIs(t, e.RunAutomated(ctx), game.ErrNoActiveGame)
	_, err := e.State()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
	_, err = e.View()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
	assert.False(t, e.IsGameOver())
}

func TestHumanAndBotTurns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, s, _ := newTestEngine(t)

	// Button on the human: blinds on seats 1 and 2, seat 3 acts first
	startGame(t, e, 3, 0)
	assert.True(t, e.BotTurn())
	assert.ErrorIs(t, e.Call(ctx), ErrNotHumanTurn)

	require.NoError(t, e.RunAutomated(ctx))
	view, err := e.View()
	require.NoError(t, err)
	assert.Equal(t, game.HumanPlayerID, view.ActivePlayerID)
	assert.True(t, view.Legal.CanCall)
	assert.Equal(t, 50, view.Legal.CallAmount)

	hint, ok := e.Hint()
	assert.True(t, ok)
	assert.NotEmpty(t, hint.Text)

	require.NoError(t, e.Call(ctx))
	assert.True(t, e.BotTurn())

	h, err := e.State()
	require.NoError(t, err)
	assert.Equal(t, 1450, h.Players[0].Chips)
	assert.Equal(t, 175, h.Pot)

	saved, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.History, saved.History, "every transition is saved")
	assert.GreaterOrEqual(t, s.Saves(), 3)
}

func TestRejectedHumanAction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	startGame(t, e, 3, 0)
	require.NoError(t, e.RunAutomated(ctx))

	before, err := e.State()
	require.NoError(t, err)

	err = e.Check(ctx)
	require.ErrorIs(t, err, game.ErrIllegalCheck)
	var ae *game.ActionError
	require.True(t, errors.As(err, &ae))

	assert.ErrorIs(t, e.Raise(ctx, 10), game.ErrRaiseTooSmall)
	assert.ErrorIs(t, e.Raise(ctx, math.MaxInt), game.ErrRaiseExceedsStack)

	after, err := e.State()
	require.NoError(t, err)
	assert.Equal(t, before.Players, after.Players)
	assert.Equal(t, before.Pot, after.Pot)
	assert.False(t, e.Aborted())
}

func TestRunAutomatedCancelled(t *testing.T) {
	t.Parallel()
	e, s, _ := newTestEngine(t, WithAIDelay(time.Second))

	// Button on seat 3: the human posts the small blind, seats 2 and 3
	// act before the human
	startGame(t, e, 3, 3)
	start := history(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.RunAutomated(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, start+1, history(t, e), "exactly one decision is applied")
	assert.False(t, e.Busy())
	assert.True(t, e.BotTurn(), "the remaining bot turn is left for later")

	saved, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved.History, start+1, "the applied action is saved despite cancellation")
}

func TestRunAutomatedPacing(t *testing.T) {
	t.Parallel()
	e, _, clock := newTestEngine(t, WithAIDelay(time.Second))
	startGame(t, e, 3, 3)
	start := history(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.RunAutomated(ctx) }()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Equal(t, start+2, history(t, e))
			assert.False(t, e.BotTurn())
			view, err := e.View()
			require.NoError(t, err)
			assert.Equal(t, game.HumanPlayerID, view.ActivePlayerID)
			return
		default:
		}
		time.Sleep(time.Millisecond)
		clock.Advance(time.Second).MustWait(ctx)
	}
}

func TestBusyWhileAutomated(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, WithAIDelay(time.Second))
	startGame(t, e, 3, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.RunAutomated(ctx) }()

	// The clock never advances so the loop parks in its pause
	require.Eventually(t, e.Busy, time.Second, time.Millisecond)

	bg := context.Background()
	assert.ErrorIs(t, e.Call(bg), ErrBusy)
	assert.ErrorIs(t, e.NewHand(bg), ErrBusy)
	assert.ErrorIs(t, e.NewGame(bg, 2, 1000), ErrBusy)
	_, err := e.Step(bg)
	assert.ErrorIs(t, err, ErrBusy)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, e.Busy())
}

func TestStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	startGame(t, e, 3, 3)

	stepped, err := e.Step(ctx)
	require.NoError(t, err)
	assert.True(t, stepped)
	stepped, err = e.Step(ctx)
	require.NoError(t, err)
	assert.True(t, stepped)

	// Action is now on the human
	stepped, err = e.Step(ctx)
	require.NoError(t, err)
	assert.False(t, stepped)
}

func TestIllegalPolicyFallsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t, WithPolicy(minRaiser{}))
	startGame(t, e, 3, 0)

	require.NoError(t, e.RunAutomated(ctx))
	h, err := e.State()
	require.NoError(t, err)
	assert.True(t, h.Players[3].Folded, "facing the big blind the fallback is a fold")
	assert.Equal(t, game.HumanPlayerID, h.ActivePlayerID)
}

func TestSaveFailureIsSurfaced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, s, _ := newTestEngine(t)
	s.SetFailure(errors.New("disk full"))

	startGame(t, e, 3, 0)
	err := e.LastSaveError()
	require.Error(t, err)
	assert.True(t, store.IsRetryable(err))

	// Play continues regardless
	require.NoError(t, e.RunAutomated(ctx))
	require.NoError(t, e.Call(ctx))
	assert.Error(t, e.LastSaveError())

	s.SetFailure(nil)
	require.NoError(t, e.RunAutomated(ctx))
	assert.NoError(t, e.LastSaveError())
}

func TestResume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, s, _ := newTestEngine(t)
	startGame(t, e, 3, 0)
	require.NoError(t, e.RunAutomated(ctx))
	require.NoError(t, e.Call(ctx))
	want, err := e.State()
	require.NoError(t, err)

	resumed := New(randutil.New(1), log.New(io.Discard), WithStore(s), WithAIDelay(0), WithPolicy(passive{}))
	require.NoError(t, resumed.Resume(ctx))
	got, err := resumed.State()
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Players, got.Players)
	assert.Equal(t, want.ActivePlayerID, got.ActivePlayerID)

	// And play carries on from where it stopped
	require.NoError(t, resumed.RunAutomated(ctx))

	require.NoError(t, resumed.Forget(ctx))
	empty := New(randutil.New(1), log.New(io.Discard), WithStore(s))
	assert.ErrorIs(t, empty.Resume(ctx), store.ErrNotFound)

	noStore := New(randutil.New(1), log.New(io.Discard))
	assert.ErrorIs(t, noStore.Resume(ctx), store.ErrNotFound)
}

func TestResumeRejectsCorruptCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	startGame(t, e, 2, 0)

	h, err := e.State()
	require.NoError(t, err)
	h.Players[1].HoleCards[0].Rank = 15
	corrupt := store.NewMemoryStore()
	require.NoError(t, corrupt.Save(ctx, h))

	resumed := New(randutil.New(1), log.New(io.Discard), WithStore(corrupt), WithAIDelay(0), WithPolicy(passive{}))
	err = resumed.Resume(ctx)
	require.ErrorIs(t, err, poker.ErrInvalidCard)
	assert.True(t, game.IsInvariantError(err))

	_, err = resumed.State()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
}

func TestInvariantBreachAbortsHand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	startGame(t, e, 2, 0)

	// Save a copy of the game with an exhausted deck and resume it
	h, err := e.State()
	require.NoError(t, err)
	h.Deck = poker.NewDeckFromCards(nil)
	broken := store.NewMemoryStore()
	require.NoError(t, broken.Save(ctx, h))

	e, _, _ = newTestEngine(t, WithStore(broken))
	require.NoError(t, e.Resume(ctx))

	// Three-handed with the button on the human, who acts first
	require.NoError(t, e.Call(ctx))
	err = e.RunAutomated(ctx)
	require.ErrorIs(t, err, ErrHandAborted)
	assert.True(t, game.IsInvariantError(err))
	assert.True(t, e.Aborted())

	state, err := e.State()
	require.NoError(t, err)
	assert.Equal(t, 4500, state.TotalChips(), "contributions are returned")
	assert.Zero(t, state.Pot)
	for _, p := range state.Players {
		assert.Equal(t, 1500, p.Chips)
	}

	assert.ErrorIs(t, e.Call(ctx), ErrHandAborted)
	_, err = e.Step(ctx)
	assert.ErrorIs(t, err, ErrHandAborted)
	_, ok := e.Hint()
	assert.False(t, ok)

	require.NoError(t, e.NewHand(ctx))
	assert.False(t, e.Aborted())
}

func TestNewHand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	startGame(t, e, 3, 0)

	require.NoError(t, e.RunAutomated(ctx))
	require.NoError(t, e.Fold(ctx))
	require.NoError(t, e.NewHand(ctx))

	h, err := e.State()
	require.NoError(t, err)
	assert.Equal(t, 2, h.HandNumber)
	assert.Equal(t, 1, h.Button)
	assert.Equal(t, 6000, h.TotalChips())
	for _, p := range h.Players {
		assert.Len(t, p.HoleCards, 2)
	}
}

func TestAutopilotGamesConserveChips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for seed := int64(1); seed <= 5; seed++ {
		logger := log.New(io.Discard)
		e := New(randutil.New(seed), logger,
			WithAIDelay(0),
			WithAutopilot(bot.NewHeuristic(randutil.Derive(seed, 1), logger)))
		require.NoError(t, e.NewGame(ctx, 3, 500))

		for hand := 0; hand < 200 && !e.IsGameOver(); hand++ {
			require.NoError(t, e.RunAutomated(ctx))
			h, err := e.State()
			require.NoError(t, err)
			require.True(t, h.Complete, "autopilot plays every seat to the end of the hand")
			require.Equal(t, 2000, h.TotalChips())
			require.NoError(t, h.CheckInvariants())

			err = e.NewHand(ctx)
			if errors.Is(err, game.ErrGameOver) {
				break
			}
			require.NoError(t, err)
		}

		stats, err := e.Stats()
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalPlayers)
		if winner, ok := e.Winner(); ok {
			h, err := e.State()
			require.NoError(t, err)
			p, found := h.FindPlayer(winner)
			require.True(t, found)
			assert.Equal(t, 2000, p.Chips)
		}
	}
}

func TestObserverCalledPerTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	calls := 0
	e, _, _ := newTestEngine(t, WithObserver(func() { calls++ }))
	startGame(t, e, 3, 3)
	assert.Equal(t, 1, calls)

	require.NoError(t, e.RunAutomated(ctx))
	assert.Equal(t, 3, calls)

	_ = e.Check(ctx) // rejected, nothing changes
	assert.Equal(t, 3, calls)
}
