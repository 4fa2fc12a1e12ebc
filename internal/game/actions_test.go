package game

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
)

func TestActionValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		setup    func(h *HandState)
		kind     ActionKind
		playerID string
		amount   int
		wantErr  error
	}{
		{name: "unknown player", kind: Fold, playerID: "bot9", wantErr: ErrPlayerNotFound},
		{name: "out of turn", kind: Call, playerID: "bot1", wantErr: ErrNotPlayersTurn},
		{
			name:     "folded player",
			setup:    func(h *HandState) { h.Players[1].Folded = true },
			kind:     Call,
			playerID: "bot1",
			wantErr:  ErrPlayerFolded,
		},
		{name: "check facing bet", kind: Check, playerID: "player", wantErr: ErrIllegalCheck},
		{name: "raise below last raise", kind: Raise, playerID: "player", amount: 49, wantErr: ErrRaiseTooSmall},
		{name: "zero raise", kind: Raise, playerID: "player", amount: 0, wantErr: ErrRaiseTooSmall},
		{name: "raise beyond stack", kind: Raise, playerID: "player", amount: 1451, wantErr: ErrRaiseExceedsStack},
		{name: "raise too large to add up", kind: Raise, playerID: "player", amount: math.MaxInt, wantErr: ErrRaiseExceedsStack},
		{
			name:     "raise with every opponent all-in",
			setup:    func(h *HandState) { h.Players[1].Chips, h.Players[2].Chips = 0, 0 },
			kind:     Raise,
			playerID: "player",
			amount:   50,
			wantErr:  ErrNoOneToRaise,
		},
		{
			name:     "call with every opponent all-in",
			setup:    func(h *HandState) { h.Players[1].Chips, h.Players[2].Chips = 0, 0 },
			kind:     Call,
			playerID: "player",
		},
		{name: "exact stack raise", kind: Raise, playerID: "player", amount: 1450},
		{name: "min raise", kind: Raise, playerID: "player", amount: 50},
		{name: "call", kind: Call, playerID: "player"},
		{name: "fold", kind: Fold, playerID: "player"},
		{
			name:     "nothing to call",
			setup:    func(h *HandState) { h.Players[0].Bet, h.Players[0].Contributed = 50, 50; h.Pot += 50 },
			kind:     Call,
			playerID: "player",
			wantErr:  ErrNothingToCall,
		},
		{
			name:     "hand complete",
			setup:    func(h *HandState) { h.Abort() },
			kind:     Fold,
			playerID: "player",
			wantErr:  ErrHandComplete,
		},
		{name: "posting is not a player action", kind: PostBigBlind, playerID: "player", wantErr: ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestGame(t, 2)
			if tt.setup != nil {
				tt.setup(h)
			}
			err := h.Validate(tt.kind, tt.playerID, tt.amount)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)

			var ae *ActionError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, tt.playerID, ae.PlayerID)
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 3)
	before := h.Clone()

	for _, kind := range []ActionKind{Fold, Check, Call, Raise} {
		for _, id := range []string{"player", "bot1", "bot3", "nobody"} {
			first := h.Validate(kind, id, 75)
			second := h.Validate(kind, id, 75)
			assert.Equal(t, first == nil, second == nil)
			if first != nil {
				assert.Equal(t, first.Error(), second.Error())
			}
		}
	}
	assert.Equal(t, before.Players, h.Players)
	assert.Equal(t, before.Pot, h.Pot)
	assert.Equal(t, before.History, h.History)
	assert.Equal(t, before.ActivePlayerID, h.ActivePlayerID)
}

func TestRejectedActionLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 2)
	before := h.Clone()

	require.Error(t, h.Raise("player", 10))
	require.ErrorIs(t, h.Raise("player", math.MaxInt), ErrRaiseExceedsStack)
	require.ErrorIs(t, h.Raise("player", math.MaxInt-40), ErrRaiseExceedsStack)
	require.Error(t, h.Check("player"))
	require.Error(t, h.Call("bot2"))

	assert.Equal(t, before.Players, h.Players)
	assert.Equal(t, before.Pot, h.Pot)
	assert.Equal(t, before.CurrentBet, h.CurrentBet)
	assert.Len(t, h.History, len(before.History))
}

func TestActionsRecordHistory(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 2)

	require.NoError(t, h.Raise("player", 50))
	require.NoError(t, h.Call("bot1"))
	require.NoError(t, h.Fold("bot2"))

	require.Len(t, h.History, 5)
	assert.Equal(t, HandAction{PlayerID: "player", Kind: Raise, Amount: 100, Street: Preflop, Timestamp: h.History[2].Timestamp}, h.History[2])
	assert.Equal(t, 75, h.History[3].Amount)
	assert.Equal(t, Fold, h.History[4].Kind)
	assert.Equal(t, 0, h.History[4].Amount)
}

func TestApplyMessages(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 2)

	require.NoError(t, h.Apply("player", Action{Kind: Raise, Amount: 50}))
	assert.Equal(t, "You raises to $100! Things are heating up!", h.Message)
	require.NoError(t, h.Apply("bot1", Action{Kind: Call}))
	assert.Equal(t, "AI Bot 1 calls $75. Let's see if it pays off!", h.Message)
	require.NoError(t, h.Apply("bot2", Action{Kind: Fold}))
	// The street settled, so the flop message replaces the fold
	assert.Equal(t, "The flop is on the table. What's your move?", h.Message)
	require.NoError(t, h.Apply("bot1", Action{Kind: Check}))
	assert.Equal(t, "AI Bot 1 checks. Playing it safe, huh?", h.Message)
}

// TestPotConservation plays many seeded hands with random legal actions and
// checks the pot and total chips after every step
func TestPotConservation(t *testing.T) {
	t.Parallel()
	rng := randutil.New(2024)

	for game := range 50 {
		h, err := InitializeGame(randutil.New(int64(game)), 3, 1500, WithButton(game%4))
		require.NoError(t, err)
		require.NoError(t, h.DealHoleCards())
		total := h.TotalChips()

		for steps := 0; !h.Complete; steps++ {
			require.Less(t, steps, 200, "hand did not finish")
			id := h.ActivePlayerID
			legal := h.LegalActions(id)
			require.True(t, legal.Any(), "no legal actions for %s", id)

			var a Action
			switch roll := rng.IntN(10); {
			case roll == 0:
				a = Action{Kind: Fold}
			case roll < 3 && legal.CanRaise:
				a = Action{Kind: Raise, Amount: legal.MinRaise + rng.IntN(legal.MaxRaise-legal.MinRaise+1)}
			case legal.CanCheck:
				a = Action{Kind: Check}
			default:
				a = Action{Kind: Call}
			}
			require.NoError(t, h.Apply(id, a), "game %d step %d: %s %s", game, steps, id, a)
			require.NoError(t, h.CheckInvariants())
			require.Equal(t, total, h.TotalChips())
		}
	}
}

func TestLegalActions(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 2)

	legal := h.LegalActions("player")
	assert.Equal(t, LegalActions{
		CanFold:    true,
		CanCall:    true,
		CanRaise:   true,
		CallAmount: 50,
		MinRaise:   50,
		MaxRaise:   1450,
	}, legal)

	assert.Equal(t, LegalActions{}, h.LegalActions("bot1"))

	h.Players[0].Chips = 80
	legal = h.LegalActions("player")
	assert.False(t, legal.CanRaise)
	assert.Equal(t, 30, legal.MaxRaise)

	h.Players[0].Chips = 20
	legal = h.LegalActions("player")
	assert.True(t, legal.CanCall)
	assert.Equal(t, 20, legal.CallAmount)

	// Nobody left to answer a raise
	h.Players[0].Chips = 1500
	h.Players[1].Chips, h.Players[2].Chips = 0, 0
	legal = h.LegalActions("player")
	assert.True(t, legal.CanCall)
	assert.False(t, legal.CanRaise)
}

func TestViewHidesOpponentCards(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 2)

	v := h.View("player")
	assert.Equal(t, "test-game", v.GameID)
	assert.Equal(t, 75, v.Pot)
	assert.Equal(t, "player", v.ActivePlayerID)
	assert.True(t, v.Legal.CanCall)
	require.Len(t, v.Seats, 3)
	assert.Equal(t, h.Players[0].HoleCards, v.Seats[0].HoleCards)
	assert.Nil(t, v.Seats[1].HoleCards)
	assert.True(t, v.Seats[1].HasCards)
	assert.Empty(t, v.Community)

	// Views are copies
	v.Seats[0].HoleCards[0] = h.Players[1].HoleCards[0]
	assert.NotEqual(t, h.Players[0].HoleCards[0], v.Seats[0].HoleCards[0])
}

func TestViewShowsHandsAtShowdown(t *testing.T) {
	t.Parallel()
	h := newTestGame(t, 1)
	require.NoError(t, h.Raise("player", h.Players[0].Chips-25))
	require.NoError(t, h.Call("bot1"))
	require.True(t, h.Complete)

	v := h.View("player")
	assert.NotNil(t, v.Seats[1].HoleCards)
	assert.Len(t, v.Community, 5)
	require.NotNil(t, v.Result)
	assert.True(t, v.Result.Showdown)
}
