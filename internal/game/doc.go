// Package game implements the rules of a single-table no-limit Texas Hold'em
// game between one human seat and a number of scripted opponents.
//
// The main type is HandState, which carries everything about the table:
// seats and stacks, the deck, the board, the pot and the betting state of the
// current street. All mutation goes through its methods, and every method
// either succeeds completely or leaves the state untouched.
//
// # Basic Usage
//
// Set up a table, deal, and act for whoever holds the action:
//
//	rng := randutil.New(42)
//	h, err := game.InitializeGame(rng, 3, 1500)
//	if err != nil {
//	    return err
//	}
//	if err := h.DealHoleCards(); err != nil {
//	    return err
//	}
//	err = h.Call(h.ActivePlayerID)
//
// Between hands call StartNewHand, which rotates the button, posts blinds and
// deals:
//
//	if !h.IsGameOver() {
//	    err = h.StartNewHand(rng)
//	}
//
// # Deterministic Testing
//
// Randomness is always injected. Pass a seeded randutil source, or fix the
// deck and button outright:
//
//	deck := poker.NewDeckFromCards(cards)
//	h, err := game.InitializeGame(rng, 3, 1500, game.WithButton(0), game.WithDeck(deck))
//
// # Betting Rules
//
// A raise amount is the increment over the current bet, so Raise(id, 100)
// against a bet of 50 makes the total 150. The increment must be at least the
// previous raise increment (the big blind at the start of a street). Calls
// larger than a player's stack put the player all-in for what they have. A
// street is settled once every player still in the hand is all-in or has
// acted and matched the current bet.
package game
