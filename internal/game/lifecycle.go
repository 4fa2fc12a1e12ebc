package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

var ErrAlreadyDealt = errors.New("hole cards already dealt")

// InitializeGame seats the human and botCount bots with equal stacks, draws
// the button, posts blinds and points the action at the first player to act.
// Hole cards are dealt separately with DealHoleCards.
func InitializeGame(rng randutil.Source, botCount, startingChips int, opts ...Option) (*HandState, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: rng is required", ErrInvalidSetup)
	}
	s := newSetup(opts)

	seats := botCount + 1
	switch {
	case botCount < 1 || seats > MaxPlayers:
		return nil, fmt.Errorf("%w: bots must be between 1 and %d, got %d", ErrInvalidSetup, MaxPlayers-1, botCount)
	case startingChips <= 0:
		return nil, fmt.Errorf("%w: starting chips must be positive, got %d", ErrInvalidSetup, startingChips)
	case s.smallBlind <= 0 || s.bigBlind < s.smallBlind:
		return nil, fmt.Errorf("%w: blinds %d/%d", ErrInvalidSetup, s.smallBlind, s.bigBlind)
	case s.button >= seats:
		return nil, fmt.Errorf("%w: button seat %d with %d players", ErrInvalidSetup, s.button, seats)
	}

	players := make([]*Player, 0, seats)
	players = append(players, &Player{ID: HumanPlayerID, Name: HumanPlayerName, Human: true, Chips: startingChips})
	for i := 1; i <= botCount; i++ {
		players = append(players, botPlayer(i, startingChips))
	}

	button := s.button
	if button < 0 {
		button = rng.IntN(seats)
	}

	deck := s.deck
	if deck == nil {
		deck = poker.NewShuffledDeck(rng)
	}

	h := &HandState{
		ID:               s.gameID,
		HandNumber:       1,
		Players:          players,
		Button:           button,
		SmallBlindAmount: s.smallBlind,
		BigBlindAmount:   s.bigBlind,
		Deck:             deck,
		Rules:            s.rules,
		clock:            s.clock,
	}
	h.startHand()
	h.Message = "Welcome to the table! Let's see if you've got what it takes."
	return h, nil
}

// DealHoleCards deals two cards to every player in the hand, one at a time
// starting left of the button
func (h *HandState) DealHoleCards() error {
	for _, p := range h.Players {
		if len(p.HoleCards) > 0 {
			return ErrAlreadyDealt
		}
	}

	for range 2 {
		for i := 1; i <= len(h.Players); i++ {
			p := h.Players[(h.Button+i)%len(h.Players)]
			if p.Folded {
				continue
			}
			card, err := h.Deck.Draw()
			if err != nil {
				return &InvariantError{Op: "deal hole cards", Err: err}
			}
			p.HoleCards = append(p.HoleCards, card)
		}
	}
	h.Message = "Hole cards dealt. Place your bets!"

	// Blinds can put everyone all-in before a decision is made
	if h.ActivePlayerID == "" && !h.Complete {
		return h.runOut()
	}
	return nil
}

// StartNewHand moves the button to the next funded seat and starts a fresh
// hand with a new deck, blinds posted and hole cards dealt
func (h *HandState) StartNewHand(rng randutil.Source) error {
	if !h.Complete {
		h.Abort()
	}
	if h.count(func(p *Player) bool { return p.Chips > 0 }) < 2 {
		return ErrGameOver
	}

	h.Button = h.nextSeat(h.Button, func(p *Player) bool { return p.Chips > 0 })
	h.HandNumber++
	h.Deck = poker.NewShuffledDeck(rng)
	h.startHand()
	if err := h.DealHoleCards(); err != nil {
		return err
	}
	if !h.Complete {
		h.Message = "New hand! May the cards be in your favor."
	}
	return nil
}

// Abort abandons an unfinished hand and returns every contribution to the
// player who made it
func (h *HandState) Abort() {
	for _, p := range h.Players {
		p.Chips += p.Contributed
		p.Contributed = 0
		p.Bet = 0
	}
	h.Pot = 0
	h.finish()
	h.Message = "Hand abandoned. All bets returned."
}

// startHand resets per-hand state around the current button and posts blinds
func (h *HandState) startHand() {
	for _, p := range h.Players {
		p.resetForHand()
	}
	h.Community = [5]*poker.Card{}
	h.Pot = 0
	h.Street = Preflop
	h.History = nil
	h.Result = nil
	h.Complete = false
	h.clearActive()

	funded := func(p *Player) bool { return !p.Folded }
	h.Players[h.Button].Dealer = true

	var sb, bb int
	if h.count(funded) == 2 {
		// Heads-up: the button posts the small blind
		sb = h.Button
	} else {
		sb = h.nextSeat(h.Button, funded)
	}
	bb = h.nextSeat(sb, funded)

	h.Players[sb].SmallBlind = true
	h.Players[bb].BigBlind = true
	h.postBlind(sb, h.SmallBlindAmount, PostSmallBlind)
	h.postBlind(bb, h.BigBlindAmount, PostBigBlind)

	h.CurrentBet = max(h.Players[sb].Bet, h.Players[bb].Bet)
	h.LastRaise = h.BigBlindAmount

	if first := h.nextSeat(bb, (*Player).CanAct); first >= 0 {
		h.setActive(first)
	}
	// A lone player with chips facing only all-in blinds has nothing to decide
	if h.count((*Player).CanAct) < 2 && h.isSettledPreflop() {
		h.clearActive()
	}
}

// isSettledPreflop reports whether the only player able to act has already
// matched the blinds
func (h *HandState) isSettledPreflop() bool {
	for _, p := range h.Players {
		if p.CanAct() && p.Bet < h.CurrentBet {
			return false
		}
	}
	return true
}

func (h *HandState) postBlind(seat, amount int, kind ActionKind) {
	p := h.Players[seat]
	posted := min(amount, p.Chips)
	p.commit(posted)
	h.Pot += posted
	h.record(p.ID, kind, posted)
}

// IsGameOver reports whether at most one player still has chips, counting
// chips committed to an unfinished hand
func (h *HandState) IsGameOver() bool {
	return h.count(h.hasStake) <= 1
}

// Winner returns the id of the last player with chips once the game is over
func (h *HandState) Winner() (string, bool) {
	if !h.IsGameOver() {
		return "", false
	}
	for _, p := range h.Players {
		if h.hasStake(p) {
			return p.ID, true
		}
	}
	return "", false
}

func (h *HandState) hasStake(p *Player) bool {
	if p.Chips > 0 {
		return true
	}
	return !h.Complete && !p.Folded && p.Contributed > 0
}

// GameStats summarises the table
type GameStats struct {
	TotalPlayers      int    `json:"total_players"`
	ActivePlayers     int    `json:"active_players"`
	EliminatedPlayers int    `json:"eliminated_players"`
	Pot               int    `json:"pot"`
	Street            Street `json:"street"`
	HandNumber        int    `json:"hand_number"`
}

// Stats counts players still able to play this hand and players knocked out
func (h *HandState) Stats() GameStats {
	return GameStats{
		TotalPlayers:      len(h.Players),
		ActivePlayers:     h.count((*Player).CanAct),
		EliminatedPlayers: h.count(func(p *Player) bool { return !h.hasStake(p) }),
		Pot:               h.Pot,
		Street:            h.Street,
		HandNumber:        h.HandNumber,
	}
}
