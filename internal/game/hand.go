package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem/poker"
)

// HandState is the complete state of the table: the seats, the current hand
// and the betting state of the current street.
type HandState struct {
	ID               string         `json:"id"`
	HandNumber       int            `json:"hand_number"`
	Players          []*Player      `json:"players"`
	Community        [5]*poker.Card `json:"community"`
	Pot              int            `json:"pot"`
	ActivePlayerID   string         `json:"active_player_id"`
	Street           Street         `json:"street"`
	CurrentBet       int            `json:"current_bet"`
	LastRaise        int            `json:"last_raise"`
	Button           int            `json:"button"`
	SmallBlindAmount int            `json:"small_blind"`
	BigBlindAmount   int            `json:"big_blind"`
	Deck             *poker.Deck    `json:"deck"`
	History          []HandAction   `json:"history"`
	Message          string         `json:"message"`
	Result           *Outcome       `json:"result,omitempty"`
	Complete         bool           `json:"complete"`
	Rules            Rules          `json:"rules"`

	clock quartz.Clock
}

// SetClock sets the clock used to timestamp actions. States restored from
// storage use the real clock until one is set.
func (h *HandState) SetClock(clock quartz.Clock) {
	h.clock = clock
}

func (h *HandState) now() time.Time {
	if h.clock == nil {
		h.clock = quartz.NewReal()
	}
	return h.clock.Now()
}

// FindPlayer returns the player with the given id
func (h *HandState) FindPlayer(id string) (*Player, bool) {
	if seat := h.seatOf(id); seat >= 0 {
		return h.Players[seat], true
	}
	return nil, false
}

// ActivePlayer returns the player holding the action, or nil
func (h *HandState) ActivePlayer() *Player {
	p, _ := h.FindPlayer(h.ActivePlayerID)
	return p
}

// Human returns the human seat, or nil if the table has none
func (h *HandState) Human() *Player {
	for _, p := range h.Players {
		if p.Human {
			return p
		}
	}
	return nil
}

// Board returns the revealed community cards in deal order
func (h *HandState) Board() []poker.Card {
	board := make([]poker.Card, 0, len(h.Community))
	for _, c := range h.Community {
		if c != nil {
			board = append(board, *c)
		}
	}
	return board
}

// ToCall returns how many chips the player owes to match the current bet
func (h *HandState) ToCall(p *Player) int {
	return max(h.CurrentBet-p.Bet, 0)
}

// Clone returns an independent deep copy of the state
func (h *HandState) Clone() *HandState {
	cp := *h
	cp.Players = make([]*Player, len(h.Players))
	for i, p := range h.Players {
		cp.Players[i] = p.clone()
	}
	for i, c := range h.Community {
		if c != nil {
			card := *c
			cp.Community[i] = &card
		}
	}
	if h.Deck != nil {
		cp.Deck = h.Deck.Clone()
	}
	cp.History = slices.Clone(h.History)
	if h.Result != nil {
		cp.Result = h.Result.clone()
	}
	return &cp
}

func (h *HandState) seatOf(id string) int {
	for i, p := range h.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextSeat returns the first seat clockwise after from that satisfies pred,
// or -1 if none does. from itself is checked last.
func (h *HandState) nextSeat(from int, pred func(*Player) bool) int {
	n := len(h.Players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if pred(h.Players[seat]) {
			return seat
		}
	}
	return -1
}

func (h *HandState) count(pred func(*Player) bool) int {
	n := 0
	for _, p := range h.Players {
		if pred(p) {
			n++
		}
	}
	return n
}

func (h *HandState) setActive(seat int) {
	h.clearActive()
	h.Players[seat].Active = true
	h.ActivePlayerID = h.Players[seat].ID
}

func (h *HandState) clearActive() {
	for _, p := range h.Players {
		p.Active = false
	}
	h.ActivePlayerID = ""
}

func (h *HandState) record(playerID string, kind ActionKind, amount int) {
	h.History = append(h.History, HandAction{
		PlayerID:  playerID,
		Kind:      kind,
		Amount:    amount,
		Street:    h.Street,
		Timestamp: h.now(),
	})
}

// isSettled reports whether the betting on the current street is over. Every
// player still in the hand must be all-in, or have acted and matched the
// current bet.
func (h *HandState) isSettled() bool {
	for _, p := range h.Players {
		if p.Folded || p.Chips == 0 {
			continue
		}
		if !p.Acted || p.Bet != h.CurrentBet {
			return false
		}
	}
	return true
}

// afterAction moves the hand forward once seat has acted
func (h *HandState) afterAction(seat int) error {
	if h.count((*Player).InHand) == 1 {
		h.awardUncontested()
		return nil
	}
	if h.isSettled() {
		return h.advanceStreet()
	}
	next := h.nextSeat(seat, (*Player).CanAct)
	if next < 0 {
		return &InvariantError{Op: "advance action", Err: fmt.Errorf("unsettled street with nobody to act")}
	}
	h.setActive(next)
	return nil
}

// advanceStreet closes the current street and deals the next one. When fewer
// than two players can still bet, the board is dealt out to showdown.
func (h *HandState) advanceStreet() error {
	for {
		for _, p := range h.Players {
			p.Bet = 0
			p.Acted = false
		}
		h.CurrentBet = 0
		h.LastRaise = h.BigBlindAmount
		h.clearActive()

		if h.Street >= River {
			return h.showdown()
		}

		h.Street++
		if err := h.dealCommunity(h.Street); err != nil {
			return err
		}
		h.Message = streetMessage(h.Street)

		if h.count((*Player).CanAct) >= 2 {
			h.setActive(h.nextSeat(h.Button, (*Player).CanAct))
			return nil
		}
	}
}

// runOut deals the remaining streets when nobody can act
func (h *HandState) runOut() error {
	return h.advanceStreet()
}

func (h *HandState) dealCommunity(street Street) error {
	if err := h.Deck.Burn(); err != nil {
		return &InvariantError{Op: "burn before " + street.String(), Err: err}
	}
	first := 0
	switch street {
	case Turn:
		first = 3
	case River:
		first = 4
	}
	for i := range street.cardsDealt() {
		card, err := h.Deck.Draw()
		if err != nil {
			return &InvariantError{Op: "deal " + street.String(), Err: err}
		}
		h.Community[first+i] = &card
	}
	return nil
}

func streetMessage(s Street) string {
	switch s {
	case Flop:
		return "The flop is on the table. What's your move?"
	case Turn:
		return "Turn card revealed. The stakes are rising!"
	case River:
		return "River card is down! Time for the final showdown!"
	}
	return ""
}
