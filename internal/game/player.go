package game

import (
	"fmt"
	"slices"

	"github.com/lox/holdem/poker"
)

const (
	HumanPlayerID   = "player"
	HumanPlayerName = "You"
)

// Player represents a seat at the table
type Player struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Human       bool         `json:"human,omitempty"`
	Chips       int          `json:"chips"`
	HoleCards   []poker.Card `json:"hole_cards,omitempty"`
	Folded      bool         `json:"folded"`
	Active      bool         `json:"active"` // holds the action
	Dealer      bool         `json:"dealer"`
	SmallBlind  bool         `json:"small_blind"`
	BigBlind    bool         `json:"big_blind"`
	Bet         int          `json:"bet"`         // this street
	Contributed int          `json:"contributed"` // this hand
	Acted       bool         `json:"acted"`       // this street
}

func botPlayer(n, chips int) *Player {
	return &Player{
		ID:    fmt.Sprintf("bot%d", n),
		Name:  fmt.Sprintf("AI Bot %d", n),
		Chips: chips,
	}
}

// InHand returns true if the player has not folded
func (p *Player) InHand() bool {
	return !p.Folded
}

// CanAct returns true if the player can still make decisions this hand
func (p *Player) CanAct() bool {
	return !p.Folded && p.Chips > 0
}

// AllIn returns true if the player is in the hand with no chips behind
func (p *Player) AllIn() bool {
	return !p.Folded && p.Chips == 0 && p.Contributed > 0
}

// Eliminated returns true if the player has no chips and nothing at stake
func (p *Player) Eliminated() bool {
	return p.Chips == 0 && (p.Folded || p.Contributed == 0)
}

// resetForHand clears per-hand state. Players without chips sit the hand out
// as folded.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Folded = p.Chips == 0
	p.Active = false
	p.Dealer = false
	p.SmallBlind = false
	p.BigBlind = false
	p.Bet = 0
	p.Contributed = 0
	p.Acted = false
}

// commit moves chips from the stack into the pot as part of this street's bet
func (p *Player) commit(amount int) {
	p.Chips -= amount
	p.Bet += amount
	p.Contributed += amount
}

func (p *Player) clone() *Player {
	cp := *p
	cp.HoleCards = slices.Clone(p.HoleCards)
	return &cp
}
