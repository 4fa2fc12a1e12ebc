package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/holdem/poker"
)

// Outcome describes how the last hand was won
type Outcome struct {
	Winners  []Winner    `json:"winners"`
	Pot      int         `json:"pot"`
	Showdown bool        `json:"showdown"`
	Hands    []ShownHand `json:"hands,omitempty"`
}

// Winner is a player's share of the pot
type Winner struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Hand     string `json:"hand,omitempty"`
}

// ShownHand is a hand revealed at showdown
type ShownHand struct {
	PlayerID string           `json:"player_id"`
	Cards    []poker.Card     `json:"cards"`
	Result   poker.HandResult `json:"result"`
}

// IsWinner reports whether the player took a share of the pot
func (o *Outcome) IsWinner(playerID string) bool {
	return slices.ContainsFunc(o.Winners, func(w Winner) bool { return w.PlayerID == playerID })
}

func (o *Outcome) clone() *Outcome {
	cp := *o
	cp.Winners = slices.Clone(o.Winners)
	cp.Hands = make([]ShownHand, len(o.Hands))
	for i, sh := range o.Hands {
		sh.Cards = slices.Clone(sh.Cards)
		sh.Result.Values = slices.Clone(sh.Result.Values)
		cp.Hands[i] = sh
	}
	return &cp
}

// awardUncontested gives the pot to the last player in the hand
func (h *HandState) awardUncontested() {
	seat := h.nextSeat(h.Button, (*Player).InHand)
	winner := h.Players[seat]
	pot := h.Pot

	winner.Chips += pot
	h.Pot = 0
	h.Result = &Outcome{
		Winners: []Winner{{PlayerID: winner.ID, Name: winner.Name, Amount: pot}},
		Pot:     pot,
	}
	h.Message = fmt.Sprintf("%s wins $%d! Everyone else folded.", winner.Name, pot)
	h.finish()
}

// showdown evaluates every remaining hand and splits the pot between the
// best of them. Odd chips go one at a time to the tied winners closest to
// the left of the button.
func (h *HandState) showdown() error {
	h.Street = Showdown
	board := h.Board()

	var seats []int
	var results []poker.HandResult
	var shown []ShownHand
	// Seat order starting left of the button
	for i := 1; i <= len(h.Players); i++ {
		seat := (h.Button + i) % len(h.Players)
		p := h.Players[seat]
		if p.Folded {
			continue
		}
		res, err := poker.Evaluate(slices.Concat(p.HoleCards, board))
		if err != nil {
			return &InvariantError{Op: "showdown", Err: fmt.Errorf("evaluate %s: %w", p.ID, err)}
		}
		seats = append(seats, seat)
		results = append(results, res)
		shown = append(shown, ShownHand{PlayerID: p.ID, Cards: slices.Clone(p.HoleCards), Result: res})
	}

	best := poker.Best(results)
	if len(best) == 0 {
		return &InvariantError{Op: "showdown", Err: fmt.Errorf("no players left in the hand")}
	}

	pot := h.Pot
	share, remainder := pot/len(best), pot%len(best)
	winners := make([]Winner, 0, len(best))
	for i, idx := range best {
		p := h.Players[seats[idx]]
		amount := share
		if i < remainder {
			amount++
		}
		p.Chips += amount
		winners = append(winners, Winner{PlayerID: p.ID, Name: p.Name, Amount: amount, Hand: results[idx].Name})
	}
	h.Pot = 0

	h.Result = &Outcome{Winners: winners, Pot: pot, Showdown: true, Hands: shown}
	if len(winners) == 1 {
		h.Message = fmt.Sprintf("%s wins with %s! $%d to the victor!", winners[0].Name, winners[0].Hand, pot)
	} else {
		names := make([]string, len(winners))
		for i, w := range winners {
			names[i] = w.Name
		}
		h.Message = fmt.Sprintf("It's a tie! %s split the pot with %s!", strings.Join(names, " and "), winners[0].Hand)
	}
	h.finish()
	return nil
}

func (h *HandState) finish() {
	h.clearActive()
	h.Complete = true
}
