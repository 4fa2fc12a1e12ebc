package game

import (
	"slices"

	"github.com/lox/holdem/poker"
)

// LegalActions describes what a player may do right now. Raise amounts are
// increments over the current bet.
type LegalActions struct {
	CanFold    bool `json:"can_fold"`
	CanCheck   bool `json:"can_check"`
	CanCall    bool `json:"can_call"`
	CanRaise   bool `json:"can_raise"`
	CallAmount int  `json:"call_amount"`
	MinRaise   int  `json:"min_raise"`
	MaxRaise   int  `json:"max_raise"`
}

// Any reports whether the player has any action at all
func (l LegalActions) Any() bool {
	return l.CanFold || l.CanCheck || l.CanCall || l.CanRaise
}

// LegalActions returns the options for the player, all false when it is not
// their turn
func (h *HandState) LegalActions(playerID string) LegalActions {
	var legal LegalActions
	if h.validate(Fold, playerID, 0) != nil {
		return legal
	}
	p, _ := h.FindPlayer(playerID)

	legal.CanFold = true
	legal.CanCheck = h.validate(Check, playerID, 0) == nil
	legal.CanCall = h.validate(Call, playerID, 0) == nil
	if legal.CanCall {
		legal.CallAmount = min(h.ToCall(p), p.Chips)
	}
	legal.MinRaise = h.LastRaise
	legal.MaxRaise = max(p.Chips-h.ToCall(p), 0)
	legal.CanRaise = h.validate(Raise, playerID, legal.MinRaise) == nil
	return legal
}

// SeatView is one seat as seen by a particular viewer
type SeatView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Human      bool         `json:"human"`
	Chips      int          `json:"chips"`
	Bet        int          `json:"bet"`
	Folded     bool         `json:"folded"`
	Active     bool         `json:"active"`
	Dealer     bool         `json:"dealer"`
	SmallBlind bool         `json:"small_blind"`
	BigBlind   bool         `json:"big_blind"`
	AllIn      bool         `json:"all_in"`
	HoleCards  []poker.Card `json:"hole_cards,omitempty"` // nil when hidden
	HasCards   bool         `json:"has_cards"`
}

// TableView is a read-only projection of the table for one viewer.
// Opponents' hole cards are hidden until they are shown down.
type TableView struct {
	GameID         string       `json:"game_id"`
	HandNumber     int          `json:"hand_number"`
	Street         Street       `json:"street"`
	Pot            int          `json:"pot"`
	CurrentBet     int          `json:"current_bet"`
	BigBlind       int          `json:"big_blind"`
	ActivePlayerID string       `json:"active_player_id"`
	Community      []poker.Card `json:"community"`
	Seats          []SeatView   `json:"seats"`
	Message        string       `json:"message"`
	Legal          LegalActions `json:"legal"`
	Result         *Outcome     `json:"result,omitempty"`
	Complete       bool         `json:"complete"`
}

// View projects the state for the given viewer
func (h *HandState) View(viewerID string) TableView {
	v := TableView{
		GameID:         h.ID,
		HandNumber:     h.HandNumber,
		Street:         h.Street,
		Pot:            h.Pot,
		CurrentBet:     h.CurrentBet,
		BigBlind:       h.BigBlindAmount,
		ActivePlayerID: h.ActivePlayerID,
		Community:      h.Board(),
		Message:        h.Message,
		Legal:          h.LegalActions(viewerID),
		Complete:       h.Complete,
	}
	if h.Result != nil {
		v.Result = h.Result.clone()
	}

	shown := h.Complete && h.Result != nil && h.Result.Showdown
	for _, p := range h.Players {
		seat := SeatView{
			ID:         p.ID,
			Name:       p.Name,
			Human:      p.Human,
			Chips:      p.Chips,
			Bet:        p.Bet,
			Folded:     p.Folded,
			Active:     p.Active,
			Dealer:     p.Dealer,
			SmallBlind: p.SmallBlind,
			BigBlind:   p.BigBlind,
			AllIn:      p.AllIn() && !h.Complete,
			HasCards:   len(p.HoleCards) > 0,
		}
		if p.ID == viewerID || (shown && !p.Folded) {
			seat.HoleCards = slices.Clone(p.HoleCards)
		}
		v.Seats = append(v.Seats, seat)
	}
	return v
}
