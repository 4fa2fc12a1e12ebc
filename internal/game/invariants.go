package game

import (
	"fmt"

	"github.com/lox/holdem/poker"
)

// TotalChips returns every chip on the table, stacks plus pot
func (h *HandState) TotalChips() int {
	total := h.Pot
	for _, p := range h.Players {
		total += p.Chips
	}
	return total
}

// CheckInvariants verifies the state is internally consistent. A failure is
// returned as an *InvariantError.
func (h *HandState) CheckInvariants() error {
	if err := h.checkInvariants(); err != nil {
		return &InvariantError{Op: "check", Err: err}
	}
	return nil
}

func (h *HandState) checkInvariants() error {
	if err := h.checkCards(); err != nil {
		return err
	}

	contributed, maxBet, active := 0, 0, 0
	for _, p := range h.Players {
		if p.Chips < 0 || p.Bet < 0 || p.Contributed < 0 {
			return fmt.Errorf("%s has negative chips: stack %d, bet %d, contributed %d", p.ID, p.Chips, p.Bet, p.Contributed)
		}
		if p.Bet > p.Contributed {
			return fmt.Errorf("%s bet %d exceeds contribution %d", p.ID, p.Bet, p.Contributed)
		}
		contributed += p.Contributed
		maxBet = max(maxBet, p.Bet)
		if p.Active {
			active++
			if p.ID != h.ActivePlayerID {
				return fmt.Errorf("%s flagged active but action is on %q", p.ID, h.ActivePlayerID)
			}
			if p.Folded {
				return fmt.Errorf("%s is active after folding", p.ID)
			}
		}
	}

	if active > 1 {
		return fmt.Errorf("%d players flagged active", active)
	}
	if h.ActivePlayerID != "" && active == 0 {
		return fmt.Errorf("action on %q but nobody flagged active", h.ActivePlayerID)
	}
	if h.Complete {
		if h.Pot != 0 {
			return fmt.Errorf("pot %d left after the hand ended", h.Pot)
		}
		return nil
	}
	if h.Pot != contributed {
		return fmt.Errorf("pot %d does not match contributions %d", h.Pot, contributed)
	}
	if h.CurrentBet != maxBet {
		return fmt.Errorf("current bet %d does not match largest bet %d", h.CurrentBet, maxBet)
	}
	return nil
}

// checkCards rejects out-of-range cards and any card appearing twice across
// the hole cards, board and deck
func (h *HandState) checkCards() error {
	seen := make(map[poker.Card]string, 52)
	add := func(c poker.Card, where string) error {
		if !c.Valid() {
			return fmt.Errorf("%w in %s: rank %d suit %d", poker.ErrInvalidCard, where, c.Rank, c.Suit)
		}
		if prev, dup := seen[c]; dup {
			return fmt.Errorf("%w: %s in %s and %s", poker.ErrDuplicateCard, c, prev, where)
		}
		seen[c] = where
		return nil
	}

	for _, p := range h.Players {
		for _, c := range p.HoleCards {
			if err := add(c, p.ID); err != nil {
				return err
			}
		}
	}
	for _, c := range h.Community {
		if c == nil {
			continue
		}
		if err := add(*c, "board"); err != nil {
			return err
		}
	}
	if h.Deck != nil {
		for _, c := range h.Deck.Remaining {
			if err := add(c, "deck"); err != nil {
				return err
			}
		}
	}
	return nil
}
