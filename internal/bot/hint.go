package bot

import (
	"fmt"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// Hint is advice for a seat about to act
type Hint struct {
	Suggestion game.Action
	Category   poker.HoleCardCategory
	Strength   float64
	PotOdds    float64
	Text       string
}

// Advise suggests an action for playerID from the strength category of their
// hole cards and the price of continuing. It returns false when the player
// has no decision to make.
func Advise(h *game.HandState, playerID string) (Hint, bool) {
	legal := h.LegalActions(playerID)
	if !legal.Any() {
		return Hint{}, false
	}
	s, ok := situationFor(h, playerID)
	if !ok {
		return Hint{}, false
	}

	hint := Hint{Category: poker.CategorizeStrength(s.strength), Strength: s.strength, PotOdds: 1}
	if s.pot > 0 {
		hint.PotOdds = float64(s.toCall) / float64(s.pot+s.toCall)
	}

	var t thinking
	t.add("%s is a %s hand", s.cards, hint.Category)

	passive := check()
	switch {
	case legal.CanCheck:
	case legal.CanCall:
		passive = call()
	default:
		passive = fold()
	}

	switch hint.Category {
	case poker.CategoryPremium:
		if legal.CanRaise {
			hint.Suggestion = raise(legal.MinRaise)
			t.add("Build the pot with a raise of %d", legal.MinRaise)
		} else {
			hint.Suggestion = passive
			t.add("Too short to raise, so get the chips in")
		}
	case poker.CategoryStrong:
		hint.Suggestion = passive
		t.add("Good enough to continue, no need to inflate the pot")
	case poker.CategoryMedium:
		if legal.CanCheck || hint.PotOdds < mediumPotOdds {
			hint.Suggestion = passive
			t.add("The price is right at pot odds of %.2f", hint.PotOdds)
		} else {
			hint.Suggestion = fold()
			t.add("Pot odds of %.2f are too steep for this hand", hint.PotOdds)
		}
	default:
		if legal.CanCheck {
			hint.Suggestion = check()
			t.add("Take the free card")
		} else {
			hint.Suggestion = fold()
			t.add("Not worth %d chips", legal.CallAmount)
		}
	}

	hint.Text = fmt.Sprintf("I'd %s. %s.", hint.Suggestion, t.String())
	return hint, true
}
