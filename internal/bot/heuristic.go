// Package bot implements the scripted opponents.
package bot

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// Thresholds of the decision table
const (
	openStrength   = 0.7
	strongStrength = 0.75
	mediumStrength = 0.4

	openDraw   = 0.3
	strongDraw = 0.4
	mediumDraw = 0.6
	bluffDraw  = 0.85

	mediumPotOdds  = 0.3
	bluffStackFrac = 0.1
)

// Decision is an action together with the numbers that produced it
type Decision struct {
	Action    game.Action
	Strength  float64
	PotOdds   float64
	Reasoning string
}

// Heuristic plays on hole-card strength and pot odds, mixed with a random
// draw per decision. It never mutates the hand.
type Heuristic struct {
	rng    randutil.Source
	logger *log.Logger
}

// NewHeuristic creates a heuristic player. rng must not be nil.
func NewHeuristic(rng randutil.Source, logger *log.Logger) *Heuristic {
	if rng == nil {
		panic("bot: NewHeuristic requires a random source")
	}
	return &Heuristic{rng: rng, logger: logger.WithPrefix("bot")}
}

// Decide returns the action playerID should take. The caller applies it.
func (b *Heuristic) Decide(h *game.HandState, playerID string) game.Action {
	return b.Decision(h, playerID).Action
}

// Decision is Decide with its reasoning attached
func (b *Heuristic) Decision(h *game.HandState, playerID string) Decision {
	s, ok := situationFor(h, playerID)
	if !ok {
		return Decision{Action: game.Action{Kind: game.Fold}, Reasoning: "No cards to play"}
	}

	d := decide(s, b.rng.Float64)
	b.logger.Debug("bot decision",
		"player", playerID,
		"street", h.Street,
		"cards", s.cards,
		"strength", d.Strength,
		"toCall", s.toCall,
		"pot", s.pot,
		"potOdds", d.PotOdds,
		"action", d.Action,
		"reasoning", d.Reasoning)
	return d
}

// situation is everything the decision table looks at
type situation struct {
	cards    string
	strength float64
	toCall   int
	pot      int
	chips    int
	bigBlind int
	minRaise int
	canRaise bool // someone is left to call a raise
}

func situationFor(h *game.HandState, playerID string) (situation, bool) {
	p, ok := h.FindPlayer(playerID)
	if !ok || len(p.HoleCards) < 2 {
		return situation{}, false
	}
	names := make([]string, len(p.HoleCards))
	for i, c := range p.HoleCards {
		names[i] = c.String()
	}
	return situation{
		cards:    strings.Join(names, " "),
		strength: poker.HoleCardStrength(p.HoleCards[0], p.HoleCards[1]),
		toCall:   h.ToCall(p),
		pot:      h.Pot,
		chips:    p.Chips,
		bigBlind: h.BigBlindAmount,
		minRaise: h.LastRaise,
		canRaise: h.LegalActions(playerID).CanRaise,
	}, true
}

func fold() game.Action  { return game.Action{Kind: game.Fold} }
func check() game.Action { return game.Action{Kind: game.Check} }
func call() game.Action  { return game.Action{Kind: game.Call} }

func raise(amount int) game.Action {
	return game.Action{Kind: game.Raise, Amount: amount}
}

// decide runs the decision table. draw is consulted lazily, at most twice.
func decide(s situation, draw func() float64) Decision {
	var t thinking
	d := Decision{Strength: s.strength, PotOdds: 1}
	if s.pot > 0 {
		d.PotOdds = float64(s.toCall) / float64(s.pot+s.toCall)
	}
	t.add("I have %s (strength %.2f)", s.cards, s.strength)

	switch {
	case s.toCall == 0:
		if s.strength > openStrength && draw() > openDraw {
			amount := min(s.bigBlind, s.chips)
			if amount >= s.minRaise && amount > 0 && s.canRaise {
				t.add("Nothing to call with a good hand, betting %d", amount)
				d.Action = raise(amount)
				break
			}
			t.add("Cannot bet the minimum here")
		}
		t.add("Nothing to call, checking")
		d.Action = check()

	case s.toCall > s.chips:
		t.add("Calling %d would cost more than my %d chips", s.toCall, s.chips)
		d.Action = fold()

	case s.strength > strongStrength:
		if draw() > strongDraw && s.canRaise && s.chips > s.toCall+s.minRaise {
			amount := min(int(float64(s.minRaise)*(1+draw())), s.chips-s.toCall)
			t.add("Strong hand, raising %d", amount)
			d.Action = raise(amount)
			break
		}
		t.add("Strong hand, calling %d", s.toCall)
		d.Action = call()

	case s.strength > mediumStrength:
		if d.PotOdds < mediumPotOdds {
			t.add("Pot odds of %.2f are good enough to call", d.PotOdds)
			d.Action = call()
		} else if draw() > mediumDraw {
			t.add("Pot odds of %.2f are poor but I'll see another card", d.PotOdds)
			d.Action = call()
		} else {
			t.add("Pot odds of %.2f are too poor for this hand", d.PotOdds)
			d.Action = fold()
		}

	default:
		if draw() > bluffDraw && float64(s.toCall) < bluffStackFrac*float64(s.chips) {
			t.add("Weak hand, but %d is cheap enough to float", s.toCall)
			d.Action = call()
		} else {
			t.add("Weak hand, folding")
			d.Action = fold()
		}
	}

	d.Reasoning = t.String()
	return d
}
