package game

import "fmt"

// Fold gives up the hand
func (h *HandState) Fold(playerID string) error {
	return h.Apply(playerID, Action{Kind: Fold})
}

// Check passes when there is nothing to call
func (h *HandState) Check(playerID string) error {
	return h.Apply(playerID, Action{Kind: Check})
}

// Call matches the current bet, or goes all-in for less when the stack is
// short and the rules allow it
func (h *HandState) Call(playerID string) error {
	return h.Apply(playerID, Action{Kind: Call})
}

// Raise increases the current bet by amount
func (h *HandState) Raise(playerID string, amount int) error {
	return h.Apply(playerID, Action{Kind: Raise, Amount: amount})
}

// Validate reports whether the action would be accepted, without changing
// any state
func (h *HandState) Validate(kind ActionKind, playerID string, amount int) error {
	if err := h.validate(kind, playerID, amount); err != nil {
		return actionErr(kind, playerID, amount, err)
	}
	return nil
}

func (h *HandState) validate(kind ActionKind, playerID string, amount int) error {
	if h.Complete {
		return ErrHandComplete
	}
	p, ok := h.FindPlayer(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Folded {
		return ErrPlayerFolded
	}
	if h.ActivePlayerID != playerID {
		return ErrNotPlayersTurn
	}

	owed := h.ToCall(p)
	switch kind {
	case Fold:
		return nil
	case Check:
		if owed > 0 {
			return fmt.Errorf("%w: %d to call", ErrIllegalCheck, owed)
		}
	case Call:
		if owed == 0 {
			return ErrNothingToCall
		}
		if owed > p.Chips && !h.Rules.AllowShortCall {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientChips, owed, p.Chips)
		}
	case Raise:
		if amount < h.LastRaise || amount <= 0 {
			return fmt.Errorf("%w: minimum %d", ErrRaiseTooSmall, h.LastRaise)
		}
		if amount > p.Chips-owed {
			return fmt.Errorf("%w: %d to call, raise %d, have %d", ErrRaiseExceedsStack, owed, amount, p.Chips)
		}
		if !h.anyoneElseCanAct(p) {
			return ErrNoOneToRaise
		}
	default:
		return ErrUnknownAction
	}
	return nil
}

// anyoneElseCanAct reports whether another player could still answer a bet
func (h *HandState) anyoneElseCanAct(p *Player) bool {
	for _, other := range h.Players {
		if other != p && other.CanAct() {
			return true
		}
	}
	return false
}

// Apply validates and performs an action for the player holding the action,
// then moves the hand forward: to the next player, the next street, or the
// end of the hand. A rejected action is returned as an *ActionError and
// leaves the state unchanged.
func (h *HandState) Apply(playerID string, a Action) error {
	if err := h.Validate(a.Kind, playerID, a.Amount); err != nil {
		return err
	}

	seat := h.seatOf(playerID)
	p := h.Players[seat]
	moved := 0

	switch a.Kind {
	case Fold:
		p.Folded = true
		p.Active = false
		h.Message = fmt.Sprintf("%s folds. Smart move... or is it?", p.Name)

	case Check:
		h.Message = fmt.Sprintf("%s checks. Playing it safe, huh?", p.Name)

	case Call:
		moved = min(h.ToCall(p), p.Chips)
		p.commit(moved)
		h.Pot += moved
		if p.Chips == 0 {
			h.Message = fmt.Sprintf("%s calls $%d and is all-in!", p.Name, moved)
		} else {
			h.Message = fmt.Sprintf("%s calls $%d. Let's see if it pays off!", p.Name, moved)
		}

	case Raise:
		total := h.CurrentBet + a.Amount
		moved = total - p.Bet
		p.commit(moved)
		h.Pot += moved
		h.CurrentBet = total
		h.LastRaise = a.Amount
		// A raise reopens the action for everyone else
		for _, other := range h.Players {
			if other != p && !other.Folded {
				other.Acted = false
			}
		}
		h.Message = fmt.Sprintf("%s raises to $%d! Things are heating up!", p.Name, total)
	}

	p.Acted = true
	h.record(playerID, a.Kind, moved)
	return h.afterAction(seat)
}
