package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/holdem/poker"
)

type EvalCmd struct {
	Hands []string `arg:"" help:"Hands to rank, each a quoted card list such as 'As Kd'"`
	Board string   `short:"B" help:"Community cards shared by every hand, e.g. '2c 7d 9h'"`
}

// evaluation is one ranked hand
type evaluation struct {
	Input    string
	Cards    []poker.Card
	Result   poker.HandResult
	Strength float64 // preflop strength, two-card hands without a board only
	Category poker.HoleCardCategory
	Winner   bool
}

func (c *EvalCmd) Run() error {
	evals, err := evaluate(c.Hands, c.Board)
	if err != nil {
		return err
	}
	renderEvaluations(os.Stdout, evals)
	return nil
}

// evaluate ranks every hand against the board and marks the best. Two-card
// hands with no board are rated on preflop strength instead.
func evaluate(hands []string, boardText string) ([]evaluation, error) {
	board, err := poker.ParseCards(boardText)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if len(board) > 5 {
		return nil, errors.New("board: at most five cards")
	}

	seen := make(map[poker.Card]bool)
	for _, c := range board {
		if seen[c] {
			return nil, fmt.Errorf("%w: %s", poker.ErrDuplicateCard, c)
		}
		seen[c] = true
	}

	evals := make([]evaluation, 0, len(hands))
	for _, text := range hands {
		cards, err := poker.ParseCards(text)
		if err != nil {
			return nil, fmt.Errorf("hand %q: %w", text, err)
		}
		for _, c := range cards {
			if seen[c] {
				return nil, fmt.Errorf("hand %q: %w: %s", text, poker.ErrDuplicateCard, c)
			}
			seen[c] = true
		}

		ev := evaluation{Input: text, Cards: cards}
		if len(board) == 0 && len(cards) == 2 {
			ev.Strength = poker.HoleCardStrength(cards[0], cards[1])
			ev.Category = poker.CategorizeStrength(ev.Strength)
			evals = append(evals, ev)
			continue
		}

		all := append(append([]poker.Card{}, cards...), board...)
		ev.Result, err = poker.Evaluate(all)
		if err != nil {
			return nil, fmt.Errorf("hand %q: %w", text, err)
		}
		evals = append(evals, ev)
	}

	ranked := make([]poker.HandResult, 0, len(evals))
	for _, ev := range evals {
		if ev.Category == "" {
			ranked = append(ranked, ev.Result)
		}
	}
	if len(ranked) == len(evals) && len(evals) > 1 {
		for _, i := range poker.Best(ranked) {
			evals[i].Winner = true
		}
	}
	return evals, nil
}

func renderEvaluations(w io.Writer, evals []evaluation) {
	for _, ev := range evals {
		var line string
		if ev.Category != "" {
			line = fmt.Sprintf("%-16s strength %.2f (%s)", formatPlain(ev.Cards), ev.Strength, ev.Category)
		} else {
			line = fmt.Sprintf("%-16s %s", formatPlain(ev.Cards), ev.Result)
		}
		if ev.Winner {
			line += "  " + titleStyle.Render("best")
		}
		fmt.Fprintln(w, line)
	}
}

func formatPlain(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
