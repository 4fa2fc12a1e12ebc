package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem/internal/game"
)

type commandKind int

const (
	cmdContinue commandKind = iota // empty input
	cmdAction
	cmdHint
	cmdStats
	cmdHelp
	cmdQuit
	cmdNewHand
)

type command struct {
	kind   commandKind
	action game.Action
}

const helpText = "Commands: fold (f), check (k), call (c), raise <amount> (r), " +
	"hint (h), stats, next (n), help (?), quit (q). Raises are on top of the current bet."

// parseCommand turns a line of player input into a command
func parseCommand(input string) (command, error) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return command{kind: cmdContinue}, nil
	}

	switch parts[0] {
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "hint", "h":
		return command{kind: cmdHint}, nil
	case "stats":
		return command{kind: cmdStats}, nil
	case "next", "n", "deal":
		return command{kind: cmdNewHand}, nil
	}

	kind, err := game.ParseActionKind(parts[0])
	if err != nil {
		return command{}, fmt.Errorf("%w. Type help for commands", err)
	}
	if kind != game.Raise {
		if len(parts) > 1 {
			return command{}, fmt.Errorf("%s takes no amount", kind)
		}
		return command{kind: cmdAction, action: game.Action{Kind: kind}}, nil
	}

	if len(parts) != 2 {
		return command{}, fmt.Errorf("raise needs an amount, e.g. raise 100")
	}
	amount, err := strconv.Atoi(strings.TrimPrefix(parts[1], "$"))
	if err != nil || amount <= 0 {
		return command{}, fmt.Errorf("invalid raise amount %q", parts[1])
	}
	return command{kind: cmdAction, action: game.Action{Kind: game.Raise, Amount: amount}}, nil
}
