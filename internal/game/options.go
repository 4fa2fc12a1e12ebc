package game

import (
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdem/poker"
)

const (
	DefaultSmallBlind    = 25
	DefaultBigBlind      = 50
	DefaultStartingChips = 1500

	// MaxPlayers is the most seats one deck can serve: 44 hole cards, three
	// burns and five community cards.
	MaxPlayers = 22
)

type setup struct {
	smallBlind int
	bigBlind   int
	button     int
	deck       *poker.Deck
	rules      Rules
	clock      quartz.Clock
	gameID     string
}

// Option configures a new game
type Option func(*setup)

// WithBlinds sets the blind amounts
func WithBlinds(small, big int) Option {
	return func(s *setup) {
		s.smallBlind = small
		s.bigBlind = big
	}
}

// WithButton fixes the dealer seat instead of drawing it at random
func WithButton(seat int) Option {
	return func(s *setup) { s.button = seat }
}

// WithDeck uses the given deck for the first hand
func WithDeck(deck *poker.Deck) Option {
	return func(s *setup) { s.deck = deck }
}

// WithShortCalls sets whether a call may be made all-in for less than owed
func WithShortCalls(allow bool) Option {
	return func(s *setup) { s.rules.AllowShortCall = allow }
}

// WithClock sets the clock used for action timestamps
func WithClock(clock quartz.Clock) Option {
	return func(s *setup) { s.clock = clock }
}

// WithGameID sets the game id instead of generating one
func WithGameID(id string) Option {
	return func(s *setup) { s.gameID = id }
}

func newSetup(opts []Option) setup {
	s := setup{
		smallBlind: DefaultSmallBlind,
		bigBlind:   DefaultBigBlind,
		button:     -1,
		rules:      DefaultRules(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.gameID == "" {
		s.gameID = NewGameID()
	}
	return s
}

// NewGameID returns a time-ordered unique game id
func NewGameID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
