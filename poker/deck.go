package poker

import (
	"errors"

	"github.com/lox/holdem/internal/randutil"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
// With 52 cards a table of up to 22 players can be dealt (44 hole cards,
// 3 burns and 5 board cards), so hitting this means street bookkeeping is broken.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered sequence of cards consumed from the tail
type Deck struct {
	Remaining []Card `json:"cards"`
}

// NewOrderedDeck returns the 52 cards in suit by rank order, unshuffled
func NewOrderedDeck() *Deck {
	d := &Deck{Remaining: make([]Card, 0, 52)}
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.Remaining = append(d.Remaining, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffledDeck creates a fresh 52-card deck shuffled with rng
func NewShuffledDeck(rng randutil.Source) *Deck {
	d := NewOrderedDeck()
	d.Shuffle(rng)
	return d
}

// NewDeckFromCards builds a deck that will deal cards in the given order,
// first card first. Useful for deterministic tests.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{Remaining: make([]Card, len(cards))}
	for i, c := range cards {
		d.Remaining[len(cards)-1-i] = c
	}
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle(rng randutil.Source) {
	for i := len(d.Remaining) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.Remaining[i], d.Remaining[j] = d.Remaining[j], d.Remaining[i]
	}
}

// Draw removes and returns the card at the tail of the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.Remaining) == 0 {
		return Card{}, ErrEmptyDeck
	}
	last := len(d.Remaining) - 1
	c := d.Remaining[last]
	d.Remaining = d.Remaining[:last]
	return c, nil
}

// DrawN draws n cards in order
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.Remaining) {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, 0, n)
	for range n {
		c, _ := d.Draw()
		cards = append(cards, c)
	}
	return cards, nil
}

// Burn draws one card and discards it
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.Remaining)
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return &Deck{Remaining: append([]Card(nil), d.Remaining...)}
}

// Cards returns a copy of the remaining cards, next card to be dealt last
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.Remaining...)
}
