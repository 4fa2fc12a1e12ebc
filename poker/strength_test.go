package poker

import (
	"math"
	"testing"
)

func TestHoleCardStrength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		cards string
		want  float64
	}{
		{"pocket aces", "Ah As", 0.3 + 0.4},
		{"king queen suited", "Kh Qh", 13.0/14*0.3 + 0.1 + 0.15},
		{"one gapper offsuit", "9c 7d", 9.0/14*0.3 + 0.1},
		{"seven deuce", "7c 2d", 7.0 / 14 * 0.3},
		{"pocket twos", "2c 2d", 2.0/14*0.3 + 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.cards)
			got := HoleCardStrength(cards[0], cards[1])
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HoleCardStrength(%s) = %.4f, want %.4f", tt.cards, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("strength out of range: %f", got)
			}
		})
	}
}

func TestCategorizeStrength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cards string
		want  HoleCardCategory
	}{
		{"Ah As", CategoryPremium},
		{"Qh Qs", CategoryPremium},
		{"8h 8s", CategoryStrong},
		{"Kh Qh", CategoryMedium},
		{"Jc 10d", CategoryWeak},
		{"9c 7d", CategoryTrash},
		{"7c 2d", CategoryTrash},
	}

	for _, tt := range tests {
		cards := MustParseCards(tt.cards)
		if got := CategorizeStrength(HoleCardStrength(cards[0], cards[1])); got != tt.want {
			t.Errorf("CategorizeStrength(%s) = %s, want %s", tt.cards, got, tt.want)
		}
	}
}
