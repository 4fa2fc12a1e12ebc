package poker

// HoleCardCategory is a coarse label for a starting hand's strength
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
)

// Weights of the hole-card heuristic
const (
	highCardWeight  = 0.3
	pocketPairBonus = 0.4
	suitedBonus     = 0.1
	connectedBonus  = 0.15
	oneGapBonus     = 0.1
)

// HoleCardStrength scores two hole cards in [0,1]. It is a preflop-biased
// heuristic and deliberately ignores the board.
func HoleCardStrength(c1, c2 Card) float64 {
	high := max(c1.Rank, c2.Rank)
	strength := float64(high) / float64(Ace) * highCardWeight

	if c1.Rank == c2.Rank {
		strength += pocketPairBonus
	}
	if c1.Suit == c2.Suit {
		strength += suitedBonus
	}

	switch absDiff(int(c1.Rank), int(c2.Rank)) {
	case 1:
		strength += connectedBonus
	case 2:
		strength += oneGapBonus
	}

	return min(strength, 1.0)
}

// CategorizeStrength buckets a HoleCardStrength score
func CategorizeStrength(strength float64) HoleCardCategory {
	switch {
	case strength >= 0.65: // QQ+
		return CategoryPremium
	case strength >= 0.55: // 77+, AKs
		return CategoryStrong
	case strength >= 0.4: // small pairs, suited broadway, AK
		return CategoryMedium
	case strength >= 0.3:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}

// absDiff returns the absolute difference between two integers
func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
