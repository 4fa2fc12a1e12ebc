package poker

import (
	"errors"
	"fmt"
	"slices"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable hand category
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

var (
	ErrTooFewCards   = errors.New("at least 5 cards are required")
	ErrDuplicateCard = errors.New("duplicate card")
)

// HandResult is the ranked value of a set of cards: its category and the
// rank values that break ties within the category, most significant first.
type HandResult struct {
	Rank   HandType `json:"rank"`
	Name   string   `json:"name"`
	Values []int    `json:"values"`
}

// String returns e.g. "Full House [14 13]"
func (r HandResult) String() string {
	return fmt.Sprintf("%s %v", r.Name, r.Values)
}

func result(t HandType, values ...int) HandResult {
	return HandResult{Rank: t, Name: t.String(), Values: values}
}

// Evaluate ranks the best five-card hand contained in cards
func Evaluate(cards []Card) (HandResult, error) {
	if len(cards) < 5 {
		return HandResult{}, fmt.Errorf("%w: got %d", ErrTooFewCards, len(cards))
	}

	var rankCounts [Ace + 1]int
	var suitRanks [4][]int
	seen := make(map[Card]struct{}, len(cards))

	for _, c := range cards {
		if !c.Valid() {
			return HandResult{}, fmt.Errorf("%w: rank %d suit %d", ErrInvalidCard, c.Rank, c.Suit)
		}
		if _, dup := seen[c]; dup {
			return HandResult{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c] = struct{}{}
		rankCounts[c.Rank]++
		suitRanks[c.Suit] = append(suitRanks[c.Suit], int(c.Rank))
	}

	// Flush: any suit with at least five members
	var flushRanks []int
	for _, ranks := range suitRanks {
		if len(ranks) >= 5 {
			flushRanks = descending(ranks)
			break
		}
	}

	// Straight flush only counts cards of the flush suit
	if flushRanks != nil {
		if high, ok := straightHigh(flushRanks); ok {
			if high == int(Ace) {
				return result(RoyalFlush, high), nil
			}
			return result(StraightFlush, high), nil
		}
	}

	groups := groupRanks(rankCounts)

	if groups[0].count == 4 {
		return result(FourOfAKind, groups[0].rank, highestExcept(groups, groups[0].rank)), nil
	}

	if groups[0].count == 3 && len(groups) > 1 && groups[1].count >= 2 {
		return result(FullHouse, groups[0].rank, groups[1].rank), nil
	}

	if flushRanks != nil {
		return result(Flush, flushRanks[:5]...), nil
	}

	distinct := make([]int, 0, len(groups))
	for _, g := range groups {
		distinct = append(distinct, g.rank)
	}
	if high, ok := straightHigh(descending(distinct)); ok {
		return result(Straight, high), nil
	}

	switch {
	case groups[0].count == 3:
		return result(ThreeOfAKind, append([]int{groups[0].rank}, kickers(groups[1:], 2)...)...), nil
	case groups[0].count == 2 && groups[1].count == 2:
		// A third pair can only serve as the kicker
		hi, lo := groups[0].rank, groups[1].rank
		return result(TwoPair, hi, lo, highestExcept(groups, hi, lo)), nil
	case groups[0].count == 2:
		return result(OnePair, append([]int{groups[0].rank}, kickers(groups[1:], 3)...)...), nil
	default:
		return result(HighCard, kickers(groups, 5)...), nil
	}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie
func Compare(a, b HandResult) int {
	if a.Rank != b.Rank {
		if a.Rank > b.Rank {
			return 1
		}
		return -1
	}
	n := min(len(a.Values), len(b.Values))
	for i := range n {
		if a.Values[i] != b.Values[i] {
			if a.Values[i] > b.Values[i] {
				return 1
			}
			return -1
		}
	}
	// Same category yields the same number of values, so this only matters
	// for hand-built results.
	switch {
	case len(a.Values) > len(b.Values):
		return 1
	case len(a.Values) < len(b.Values):
		return -1
	}
	return 0
}

// Best returns the indices of every result that ties for the strongest hand
func Best(results []HandResult) []int {
	if len(results) == 0 {
		return nil
	}
	best := []int{0}
	for i := 1; i < len(results); i++ {
		switch Compare(results[i], results[best[0]]) {
		case 1:
			best = []int{i}
		case 0:
			best = append(best, i)
		}
	}
	return best
}

type rankGroup struct {
	rank  int
	count int
}

// groupRanks orders ranks by (count desc, rank desc)
func groupRanks(counts [Ace + 1]int) []rankGroup {
	groups := make([]rankGroup, 0, 7)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: int(r), count: counts[r]})
		}
	}
	slices.SortStableFunc(groups, func(a, b rankGroup) int {
		return b.count - a.count
	})
	return groups
}

func kickers(groups []rankGroup, n int) []int {
	ranks := make([]int, 0, len(groups))
	for _, g := range groups {
		ranks = append(ranks, g.rank)
	}
	ranks = descending(ranks)
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

func highestExcept(groups []rankGroup, used ...int) int {
	best := 0
	for _, g := range groups {
		if !slices.Contains(used, g.rank) && g.rank > best {
			best = g.rank
		}
	}
	return best
}

// straightHigh scans distinct descending ranks for five in a row
func straightHigh(ranks []int) (int, bool) {
	ranks = slices.Compact(slices.Clone(ranks))
	for i := 0; i+4 < len(ranks); i++ {
		if ranks[i]-ranks[i+4] == 4 {
			return ranks[i], true
		}
	}
	// Wheel: A-2-3-4-5 plays the ace low
	if slices.Contains(ranks, int(Ace)) &&
		slices.Contains(ranks, 2) && slices.Contains(ranks, 3) &&
		slices.Contains(ranks, 4) && slices.Contains(ranks, 5) {
		return 5, true
	}
	return 0, false
}

func descending(ranks []int) []int {
	out := slices.Clone(ranks)
	slices.Sort(out)
	slices.Reverse(out)
	return out
}
