// Package score computes Briscola card point values and capture totals.
package score

import "github.com/leombro/labsol-13/internal/card"

// Points returns the point value of a single card: Ace=11, Three=10,
// King=4, Queen=3, Jack=2, all others 0. Grounded on
// original_source/bris.c's computePoints.
func Points(c card.Card) int {
	switch c.Rank {
	case card.Ace:
		return 11
	case card.Three:
		return 10
	case card.King:
		return 4
	case card.Queen:
		return 3
	case card.Jack:
		return 2
	default:
		return 0
	}
}

// Total sums the point value of a capture pile. The sum over all 40
// cards is 120, so a match ends in a draw iff each side totals 60.
func Total(cards []card.Card) int {
	sum := 0
	for _, c := range cards {
		sum += Points(c)
	}
	return sum
}
