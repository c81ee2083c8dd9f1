// Package compare implements the Briscola trick-winner rule, given a
// fixed trump suit, for two cards played in order.
package compare

import "github.com/leombro/labsol-13/internal/card"

// FirstWins reports whether a, the card played first, beats b, the card
// played second, under the given trump suit. Grounded on
// original_source/bris.c's compareCard/sameSeedCompare.
func FirstWins(trump card.Suit, a, b card.Card) bool {
	if a.Suit == trump {
		if b.Suit == trump {
			return sameSuitWins(a, b)
		}
		return true
	}
	if a.Suit == b.Suit {
		return sameSuitWins(a, b)
	}
	if b.Suit != trump {
		return true
	}
	return false
}

// sameSuitWins decides a same-suit comparison: the Ace beats everything
// of its suit, a Three beats everything except the Ace, otherwise the
// higher declaration-order rank wins.
func sameSuitWins(a, b card.Card) bool {
	if a.Rank == card.Ace {
		return true
	}
	if a.Rank == card.Three && b.Rank != card.Ace {
		return true
	}
	if a.Rank > b.Rank && b.Rank != card.Ace && b.Rank != card.Three {
		return true
	}
	return false
}
