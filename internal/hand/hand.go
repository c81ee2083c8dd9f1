// Package hand implements the fixed three-slot hand used by each player
// during a match: membership, replace-by-identity, hand swap, and
// end-of-match detection.
package hand

import "github.com/leombro/labsol-13/internal/card"

// Slots is the fixed size of a Briscola hand during play.
const Slots = 3

// Hand is a fixed three-slot container; a nil slot means empty. A slot
// becomes empty only when the deck is exhausted at refill time.
type Hand [Slots]*card.Card

// Contains reports whether any occupied slot holds a card equal to c by
// value (rank+suit), not by pointer identity.
func (h Hand) Contains(c card.Card) bool {
	for _, slot := range h {
		if slot != nil && *slot == c {
			return true
		}
	}
	return false
}

// Replace finds the slot equal to old and overwrites it: with drawn if
// drawn != nil, or empties the slot if drawn is nil (deck exhausted). It
// is a no-op if old is not present. Grounded on original_source/bris.c's
// replace(), which frees the slot rather than leaving a stale pointer.
func (h *Hand) Replace(old card.Card, drawn *card.Card) {
	for i, slot := range h {
		if slot != nil && *slot == old {
			h[i] = drawn
			return
		}
	}
}

// Swap exchanges slots pairwise between a and b in place. A slot that is
// empty on one side and occupied on the other simply moves across,
// without losing information — this is what lets the match engine
// re-present each player's own hand as "first" after a lead change.
func Swap(a, b *Hand) {
	for i := range a {
		a[i], b[i] = b[i], a[i]
	}
}

// MatchOver reports whether both hands are fully empty.
func MatchOver(a, b Hand) bool {
	for i := 0; i < Slots; i++ {
		if a[i] != nil || b[i] != nil {
			return false
		}
	}
	return true
}

// Encode renders the hand's three slots as a concatenated six-character
// wire token (empty slots render as "NN"), in slot order.
func Encode(h Hand) string {
	var out [Slots * 2]byte
	for i, slot := range h {
		var tok string
		if slot == nil {
			tok = "NN"
		} else {
			tok = card.Encode(*slot)
		}
		copy(out[i*2:i*2+2], tok)
	}
	return string(out[:])
}
