// Package deck builds and draws from a shuffled 40-card Briscola deck.
package deck

import (
	"math/rand"

	"github.com/leombro/labsol-13/internal/card"
)

// Size is the number of cards in a Briscola deck.
const Size = 40

// Deck is an ordered sequence of 40 unique cards with a draw cursor and a
// trump suit fixed at construction (the suit of the last card). The
// cursor only ever increases; once it reaches Size, Draw reports
// exhaustion rather than an error.
type Deck struct {
	cards [Size]card.Card
	next  int
	trump card.Suit
}

// New builds a uniformly random permutation of all 40 cards using rng,
// and fixes the trump to the suit of the last card. Passing a
// deterministically seeded rng (see FixedOrderSource, or any
// rand.New(rand.NewSource(seed))) makes shuffling reproducible, which is
// how the server's "-t" test mode is implemented at the call site.
func New(rng *rand.Rand) *Deck {
	ordered := ordered40()
	rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })

	d := &Deck{}
	copy(d.cards[:], ordered)
	d.trump = d.cards[Size-1].Suit
	return d
}

func ordered40() []card.Card {
	out := make([]card.Card, 0, Size)
	for s := card.Hearts; s <= card.Spades; s++ {
		for r := card.Ace; r <= card.King; r++ {
			out = append(out, card.Card{Rank: r, Suit: s})
		}
	}
	return out
}

// FixedOrderSource returns a rand.Rand seeded with a fixed value, for
// deterministic, seed-reproducible shuffles in tests and in the server's
// "-t" CLI mode.
func FixedOrderSource() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

// NewFromOrder builds a Deck with no shuffling, dealing cards in exactly
// the given order (trump fixed to the suit of the last one). It exists
// for tests that need specific, known cards in specific hands — such as
// a trump-beats-off-suit trick — where even a seeded shuffle wouldn't let
// the test name the cards up front.
func NewFromOrder(cards [Size]card.Card) *Deck {
	d := &Deck{cards: cards}
	d.trump = d.cards[Size-1].Suit
	return d
}

// Trump returns the deck's fixed trump suit.
func (d *Deck) Trump() card.Suit {
	return d.trump
}

// Draw returns and advances past the next card. The second return value
// is false, with no error, once all 40 cards have been drawn.
func (d *Deck) Draw() (card.Card, bool) {
	if d.next >= Size {
		return card.Card{}, false
	}
	c := d.cards[d.next]
	d.next++
	return c, true
}

// Remaining reports how many cards are left to draw.
func (d *Deck) Remaining() int {
	return Size - d.next
}
