package card

import (
	"math/rand"
	"sort"
)

// DeckSize is the standard deck size.
const DeckSize = 52

// NewDeck returns the 52-card deck in rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for rank := MinRank; rank <= MaxRank; rank++ {
		for _, suit := range Suits {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of the deck drawn from the given source.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Sort orders cards ascending by power in place.
func Sort(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Power() < cards[j].Power() })
}
