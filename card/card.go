package card

import "strconv"

// Suit is the one-letter suit code used on the wire.
type Suit string

const (
	Spades   Suit = "S"
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
)

// Suits lists all suits in ascending Tien Len order: spades lowest,
// hearts highest.
var Suits = [4]Suit{Spades, Clubs, Diamonds, Hearts}

// Order returns the suit's position in the S < C < D < H total order,
// or -1 for an unknown suit.
func (s Suit) Order() int {
	switch s {
	case Spades:
		return 0
	case Clubs:
		return 1
	case Diamonds:
		return 2
	case Hearts:
		return 3
	}
	return -1
}

func (s Suit) Valid() bool { return s.Order() >= 0 }

const (
	// MinRank is the lowest rank in the deck (the 3).
	MinRank = 3
	// MaxRank is the 2, the highest-ranked card in Tien Len.
	MaxRank = 15
	// RankTwo aliases MaxRank where the "is this a 2" intent matters.
	RankTwo = 15
)

// Card is a single playing card. Rank runs 3..15 where 11..15 stand for
// J, Q, K, A and 2.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// ThreeOfSpades opens the first game of a series.
var ThreeOfSpades = Card{Rank: 3, Suit: Spades}

// Power is the total order used to compare any two cards: rank first,
// suit as tie-break.
func (c Card) Power() int { return c.Rank*4 + c.Suit.Order() }

func (c Card) Valid() bool {
	return c.Rank >= MinRank && c.Rank <= MaxRank && c.Suit.Valid()
}

func (c Card) String() string {
	var rank string
	switch c.Rank {
	case 11:
		rank = "J"
	case 12:
		rank = "Q"
	case 13:
		rank = "K"
	case 14:
		rank = "A"
	case RankTwo:
		rank = "2"
	default:
		rank = strconv.Itoa(c.Rank)
	}
	return rank + string(c.Suit)
}
