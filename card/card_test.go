package card

import (
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		if !c.Valid() {
			t.Fatalf("invalid card in deck: %+v", c)
		}
		if seen[c] {
			t.Fatalf("duplicate card in deck: %v", c)
		}
		seen[c] = true
	}
}

func TestShuffleKeepsCards(t *testing.T) {
	deck := NewDeck()
	shuffled := Shuffle(deck, rand.New(rand.NewSource(1)))
	if len(shuffled) != len(deck) {
		t.Fatalf("shuffle changed size: %d", len(shuffled))
	}
	seen := make(map[Card]bool, len(shuffled))
	for _, c := range shuffled {
		seen[c] = true
	}
	for _, c := range deck {
		if !seen[c] {
			t.Fatalf("shuffle lost card %v", c)
		}
	}
}

func TestPowerOrdering(t *testing.T) {
	cases := []struct {
		lo, hi Card
	}{
		{Card{Rank: 3, Suit: Spades}, Card{Rank: 3, Suit: Clubs}},
		{Card{Rank: 3, Suit: Clubs}, Card{Rank: 3, Suit: Diamonds}},
		{Card{Rank: 3, Suit: Diamonds}, Card{Rank: 3, Suit: Hearts}},
		{Card{Rank: 3, Suit: Hearts}, Card{Rank: 4, Suit: Spades}},
		{Card{Rank: 14, Suit: Hearts}, Card{Rank: 15, Suit: Spades}},
	}
	for _, tc := range cases {
		if tc.lo.Power() >= tc.hi.Power() {
			t.Errorf("%v should rank below %v", tc.lo, tc.hi)
		}
	}
}

func TestSort(t *testing.T) {
	cards := []Card{
		{Rank: 15, Suit: Hearts},
		{Rank: 3, Suit: Spades},
		{Rank: 7, Suit: Diamonds},
		{Rank: 7, Suit: Clubs},
	}
	Sort(cards)
	want := []Card{
		{Rank: 3, Suit: Spades},
		{Rank: 7, Suit: Clubs},
		{Rank: 7, Suit: Diamonds},
		{Rank: 15, Suit: Hearts},
	}
	for i := range want {
		if cards[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, cards[i], want[i])
		}
	}
}

func TestContains(t *testing.T) {
	hand := []Card{
		{Rank: 3, Suit: Spades},
		{Rank: 3, Suit: Hearts},
		{Rank: 9, Suit: Clubs},
	}
	if !Contains(hand, []Card{{Rank: 3, Suit: Spades}, {Rank: 9, Suit: Clubs}}) {
		t.Fatal("expected hand to contain subset")
	}
	if Contains(hand, []Card{{Rank: 9, Suit: Clubs}, {Rank: 9, Suit: Clubs}}) {
		t.Fatal("multiset count should be respected")
	}
	if Contains(hand, []Card{{Rank: 4, Suit: Spades}}) {
		t.Fatal("card not in hand")
	}
}

func TestRemove(t *testing.T) {
	hand := []Card{
		{Rank: 3, Suit: Spades},
		{Rank: 3, Suit: Hearts},
		{Rank: 9, Suit: Clubs},
	}
	remaining := Remove(hand, []Card{{Rank: 3, Suit: Hearts}})
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d cards, want 2", len(remaining))
	}
	for _, c := range remaining {
		if c == (Card{Rank: 3, Suit: Hearts}) {
			t.Fatal("removed card still present")
		}
	}
	if len(hand) != 3 {
		t.Fatal("Remove mutated the input hand")
	}
}

func TestString(t *testing.T) {
	cases := map[Card]string{
		{Rank: 3, Suit: Spades}:    "3S",
		{Rank: 10, Suit: Clubs}:    "10C",
		{Rank: 11, Suit: Spades}:   "JS",
		{Rank: 12, Suit: Clubs}:    "QC",
		{Rank: 13, Suit: Diamonds}: "KD",
		{Rank: 14, Suit: Hearts}:   "AH",
		{Rank: 15, Suit: Hearts}:   "2H",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("%+v.String() = %q, want %q", c, got, want)
		}
	}
}
