package tienlen

import (
	"testing"

	"tienlen-lite/card"
)

func TestChopDelta(t *testing.T) {
	quad := Combo{Type: ComboFourKind, Rank: 6, Length: 4}
	cp3 := Combo{Type: ComboConsecutivePairs, Rank: 5, Length: 3}
	cp4 := Combo{Type: ComboConsecutivePairs, Rank: 9, Length: 4}
	cp4Low := Combo{Type: ComboConsecutivePairs, Rank: 7, Length: 4}

	cases := []struct {
		name      string
		candidate Combo
		last      Combo
		lastCards []card.Card
		want      int
	}{
		{
			name:      "quad over black single two",
			candidate: quad,
			last:      Combo{Type: ComboSingle, Rank: card.RankTwo, Length: 1, Suit: card.Spades},
			lastCards: []card.Card{c(card.RankTwo, card.Spades)},
			want:      1,
		},
		{
			name:      "quad over red single two",
			candidate: quad,
			last:      Combo{Type: ComboSingle, Rank: card.RankTwo, Length: 1, Suit: card.Hearts},
			lastCards: []card.Card{c(card.RankTwo, card.Hearts)},
			want:      2,
		},
		{
			name:      "cp3 over single two",
			candidate: cp3,
			last:      Combo{Type: ComboSingle, Rank: card.RankTwo, Length: 1, Suit: card.Clubs},
			lastCards: []card.Card{c(card.RankTwo, card.Clubs)},
			want:      1,
		},
		{
			name:      "quad over mixed pair of twos",
			candidate: quad,
			last:      Combo{Type: ComboPair, Rank: card.RankTwo, Length: 2},
			lastCards: []card.Card{c(card.RankTwo, card.Spades), c(card.RankTwo, card.Diamonds)},
			want:      3,
		},
		{
			name:      "cp4 over red pair of twos",
			candidate: cp4,
			last:      Combo{Type: ComboPair, Rank: card.RankTwo, Length: 2},
			lastCards: []card.Card{c(card.RankTwo, card.Diamonds), c(card.RankTwo, card.Hearts)},
			want:      4,
		},
		{
			name:      "cp3 over pair of twos carries nothing",
			candidate: cp3,
			last:      Combo{Type: ComboPair, Rank: card.RankTwo, Length: 2},
			lastCards: []card.Card{c(card.RankTwo, card.Spades), c(card.RankTwo, card.Clubs)},
			want:      0,
		},
		{
			name:      "cp4 over quad",
			candidate: cp4,
			last:      quad,
			lastCards: fourKind(6),
			want:      2,
		},
		{
			name:      "cp4 over cp3",
			candidate: cp4,
			last:      cp3,
			lastCards: consecutivePairs(3, 3),
			want:      2,
		},
		{
			name:      "cp4 over lower cp4",
			candidate: cp4,
			last:      cp4Low,
			lastCards: consecutivePairs(4, 4),
			want:      4,
		},
		{
			name:      "plain beat carries nothing",
			candidate: Combo{Type: ComboSingle, Rank: 10, Length: 1, Suit: card.Hearts},
			last:      Combo{Type: ComboSingle, Rank: 9, Length: 1, Suit: card.Spades},
			lastCards: []card.Card{c(9, card.Spades)},
			want:      0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChopDelta(tc.candidate, tc.last, tc.lastCards); got != tc.want {
				t.Fatalf("delta = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPlacementScores(t *testing.T) {
	cases := []struct {
		players int
		want    []int
	}{
		{2, []int{2, -2}},
		{3, []int{2, 1, -1}},
		{4, []int{2, 1, -1, -2}},
		{1, nil},
		{5, nil},
	}
	for _, tc := range cases {
		got := PlacementScores(tc.players)
		if len(got) != len(tc.want) {
			t.Fatalf("players=%d: table = %v, want %v", tc.players, got, tc.want)
		}
		sum := 0
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("players=%d: table = %v, want %v", tc.players, got, tc.want)
			}
			sum += got[i]
		}
		if tc.players == 4 && sum != 0 {
			t.Fatalf("4-player table should sum to zero, got %d", sum)
		}
	}
}
