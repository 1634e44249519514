package tienlen

import (
	"sort"

	"tienlen-lite/card"
)

// EvaluateCombo classifies a non-empty card set, or fails with
// ErrInvalidCombo when the set matches no legal combination.
func EvaluateCombo(cards []card.Card) (Combo, error) {
	if len(cards) == 0 {
		return Combo{}, ErrInvalidCombo
	}
	if len(cards) == 1 {
		c := cards[0]
		return Combo{Type: ComboSingle, Rank: c.Rank, Length: 1, Suit: c.Suit}, nil
	}

	counts := rankCounts(cards)
	ranks := sortedRanks(counts)

	if len(counts) == 1 {
		switch len(cards) {
		case 2:
			return Combo{Type: ComboPair, Rank: ranks[0], Length: 2}, nil
		case 3:
			return Combo{Type: ComboTriple, Rank: ranks[0], Length: 3}, nil
		case 4:
			return Combo{Type: ComboFourKind, Rank: ranks[0], Length: 4}, nil
		}
		return Combo{}, ErrInvalidCombo
	}

	high := ranks[len(ranks)-1]
	if isConsecutivePairs(len(cards), counts, ranks) {
		return Combo{Type: ComboConsecutivePairs, Rank: high, Length: len(cards) / 2}, nil
	}
	if isStraight(len(cards), ranks) {
		return Combo{Type: ComboStraight, Rank: high, Length: len(cards)}, nil
	}
	return Combo{}, ErrInvalidCombo
}

// CanBeat compares two combos of the same type under the standard rules:
// sequences must match in length, higher rank wins, and equal-rank
// singles fall back to suit order.
func CanBeat(candidate, last Combo) bool {
	if candidate.Type != last.Type {
		return false
	}
	if candidate.Type == ComboStraight || candidate.Type == ComboConsecutivePairs {
		if candidate.Length != last.Length {
			return false
		}
	}
	if candidate.Rank != last.Rank {
		return candidate.Rank > last.Rank
	}
	if candidate.Type == ComboSingle {
		return candidate.Suit.Order() > last.Suit.Order()
	}
	return false
}

// ValidateMove checks a move against the current table. It returns the
// new last play for a successful play, or nil for a pass; bookkeeping
// (pass counts, turn rotation) is the caller's job.
func ValidateMove(move Move, last *LastPlay) (*LastPlay, error) {
	if move.Type == MovePass {
		if last == nil {
			return nil, ErrIllegalPass
		}
		return nil, nil
	}
	if move.Type != MovePlay || len(move.Cards) == 0 {
		return nil, ErrInvalidCombo
	}

	candidate, err := EvaluateCombo(move.Cards)
	if err != nil {
		return nil, err
	}
	if last != nil {
		lastCombo, err := EvaluateCombo(last.Cards)
		if err != nil {
			return nil, err
		}
		if candidate.Type != lastCombo.Type {
			if !CanSpecialBeat(candidate, lastCombo) {
				return nil, ErrIllegalMove
			}
		} else if !CanBeat(candidate, lastCombo) && !canSpecialUpgrade(candidate, lastCombo) {
			return nil, ErrIllegalMove
		}
	}
	return &LastPlay{Type: candidate.Type, Cards: move.Cards, ByPlayerID: move.ByPlayerID}, nil
}

// CanSpecialBeat reports the cross-type "chop" dominance: bombs over 2s,
// and four consecutive pairs over a four of a kind.
func CanSpecialBeat(candidate, last Combo) bool {
	singleTwo := last.Type == ComboSingle && last.Rank == card.RankTwo
	pairTwo := last.Type == ComboPair && last.Rank == card.RankTwo

	switch candidate.Type {
	case ComboFourKind:
		return singleTwo || pairTwo
	case ComboConsecutivePairs:
		if candidate.Length >= 4 && (singleTwo || pairTwo) {
			return true
		}
		if candidate.Length == 3 && singleTwo {
			return true
		}
		return candidate.Length == 4 && last.Type == ComboFourKind
	}
	return false
}

// canSpecialUpgrade covers the one same-type different-length chop: a
// four-pair run over a three-pair run of lower top rank.
func canSpecialUpgrade(candidate, last Combo) bool {
	if candidate.Type != ComboConsecutivePairs || last.Type != ComboConsecutivePairs {
		return false
	}
	return candidate.Length == 4 && last.Length == 3 && candidate.Rank > last.Rank
}

func rankCounts(cards []card.Card) map[int]int {
	counts := make(map[int]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

func sortedRanks(counts map[int]int) []int {
	ranks := make([]int, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// isStraight: 3+ distinct consecutive ranks, no 2s.
func isStraight(total int, ranks []int) bool {
	if total < 3 || len(ranks) != total {
		return false
	}
	return consecutiveWithoutTwo(ranks)
}

// isConsecutivePairs: even 6+ cards, every rank exactly twice, ranks
// consecutive, no 2s.
func isConsecutivePairs(total int, counts map[int]int, ranks []int) bool {
	if total < 6 || total%2 != 0 {
		return false
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return consecutiveWithoutTwo(ranks)
}

func consecutiveWithoutTwo(ranks []int) bool {
	for i, r := range ranks {
		if r == card.RankTwo {
			return false
		}
		if i > 0 && r != ranks[i-1]+1 {
			return false
		}
	}
	return true
}
