package tienlen

import "tienlen-lite/card"

// twoPenalty is the per-card chop value of a 2: black suits cost 1, red
// suits cost 2.
func twoPenalty(s card.Suit) int {
	if s == card.Diamonds || s == card.Hearts {
		return 2
	}
	return 1
}

// ChopDelta returns the score transferred from the previous holder of
// the table to the chopper when candidate supersedes last through a
// special rule. Plain same-type beats carry no penalty and return 0.
func ChopDelta(candidate, last Combo, lastCards []card.Card) int {
	switch {
	case last.Type == ComboSingle && last.Rank == card.RankTwo:
		if candidate.Type == ComboFourKind ||
			(candidate.Type == ComboConsecutivePairs && candidate.Length >= 3) {
			return twoPenalty(last.Suit)
		}
	case last.Type == ComboPair && last.Rank == card.RankTwo:
		if candidate.Type == ComboFourKind ||
			(candidate.Type == ComboConsecutivePairs && candidate.Length >= 4) {
			total := 0
			for _, c := range lastCards {
				total += twoPenalty(c.Suit)
			}
			return total
		}
	case last.Type == ComboFourKind:
		if candidate.Type == ComboConsecutivePairs && candidate.Length == 4 {
			return 2
		}
	case last.Type == ComboConsecutivePairs && last.Length == 3:
		if candidate.Type == ComboConsecutivePairs && candidate.Length == 4 {
			return 2
		}
	case last.Type == ComboConsecutivePairs && last.Length == 4:
		if candidate.Type == ComboConsecutivePairs && candidate.Length == 4 &&
			candidate.Rank > last.Rank {
			return 4
		}
	}
	return 0
}

// PlacementScores is the end-of-game score table indexed by finishing
// position, keyed by player count. Unsupported counts return nil.
func PlacementScores(players int) []int {
	switch players {
	case 2:
		return []int{2, -2}
	case 3:
		return []int{2, 1, -1}
	case 4:
		return []int{2, 1, -1, -2}
	}
	return nil
}
