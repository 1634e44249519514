package card

// Contains reports whether hand holds every card in want, respecting
// multiplicity.
func Contains(hand, want []Card) bool {
	counts := make(map[Card]int, len(hand))
	for _, c := range hand {
		counts[c]++
	}
	for _, c := range want {
		if counts[c] == 0 {
			return false
		}
		counts[c]--
	}
	return true
}

// Remove returns hand minus toRemove, dropping each card at most as many
// times as it appears in toRemove.
func Remove(hand, toRemove []Card) []Card {
	remove := make(map[Card]int, len(toRemove))
	for _, c := range toRemove {
		remove[c]++
	}
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if remove[c] > 0 {
			remove[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}
