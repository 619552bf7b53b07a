package card

// IsSet reports whether a, b and c form a set: for every feature the three
// values are either all equal or all different. Duplicate cards and cards
// outside the universe never form a set.
func (u Universe) IsSet(a, b, c Card) bool {
	if a == b || b == c || a == c {
		return false
	}
	if !u.Contains(a) || !u.Contains(b) || !u.Contains(c) {
		return false
	}
	x, y, z := int(a), int(b), int(c)
	for i := 0; i < u.FeatureCount; i++ {
		fa, fb, fc := x%u.FeatureSize, y%u.FeatureSize, z%u.FeatureSize
		allSame := fa == fb && fb == fc
		allDiff := fa != fb && fb != fc && fa != fc
		if !allSame && !allDiff {
			return false
		}
		x, y, z = x/u.FeatureSize, y/u.FeatureSize, z/u.FeatureSize
	}
	return true
}

// IsSetOf is IsSet over a triple.
func (u Universe) IsSetOf(triple [3]Card) bool {
	return u.IsSet(triple[0], triple[1], triple[2])
}

// Complete returns the unique card forming a set with a and b. It only exists
// when every feature has a unique completing value, which holds for feature
// size 3.
func (u Universe) Complete(a, b Card) (Card, bool) {
	if u.FeatureSize != 3 || a == b || !u.Contains(a) || !u.Contains(b) {
		return None, false
	}
	x, y := int(a), int(b)
	result, place := 0, 1
	for i := 0; i < u.FeatureCount; i++ {
		fa, fb := x%3, y%3
		fc := fa
		if fa != fb {
			fc = 3 - fa - fb
		}
		result += fc * place
		place *= 3
		x, y = x/3, y/3
	}
	c := Card(result)
	if !u.Contains(c) {
		return None, false
	}
	return c, true
}

// FindSets returns up to limit sets among cards, in the order their first
// card appears. A limit of zero or less returns every set.
func (u Universe) FindSets(cards []Card, limit int) [][3]Card {
	var sets [][3]Card
	if u.FeatureSize == 3 {
		index := make(map[Card]int, len(cards))
		for i, c := range cards {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
		for i := 0; i < len(cards); i++ {
			for j := i + 1; j < len(cards); j++ {
				c, ok := u.Complete(cards[i], cards[j])
				if !ok {
					continue
				}
				if k, found := index[c]; found && k > j {
					sets = append(sets, [3]Card{cards[i], cards[j], c})
					if limit > 0 && len(sets) >= limit {
						return sets
					}
				}
			}
		}
		return sets
	}

	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			for k := j + 1; k < len(cards); k++ {
				if u.IsSet(cards[i], cards[j], cards[k]) {
					sets = append(sets, [3]Card{cards[i], cards[j], cards[k]})
					if limit > 0 && len(sets) >= limit {
						return sets
					}
				}
			}
		}
	}
	return sets
}

// HasSet reports whether any three of cards form a set.
func (u Universe) HasSet(cards []Card) bool {
	return len(u.FindSets(cards, 1)) > 0
}
