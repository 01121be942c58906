package token

// Distance returns the Levenshtein edit distance between two terms:
// the minimum number of single-rune inserts, deletes, and substitutions
// transforming a into b.
func Distance(a, b string) int {
	d, _ := DistanceWithin(a, b, -1)
	return d
}

// DistanceWithin computes the edit distance with an upper bound. When max is
// non-negative and the distance exceeds it, DistanceWithin returns early with
// ok=false; the returned distance is then only a lower bound. The bound makes
// vocabulary scans for fuzzy matching cheap for the common non-match case.
func DistanceWithin(a, b string, max int) (int, bool) {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if max >= 0 && len(rb)-len(ra) > max {
		return len(rb) - len(ra), false
	}
	if len(ra) == 0 {
		return len(rb), max < 0 || len(rb) <= max
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		rowMin := curr[0]
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min3(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
			if curr[i] < rowMin {
				rowMin = curr[i]
			}
		}
		if max >= 0 && rowMin > max {
			return rowMin, false
		}
		prev, curr = curr, prev
	}

	d := prev[len(ra)]
	return d, max < 0 || d <= max
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
