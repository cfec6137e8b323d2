package transcript

// editDistance computes the Levenshtein distance between two strings.
// Used for near-duplicate suppression when the speech engine repeats
// near-identical text for the same speaker.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// isNearDuplicate reports whether candidate is too close to previous to be
// treated as new speech. Text counts as different enough only when the edit
// distance reaches 30% of the longer text's length.
func isNearDuplicate(previous, candidate string) bool {
	if previous == "" || candidate == "" {
		return false
	}

	longer := len(previous)
	if len(candidate) > longer {
		longer = len(candidate)
	}

	threshold := float64(longer) * 0.3
	return float64(editDistance(previous, candidate)) < threshold
}
