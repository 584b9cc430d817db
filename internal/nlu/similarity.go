package nlu

// DuplicateThreshold is the normalized similarity at or above which two
// medication names are considered a probable duplicate.
const DuplicateThreshold = 0.8

// Similarity computes the normalized Levenshtein similarity between two
// strings: 1 - editDistance(a, b) / max(len(a), len(b)). Two empty strings
// are identical (1); one empty string against a non-empty one scores 0.
//
// The function is symmetric, deterministic, and case-sensitive; callers that
// want case-insensitive comparison lowercase the inputs first.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices using a
// two-row dynamic program, O(len(a)*len(b)) time and O(min(len)) space.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	// Keep the shorter slice as the row to minimise memory.
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
