package codeshift

import "strings"

// normalizeForSimilarity collapses whitespace and lowercases code.
func normalizeForSimilarity(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), " "))
}

// Similarity estimates how alike two pieces of code are, in [0, 1].
//
// Both texts are whitespace-collapsed and lowercased. Identical texts score
// 1.0. Otherwise the score is the number of shared tokens divided by the
// token count of the longer text. Shared tokens are counted in both
// directions and the smaller count is used, so Similarity(a, b) always
// equals Similarity(b, a).
func Similarity(a, b string) float64 {
	na := normalizeForSimilarity(a)
	nb := normalizeForSimilarity(b)
	if na == nb {
		return 1.0
	}

	tokensA := strings.Fields(na)
	tokensB := strings.Fields(nb)
	longest := max(len(tokensA), len(tokensB))
	if longest == 0 {
		return 0
	}

	shared := min(countMembers(tokensA, tokenSet(tokensB)), countMembers(tokensB, tokenSet(tokensA)))
	return float64(shared) / float64(longest)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func countMembers(tokens []string, set map[string]struct{}) int {
	n := 0
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
