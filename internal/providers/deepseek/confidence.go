package deepseek

import "strings"

// ConfidenceScore estimates translation fidelity in [0,1]. It is a cheap
// heuristic built from the length ratio and, when the original carries
// markup, the share of preserved tag fragments. Not a correctness guarantee.
func ConfidenceScore(original, translated string) float64 {
	if original == "" || translated == "" {
		return 0
	}

	origLen := float64(len([]rune(original)))
	transLen := float64(len([]rune(translated)))
	lengthRatio := transLen / origLen
	if inverse := origLen / transLen; inverse < lengthRatio {
		lengthRatio = inverse
	}

	score := lengthRatio
	if strings.Contains(original, "<") && strings.Contains(original, ">") {
		origTags := tagFragments(original)
		transTags := tagFragments(translated)
		preserved := 0
		for tag := range origTags {
			if _, ok := transTags[tag]; ok {
				preserved++
			}
		}
		denom := len(origTags)
		if denom < 1 {
			denom = 1
		}
		tagPreservation := float64(preserved) / float64(denom)
		score = 0.6*lengthRatio + 0.4*tagPreservation
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// tagFragments collects the substrings following each '<'. Comparing the raw
// fragments, attributes and all, is deliberately strict: a reordered
// attribute counts as a lost tag.
func tagFragments(s string) map[string]struct{} {
	parts := strings.Split(s, "<")[1:]
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		set[p] = struct{}{}
	}
	return set
}
