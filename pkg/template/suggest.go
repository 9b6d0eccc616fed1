package template

import (
	"fmt"
	"strings"
)

const (
	maxSuggestions = 5
	maxSamplePaths = 10
)

// SuggestSimilar builds the "did you mean" text for an unresolved variable.
// Candidates are similar when they match exactly, contain (or are contained
// by) the failed name, share the same first three characters, or are within
// Levenshtein distance 2. Up to 5 matches are listed alphabetically; when
// none qualify, up to 10 known paths are listed as examples instead.
func SuggestSimilar(varName string, known []string) string {
	if len(known) == 0 {
		return "No variables are available in the current context.\n" +
			"Use the 'list-variables' command to see what variables are available."
	}

	var matches []string
	for _, name := range known {
		if isSimilar(varName, name) {
			matches = append(matches, name)
			if len(matches) == maxSuggestions {
				break
			}
		}
	}

	if len(matches) == 0 {
		sample := known
		if len(sample) > maxSamplePaths {
			sample = sample[:maxSamplePaths]
		}
		return fmt.Sprintf(
			"Did you mean one of these variables?\n%s\n\nUse the 'list-variables' command to see all available variables.",
			bulleted(sample))
	}

	// known is sorted, so matches already are; sort is the documented contract
	return fmt.Sprintf("Did you mean one of these?\n%s", bulleted(matches))
}

func bulleted(names []string) string {
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = "  - " + name
	}
	return strings.Join(lines, "\n")
}

func isSimilar(search, candidate string) bool {
	s := strings.ToLower(search)
	c := strings.ToLower(candidate)

	if s == c {
		return true
	}
	if strings.Contains(c, s) || strings.Contains(s, c) {
		return true
	}
	if len(s) >= 3 && len(c) >= 3 && s[:3] == c[:3] {
		return true
	}
	return levenshtein(s, c) <= 2
}

// levenshtein computes edit distance with the full O(n*m) dynamic-programming
// matrix over raw characters.
func levenshtein(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	matrix := make([][]int, len(r1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(r2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(r2); j++ {
		matrix[0][j] = j
	}

	for i, c1 := range r1 {
		for j, c2 := range r2 {
			cost := 1
			if c1 == c2 {
				cost = 0
			}
			deletion := matrix[i][j+1] + 1
			insertion := matrix[i+1][j] + 1
			substitution := matrix[i][j] + cost
			matrix[i+1][j+1] = min(deletion, insertion, substitution)
		}
	}
	return matrix[len(r1)][len(r2)]
}
