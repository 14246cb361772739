package service

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	suggestionThreshold = 0.8
	maxSuggestions      = 5
)

type suggestion struct {
	name       string
	similarity float64
}

// Suggest ranks candidates by Jaro-Winkler similarity to target and returns
// the closest ones, without duplicates and without target itself.
func Suggest(target string, candidates []string) []string {
	target = NormalizeCustomerName(target)
	if target == "" {
		return nil
	}

	seen := map[string]struct{}{target: {}}
	var ranked []suggestion
	for _, candidate := range candidates {
		normalized := NormalizeCustomerName(candidate)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}

		similarity := matchr.JaroWinkler(target, normalized, false)
		// a name that starts with what was typed is what the user most likely meant
		if strings.HasPrefix(normalized, target) && similarity < suggestionThreshold {
			similarity = suggestionThreshold
		}
		if similarity < suggestionThreshold {
			continue
		}
		ranked = append(ranked, suggestion{name: normalized, similarity: similarity})
	}

	slices.SortStableFunc(ranked, func(a, b suggestion) int {
		switch {
		case a.similarity > b.similarity:
			return -1
		case a.similarity < b.similarity:
			return 1
		}
		return strings.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(len(ranked), maxSuggestions))
	for i := 0; i < len(ranked) && i < maxSuggestions; i++ {
		out = append(out, ranked[i].name)
	}
	return out
}
