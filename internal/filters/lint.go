package filters

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Finding is an excluded tag that no catalog row carries.
type Finding struct {
	Tag         string
	Suggestions []string
}

const maxSuggestions = 3

// Lint reports excluded tags missing from known, each with the closest known
// tags. A misspelled tag silently excludes nothing, which is what this catches.
func Lint(s *Set, known []string) []Finding {
	index := make(map[string]struct{}, len(known))
	for _, k := range known {
		index[k] = struct{}{}
	}
	var out []Finding
	for _, tag := range s.Tags() {
		if _, ok := index[tag]; ok {
			continue
		}
		ranks := fuzzy.RankFindNormalizedFold(tag, known)
		sort.Sort(ranks)
		f := Finding{Tag: tag}
		for i := 0; i < len(ranks) && i < maxSuggestions; i++ {
			f.Suggestions = append(f.Suggestions, ranks[i].Target)
		}
		out = append(out, f)
	}
	return out
}
