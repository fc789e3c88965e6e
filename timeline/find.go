package timeline

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Find returns the chapter whose title best matches query.
// Titles are matched fuzzily and case-insensitively; ties go to the smallest edit distance.
func (x *Index) Find(query string) mo.Option[Chapter] {
	query = strings.TrimSpace(query)
	if query == "" || len(x.chapters) == 0 {
		return mo.None[Chapter]()
	}

	titles := lo.Map(x.chapters, func(c Chapter, _ int) string {
		return c.Title
	})

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return mo.None[Chapter]()
	}

	lowered := strings.ToLower(query)
	best := lo.MinBy(ranks, func(a, b fuzzy.Rank) bool {
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return levenshtein.Distance(lowered, strings.ToLower(a.Target)) <
			levenshtein.Distance(lowered, strings.ToLower(b.Target))
	})

	return mo.Some(x.chapters[best.OriginalIndex])
}
