package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/movzen/internal/domain"
)

// rankByTitle reorders search results by how closely the title matches
// query. Titles the query does not fuzzy-match keep server order after the
// matched ones.
func rankByTitle(movies []domain.Movie, query string) []domain.Movie {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(movies) < 2 {
		return movies
	}

	type rankedMovie struct {
		movie domain.Movie
		score int
	}

	ranked := make([]rankedMovie, len(movies))
	for i, m := range movies {
		ranked[i] = rankedMovie{movie: m, score: matchScore(strings.ToLower(m.Title), query)}
	}

	// Stable keeps server order among equal scores
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]domain.Movie, len(ranked))
	for i, r := range ranked {
		out[i] = r.movie
	}
	return out
}

// noMatch sorts after every matched title
const noMatch = 1 << 20

// matchScore ranks a lowercase title against a lowercase query.
// Lower score = better match
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case fuzzy.Match(query, title):
		return 100 + fuzzy.LevenshteinDistance(query, title)
	default:
		return noMatch
	}
}
