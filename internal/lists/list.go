package lists

import "github.com/mmcdole/movzen/internal/domain"

// Name identifies one of the two persisted lists
type Name string

const (
	RecentlyViewed Name = "recentlyViewed"
	WatchLater     Name = "watchLater"
)

// Storage keys, shared with earlier releases of the app
const (
	KeyRecentlyViewed = "movzen_recently_viewed"
	KeyWatchLater     = "movzen_watch_later"
)

// MaxRecentlyViewed caps the history; the oldest entries are evicted first
const MaxRecentlyViewed = 100

// Key returns the storage key for the list
func (n Name) Key() string {
	switch n {
	case RecentlyViewed:
		return KeyRecentlyViewed
	case WatchLater:
		return KeyWatchLater
	default:
		return ""
	}
}

// Title returns the display name
func (n Name) Title() string {
	switch n {
	case RecentlyViewed:
		return "Recently Viewed"
	case WatchLater:
		return "Watch Later"
	default:
		return string(n)
	}
}

// limit returns the length cap, 0 = unbounded
func (n Name) limit() int {
	if n == RecentlyViewed {
		return MaxRecentlyViewed
	}
	return 0
}

// === Pure list operations. None of them mutate their input. ===

func indexOf(list []domain.MovieSummary, id int) int {
	for i, m := range list {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func contains(list []domain.MovieSummary, id int) bool {
	return indexOf(list, id) >= 0
}

// without returns list minus any entry with id
func without(list []domain.MovieSummary, id int) []domain.MovieSummary {
	out := make([]domain.MovieSummary, 0, len(list))
	for _, m := range list {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// prepend puts entry at the front; callers dedupe first
func prepend(list []domain.MovieSummary, entry domain.MovieSummary) []domain.MovieSummary {
	out := make([]domain.MovieSummary, 0, len(list)+1)
	out = append(out, entry)
	return append(out, list...)
}

// truncate keeps the first n entries; n <= 0 keeps everything
func truncate(list []domain.MovieSummary, n int) []domain.MovieSummary {
	if n <= 0 || len(list) <= n {
		return list
	}
	return list[:n:n]
}

// normalize drops duplicate ids (first wins) and applies the cap.
// Used on load, where storage may have been edited by something else.
func normalize(list []domain.MovieSummary, limit int) ([]domain.MovieSummary, bool) {
	out := make([]domain.MovieSummary, 0, len(list))
	seen := make(map[int]bool, len(list))
	for _, m := range list {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	out = truncate(out, limit)
	return out, len(out) != len(list)
}

func clone(list []domain.MovieSummary) []domain.MovieSummary {
	out := make([]domain.MovieSummary, len(list))
	copy(out, list)
	return out
}
