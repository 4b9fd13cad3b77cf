package lists

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/movzen/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Store keeps the recently viewed and watch later lists in memory and
// writes the full snapshot of a list back to the key-value store after
// every mutation. No method returns an error: storage failures are logged
// and the in-memory lists stay authoritative for the session.
type Store struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	recent []domain.MovieSummary
	later  []domain.MovieSummary
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for AddedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore loads both lists from kv. Missing or unreadable data yields an
// empty list.
func NewStore(kv domain.KeyValueStore, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.recent = s.load(RecentlyViewed)
	s.later = s.load(WatchLater)
	s.logger.Debug("loaded lists", "recentlyViewed", len(s.recent), "watchLater", len(s.later))
	return s
}

// === Recently viewed ===

// AddRecentlyViewed moves movie to the front of the history, stamping a
// fresh AddedAt and evicting the oldest entries beyond the cap.
func (s *Store) AddRecentlyViewed(movie domain.MovieSummary) {
	s.mutate(RecentlyViewed, func(list []domain.MovieSummary) []domain.MovieSummary {
		entry := s.stamp(movie)
		return truncate(prepend(without(list, movie.ID), entry), MaxRecentlyViewed)
	})
}

// RemoveRecentlyViewed drops the entry with id, if present
func (s *Store) RemoveRecentlyViewed(id int) {
	s.Remove(RecentlyViewed, id)
}

// ClearRecentlyViewed empties the history
func (s *Store) ClearRecentlyViewed() {
	s.Clear(RecentlyViewed)
}

// IsInRecentlyViewed reports whether id is in the history
func (s *Store) IsInRecentlyViewed(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.recent, id)
}

// RecentlyViewed returns a copy of the history, most recent first
func (s *Store) RecentlyViewed() []domain.MovieSummary {
	return s.List(RecentlyViewed)
}

// === Watch later ===

// ToggleWatchLater removes movie if it is saved, otherwise saves it at the
// front. Reports whether the movie is saved afterwards.
func (s *Store) ToggleWatchLater(movie domain.MovieSummary) bool {
	var saved bool
	s.mutate(WatchLater, func(list []domain.MovieSummary) []domain.MovieSummary {
		if contains(list, movie.ID) {
			saved = false
			return without(list, movie.ID)
		}
		saved = true
		return prepend(list, s.stamp(movie))
	})
	return saved
}

// AddWatchLater saves movie at the front; an already saved movie keeps its
// position and timestamp.
func (s *Store) AddWatchLater(movie domain.MovieSummary) {
	s.mutate(WatchLater, func(list []domain.MovieSummary) []domain.MovieSummary {
		if contains(list, movie.ID) {
			return list
		}
		return prepend(list, s.stamp(movie))
	})
}

// RemoveWatchLater drops the entry with id, if present
func (s *Store) RemoveWatchLater(id int) {
	s.Remove(WatchLater, id)
}

// ClearWatchLater empties the watch later list
func (s *Store) ClearWatchLater() {
	s.Clear(WatchLater)
}

// IsInWatchLater reports whether id is saved. Reflects the latest mutation.
func (s *Store) IsInWatchLater(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.later, id)
}

// WatchLater returns a copy of the watch later list, most recent first
func (s *Store) WatchLater() []domain.MovieSummary {
	return s.List(WatchLater)
}

// === Generic access by list name ===

// List returns a copy of the named list
func (s *Store) List(name Name) []domain.MovieSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.mirror(name)
	if m == nil {
		return []domain.MovieSummary{}
	}
	return clone(*m)
}

// Len returns the number of entries in the named list
func (s *Store) Len(name Name) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.mirror(name)
	if m == nil {
		return 0
	}
	return len(*m)
}

// Remove drops the entry with id from the named list
func (s *Store) Remove(name Name, id int) {
	s.mutate(name, func(list []domain.MovieSummary) []domain.MovieSummary {
		return without(list, id)
	})
}

// Clear empties the named list
func (s *Store) Clear(name Name) {
	s.mutate(name, func([]domain.MovieSummary) []domain.MovieSummary {
		return []domain.MovieSummary{}
	})
}

// titleSource implements fuzzy.Source over a list snapshot
type titleSource []domain.MovieSummary

func (t titleSource) String(i int) string { return strings.ToLower(t[i].Title) }
func (t titleSource) Len() int            { return len(t) }

// Filter returns the entries of the named list whose titles fuzzy-match
// query, best match first. An empty query returns the whole list.
func (s *Store) Filter(name Name, query string) []domain.MovieSummary {
	list := s.List(name)
	if query == "" {
		return list
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), titleSource(list))
	out := make([]domain.MovieSummary, len(matches))
	for i, m := range matches {
		out[i] = list[m.Index]
	}
	return out
}

// === Internals ===

// mirror returns the in-memory list for name, nil for an unknown name
func (s *Store) mirror(name Name) *[]domain.MovieSummary {
	switch name {
	case RecentlyViewed:
		return &s.recent
	case WatchLater:
		return &s.later
	default:
		s.logger.Warn("unknown list", "list", name)
		return nil
	}
}

func (s *Store) stamp(movie domain.MovieSummary) domain.MovieSummary {
	movie.AddedAt = s.now().UnixMilli()
	return movie
}

// mutate derives the new list from the current one, swaps the mirror and
// persists the derived list. The write always uses the freshly computed
// value, never the previous mirror.
func (s *Store) mutate(name Name, fn func([]domain.MovieSummary) []domain.MovieSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.mirror(name)
	if m == nil {
		return
	}
	next := fn(*m)
	*m = next
	s.persist(name, next)
}

func (s *Store) persist(name Name, list []domain.MovieSummary) {
	data, err := json.Marshal(list)
	if err != nil {
		s.logger.Error("failed to encode list", "list", name, "error", err)
		return
	}
	if err := s.kv.Set(name.Key(), string(data)); err != nil {
		s.logger.Error("failed to persist list", "list", name, "count", len(list), "error", err)
	}
}

func (s *Store) load(name Name) []domain.MovieSummary {
	raw, ok, err := s.kv.Get(name.Key())
	if err != nil {
		s.logger.Warn("failed to read list, starting empty", "list", name, "error", err)
		return []domain.MovieSummary{}
	}
	if !ok {
		return []domain.MovieSummary{}
	}

	var list []domain.MovieSummary
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("failed to parse list, starting empty", "list", name, "error", err)
		return []domain.MovieSummary{}
	}

	list, repaired := normalize(list, name.limit())
	if repaired {
		s.logger.Warn("stored list violated invariants, repaired in memory", "list", name, "count", len(list))
	}
	return list
}
