package repository

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/okian/contrib-leaderboard/pkg/metrics"
)

// Snapshot represents an immutable snapshot of the standings.
type Snapshot struct {
	// Entries sorted by points desc, author asc, with ranks assigned.
	Entries []Entry
	// ByAuthor maps an author to its index in Entries.
	ByAuthor map[string]int
}

// SnapshotStore serves reads from an atomically swapped Snapshot, so readers
// never block on a publish.
type SnapshotStore struct {
	snapshot  atomic.Pointer[Snapshot]
	onPublish func(count int)
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{onPublish: metrics.UpdateContributors}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{ByAuthor: map[string]int{}})
	return s
}

// Replace implements Store. Entries with an empty author are ignored; the
// input slice is not modified.
func (s *SnapshotStore) Replace(_ context.Context, entries []Entry) error {
	all := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Author != "" {
			all = append(all, e)
		}
	}
	sortEntries(all)
	assignRanksWithTies(all)

	byAuthor := make(map[string]int, len(all))
	for i := range all {
		byAuthor[all[i].Author] = i
	}
	s.snapshot.Store(&Snapshot{Entries: all, ByAuthor: byAuthor})
	s.onPublish(len(all))
	return nil
}

// Rank implements Store.
func (s *SnapshotStore) Rank(_ context.Context, author string) (Entry, error) {
	snap := s.snapshot.Load()
	i, ok := snap.ByAuthor[author]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return snap.Entries[i], nil
}

// TopN implements Store.
func (s *SnapshotStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.snapshot.Load()
	n = min(n, len(snap.Entries))
	out := make([]Entry, n)
	copy(out, snap.Entries[:n])
	return out, nil
}

// Count implements Store.
func (s *SnapshotStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Entries)
}

// sortEntries sorts entries by points (descending) and author (ascending).
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Author < entries[j].Author
	})
}

// assignRanksWithTies assigns dense ranks: authors with the same points share
// a rank and the next distinct total gets the following rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points {
			rank++
		}
		entries[i].Rank = rank
	}
}
