// Package repository holds the published contributor standings.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank   int
	Author string
	Points float64
	Assets int
}

// Store provides read access to the standings and wholesale replacement.
type Store interface {
	// Replace publishes a new set of standings, dropping the previous one.
	Replace(ctx context.Context, entries []Entry) error

	// Rank returns the current rank and points for an author.
	// Returns ErrNotFound if the author is unknown.
	Rank(ctx context.Context, author string) (Entry, error)

	// TopN returns the top-N entries ordered by points desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked contributors.
	Count(ctx context.Context) int
}
