// Package types contains common types used across the application
package types

import "errors"

// Entry represents a contributor's leaderboard standing.
type Entry struct {
	Rank   int     `json:"rank"`
	Author string  `json:"author"`
	Points float64 `json:"points"`
	Assets int     `json:"assets"`
}

// PointsRule is one row of the points table.
type PointsRule struct {
	Source string  `json:"source"`
	Points float64 `json:"points"`
}

// PointsTable is the points explanation shown on the dashboard.
type PointsTable struct {
	Explanation string       `json:"explanation"`
	Rules       []PointsRule `json:"rules"`
}

// Shared error kinds that the HTTP layer translates to status codes.
var (
	ErrNotFound = errors.New("not found")
	ErrUpstream = errors.New("upstream fetch failed")
)
