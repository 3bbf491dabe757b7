// Package stats builds the leaderboard and throughput views from derived assets.
//
// Only attributed assets (author and createdAt present) take part. Missing
// points count as zero, so a contributor with only unweighted work still shows
// up with 0 points.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// View sizes.
const (
	ChampionsSize       = 3
	RisingStarsSize     = 5
	MostRegularSize     = 5
	SourceChampionsSize = 5
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	regularWindowWeeks = 4
)

// Standing is a contributor's points total over some slice of assets.
type Standing struct {
	Author string  `json:"author"`
	Points float64 `json:"points"`
	Assets int     `json:"assets"`
}

// Growth compares a contributor's points this week with the week before.
type Growth struct {
	Author   string  `json:"author"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Growth   float64 `json:"growth"`
}

// Consistency summarizes weekly activity over the last four ISO weeks.
type Consistency struct {
	Author          string  `json:"author"`
	ActiveWeeks     int     `json:"active_weeks"`
	AvgWeeklyPoints float64 `json:"avg_weekly_points"`
	TotalPoints     float64 `json:"total_points"`
}

// PerformanceView is the ranking tab.
type PerformanceView struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Today       []Standing    `json:"today"`
	Week        []Standing    `json:"week"`
	AllTime     []Standing    `json:"all_time"`
	RisingStars []Growth      `json:"rising_stars"`
	MostRegular []Consistency `json:"most_regular"`
	Sources     []string      `json:"sources"`
}

// Standings totals points per contributor over every attributed asset, sorted
// by points desc then author asc.
func Standings(assets []model.Asset) []Standing {
	return standings(assets, func(*model.Asset) bool { return true })
}

// Performance builds the ranking tab as seen at now. "Today" is the calendar
// date of now in loc.
func Performance(assets []model.Asset, now time.Time, loc *time.Location) PerformanceView {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := dateOf(now, loc)
	weekAgo := now.Add(-week)

	return PerformanceView{
		GeneratedAt: now,
		Today: top(standings(assets, func(a *model.Asset) bool {
			return dateOf(*a.CreatedAt, loc).Equal(today)
		}), ChampionsSize),
		Week: top(standings(assets, func(a *model.Asset) bool {
			return !a.CreatedAt.Before(weekAgo)
		}), ChampionsSize),
		AllTime:     top(Standings(assets), ChampionsSize),
		RisingStars: RisingStars(assets, now),
		MostRegular: MostRegular(assets, now),
		Sources:     Sources(assets),
	}
}

// RisingStars ranks contributors by growth from [now-14d, now-7d) to
// [now-7d, now]. Growth is (current - previous) / (previous + 1) * 100.
func RisingStars(assets []model.Asset, now time.Time) []Growth {
	weekAgo := now.Add(-week)
	twoWeeksAgo := now.Add(-2 * week)

	current := map[string]float64{}
	previous := map[string]float64{}
	for i := range assets {
		a := &assets[i]
		if !a.Attributed() {
			continue
		}
		switch {
		case !a.CreatedAt.Before(weekAgo):
			current[a.Author] += a.PointsValue()
		case !a.CreatedAt.Before(twoWeeksAgo):
			previous[a.Author] += a.PointsValue()
		}
	}

	out := make([]Growth, 0, len(current)+len(previous))
	seen := make(map[string]struct{}, len(current)+len(previous))
	for _, m := range []map[string]float64{current, previous} {
		for author := range m {
			if _, ok := seen[author]; ok {
				continue
			}
			seen[author] = struct{}{}
			cur, prev := current[author], previous[author]
			out = append(out, Growth{
				Author:   author,
				Current:  cur,
				Previous: prev,
				Growth:   (cur - prev) / (prev + 1) * 100,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Growth != out[j].Growth {
			return out[i].Growth > out[j].Growth
		}
		return out[i].Author < out[j].Author
	})
	out = top(out, RisingStarsSize)
	for i := range out {
		out[i].Current = round1(out[i].Current)
		out[i].Previous = round1(out[i].Previous)
		out[i].Growth = round1(out[i].Growth)
	}
	return out
}

type isoWeek struct {
	year, week int
}

// MostRegular ranks contributors of the last four weeks by active ISO weeks,
// then by average weekly points. The average runs over every week that has
// any activity in the window, counting a contributor's idle weeks as zero.
func MostRegular(assets []model.Asset, now time.Time) []Consistency {
	since := now.Add(-regularWindowWeeks * week)

	weeks := map[isoWeek]struct{}{}
	perAuthor := map[string]map[isoWeek]float64{}
	for i := range assets {
		a := &assets[i]
		if !a.Attributed() || a.CreatedAt.Before(since) {
			continue
		}
		y, w := a.CreatedAt.In(now.Location()).ISOWeek()
		k := isoWeek{year: y, week: w}
		weeks[k] = struct{}{}
		if perAuthor[a.Author] == nil {
			perAuthor[a.Author] = map[isoWeek]float64{}
		}
		perAuthor[a.Author][k] += a.PointsValue()
	}

	out := make([]Consistency, 0, len(perAuthor))
	for author, byWeek := range perAuthor {
		var total float64
		active := 0
		for _, p := range byWeek {
			total += p
			if p > 0 {
				active++
			}
		}
		out = append(out, Consistency{
			Author:          author,
			ActiveWeeks:     active,
			AvgWeeklyPoints: round1(total / float64(len(weeks))),
			TotalPoints:     round1(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActiveWeeks != out[j].ActiveWeeks {
			return out[i].ActiveWeeks > out[j].ActiveWeeks
		}
		if out[i].AvgWeeklyPoints != out[j].AvgWeeklyPoints {
			return out[i].AvgWeeklyPoints > out[j].AvgWeeklyPoints
		}
		return out[i].Author < out[j].Author
	})
	return top(out, MostRegularSize)
}

// SourceChampions returns the top contributors for one source category.
func SourceChampions(assets []model.Asset, source string) []Standing {
	return top(standings(assets, func(a *model.Asset) bool {
		return a.Source == source
	}), SourceChampionsSize)
}

// Sources lists the distinct non-empty source categories, sorted.
func Sources(assets []model.Asset) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for i := range assets {
		s := assets[i].Source
		if s == "" {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func standings(assets []model.Asset, keep func(*model.Asset) bool) []Standing {
	idx := map[string]int{}
	out := []Standing{}
	for i := range assets {
		a := &assets[i]
		if !a.Attributed() || !keep(a) {
			continue
		}
		j, ok := idx[a.Author]
		if !ok {
			j = len(out)
			idx[a.Author] = j
			out = append(out, Standing{Author: a.Author})
		}
		out[j].Points += a.PointsValue()
		out[j].Assets++
	}
	sortStandings(out)
	return out
}

func sortStandings(s []Standing) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Points != s[j].Points {
			return s[i].Points > s[j].Points
		}
		return s[i].Author < s[j].Author
	})
}

func top[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// dateOf truncates t to midnight of its calendar date in loc.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
