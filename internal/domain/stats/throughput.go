package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// DateLayout is the calendar date format used by the throughput view.
const DateLayout = "2006-01-02"

// DateRange bounds the throughput view by calendar date, both ends inclusive.
// A nil bound defaults to the earliest or latest createdAt in the data.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// DailyPoint is one day of the throughput series.
type DailyPoint struct {
	Date         string  `json:"date"`
	Points       float64 `json:"points"`
	Contributors int     `json:"contributors"`
}

// SourcePoints is the points total for one source category.
type SourcePoints struct {
	Source string  `json:"source"`
	Points float64 `json:"points"`
}

// ThroughputView is the trend tab.
type ThroughputView struct {
	Start              string         `json:"start,omitempty"`
	End                string         `json:"end,omitempty"`
	MinDate            string         `json:"min_date,omitempty"`
	MaxDate            string         `json:"max_date,omitempty"`
	TotalPoints        float64        `json:"total_points"`
	ActiveContributors int            `json:"active_contributors"`
	AvgDailyPoints     float64        `json:"avg_daily_points"`
	Daily              []DailyPoint   `json:"daily"`
	BySource           []SourcePoints `json:"by_source"`
}

// ParseDate parses a YYYY-MM-DD date in loc. An empty string yields nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a %s date", ErrInvalidRange, s, DateLayout)
	}
	return &t, nil
}

// Throughput aggregates points per day and per source inside r. Dates are
// calendar dates in loc.
func Throughput(assets []model.Asset, r DateRange, loc *time.Location) (ThroughputView, error) {
	if loc == nil {
		loc = time.UTC
	}
	view := ThroughputView{Daily: []DailyPoint{}, BySource: []SourcePoints{}}

	var minDate, maxDate time.Time
	for i := range assets {
		a := &assets[i]
		if !a.Attributed() {
			continue
		}
		d := dateOf(*a.CreatedAt, loc)
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
	}
	if minDate.IsZero() {
		return view, nil
	}
	view.MinDate = minDate.Format(DateLayout)
	view.MaxDate = maxDate.Format(DateLayout)

	start, end := minDate, maxDate
	if r.Start != nil {
		start = dateOf(*r.Start, loc)
	}
	if r.End != nil {
		end = dateOf(*r.End, loc)
	}
	if end.Before(start) {
		return view, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(DateLayout), end.Format(DateLayout))
	}
	view.Start = start.Format(DateLayout)
	view.End = end.Format(DateLayout)

	type dayAgg struct {
		points  float64
		authors map[string]struct{}
	}
	days := map[string]*dayAgg{}
	sources := map[string]float64{}
	authors := map[string]struct{}{}
	for i := range assets {
		a := &assets[i]
		if !a.Attributed() {
			continue
		}
		d := dateOf(*a.CreatedAt, loc)
		if d.Before(start) || d.After(end) {
			continue
		}
		key := d.Format(DateLayout)
		agg := days[key]
		if agg == nil {
			agg = &dayAgg{authors: map[string]struct{}{}}
			days[key] = agg
		}
		agg.points += a.PointsValue()
		agg.authors[a.Author] = struct{}{}
		authors[a.Author] = struct{}{}
		view.TotalPoints += a.PointsValue()
		if a.Source != "" {
			sources[a.Source] += a.PointsValue()
		}
	}

	view.ActiveContributors = len(authors)
	span := calendarDays(start, end)
	if span < 1 {
		span = 1
	}
	view.AvgDailyPoints = round1(view.TotalPoints / float64(span))

	for date, agg := range days {
		view.Daily = append(view.Daily, DailyPoint{Date: date, Points: agg.points, Contributors: len(agg.authors)})
	}
	sort.Slice(view.Daily, func(i, j int) bool { return view.Daily[i].Date < view.Daily[j].Date })

	for source, points := range sources {
		view.BySource = append(view.BySource, SourcePoints{Source: source, Points: points})
	}
	sort.Slice(view.BySource, func(i, j int) bool { return view.BySource[i].Source < view.BySource[j].Source })

	return view, nil
}

// calendarDays counts whole days between two midnights, ignoring DST shifts.
func calendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s) / day)
}
