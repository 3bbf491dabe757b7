package stats_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func pts(v float64) *float64 { return &v }

func asset(author, source string, createdAt time.Time) model.Asset {
	a := model.Asset{ID: author + createdAt.String(), Author: author, Source: source}
	a.CreatedAt = &createdAt
	switch source {
	case "AIME":
		a.Points = pts(1.5)
	case "AMC":
		a.Points = pts(1.0)
	}
	return a
}

func fixture() []model.Asset {
	return []model.Asset{
		asset("alice", "AIME", now.Add(-time.Hour)),
		asset("bob", "AMC", now.Add(-2*time.Hour)),
		asset("alice", "AIME", now.Add(-3*24*time.Hour)),
		asset("carol", "AIME", now.Add(-10*24*time.Hour)),
		asset("carol", "AIME", now.Add(-10*24*time.Hour)),
		asset("dave", "AIME", now.Add(-20*24*time.Hour)),
		{ID: "unattributed", Source: "AIME", Points: pts(1.5)},
	}
}

func TestStandings(t *testing.T) {
	Convey("Given contributors with equal totals", t, func() {
		assets := []model.Asset{
			asset("zoe", "AMC", now),
			asset("adam", "AMC", now),
			asset("mia", "olympiad", now),
		}

		Convey("Then ties are broken by author name", func() {
			s := stats.Standings(assets)
			So(s, ShouldHaveLength, 3)
			So(s[0], ShouldResemble, stats.Standing{Author: "adam", Points: 1, Assets: 1})
			So(s[1].Author, ShouldEqual, "zoe")
		})

		Convey("Then unweighted work counts as zero points", func() {
			s := stats.Standings(assets)
			So(s[2], ShouldResemble, stats.Standing{Author: "mia", Points: 0, Assets: 1})
		})
	})
}

func TestPerformance(t *testing.T) {
	Convey("Given a month of contributions", t, func() {
		view := stats.Performance(fixture(), now, time.UTC)

		Convey("Then today's champions only count today's work", func() {
			So(view.Today, ShouldResemble, []stats.Standing{
				{Author: "alice", Points: 1.5, Assets: 1},
				{Author: "bob", Points: 1, Assets: 1},
			})
		})

		Convey("Then weekly stars cover the last seven days", func() {
			So(view.Week, ShouldResemble, []stats.Standing{
				{Author: "alice", Points: 3, Assets: 2},
				{Author: "bob", Points: 1, Assets: 1},
			})
		})

		Convey("Then all-time heroes are the top three overall", func() {
			So(view.AllTime, ShouldResemble, []stats.Standing{
				{Author: "alice", Points: 3, Assets: 2},
				{Author: "carol", Points: 3, Assets: 2},
				{Author: "dave", Points: 1.5, Assets: 1},
			})
		})

		Convey("Then rising stars are ordered by growth", func() {
			So(view.RisingStars, ShouldResemble, []stats.Growth{
				{Author: "alice", Current: 3, Previous: 0, Growth: 300},
				{Author: "bob", Current: 1, Previous: 0, Growth: 100},
				{Author: "carol", Current: 0, Previous: 3, Growth: -75},
			})
		})

		Convey("Then most regular contributors average over the active weeks in the window", func() {
			So(view.MostRegular, ShouldResemble, []stats.Consistency{
				{Author: "alice", ActiveWeeks: 1, AvgWeeklyPoints: 1, TotalPoints: 3},
				{Author: "carol", ActiveWeeks: 1, AvgWeeklyPoints: 1, TotalPoints: 3},
				{Author: "dave", ActiveWeeks: 1, AvgWeeklyPoints: 0.5, TotalPoints: 1.5},
				{Author: "bob", ActiveWeeks: 1, AvgWeeklyPoints: 0.3, TotalPoints: 1},
			})
		})

		Convey("Then the known sources are listed", func() {
			So(view.Sources, ShouldResemble, []string{"AIME", "AMC"})
		})
	})

	Convey("Given a time zone ahead of UTC", t, func() {
		tokyo := time.FixedZone("JST", 9*60*60)
		late := time.Date(2025, 3, 20, 23, 30, 0, 0, time.UTC)
		assets := []model.Asset{
			asset("early", "AIME", time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC)),
			asset("late", "AIME", time.Date(2025, 3, 20, 22, 0, 0, 0, time.UTC)),
		}

		Convey("Then today follows the configured calendar", func() {
			So(stats.Performance(assets, late, time.UTC).Today, ShouldHaveLength, 2)
			view := stats.Performance(assets, late, tokyo)
			So(view.Today, ShouldHaveLength, 1)
			So(view.Today[0].Author, ShouldEqual, "late")
		})
	})

	Convey("Given no data", t, func() {
		view := stats.Performance(nil, now, nil)

		Convey("Then every list is empty", func() {
			So(view.Today, ShouldBeEmpty)
			So(view.AllTime, ShouldBeEmpty)
			So(view.RisingStars, ShouldBeEmpty)
			So(view.MostRegular, ShouldBeEmpty)
			So(view.Sources, ShouldBeEmpty)
		})
	})

	Convey("Given more than five contributors this week", t, func() {
		var assets []model.Asset
		for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			assets = append(assets, asset(name, "AMC", now.Add(-time.Hour)))
		}

		Convey("Then rising stars and most regular keep five rows", func() {
			So(stats.RisingStars(assets, now), ShouldHaveLength, 5)
			So(stats.MostRegular(assets, now), ShouldHaveLength, 5)
		})
	})
}

func TestSourceChampions(t *testing.T) {
	Convey("Given contributions across sources", t, func() {
		assets := fixture()

		Convey("Then champions are ranked within the selected source", func() {
			So(stats.SourceChampions(assets, "AIME"), ShouldResemble, []stats.Standing{
				{Author: "alice", Points: 3, Assets: 2},
				{Author: "carol", Points: 3, Assets: 2},
				{Author: "dave", Points: 1.5, Assets: 1},
			})
			So(stats.SourceChampions(assets, "AMC"), ShouldResemble, []stats.Standing{
				{Author: "bob", Points: 1, Assets: 1},
			})
		})

		Convey("Then an unknown source has no champions", func() {
			So(stats.SourceChampions(assets, "IMO"), ShouldBeEmpty)
		})
	})
}

func TestThroughput(t *testing.T) {
	Convey("Given a month of contributions", t, func() {
		assets := fixture()

		Convey("When no range is given", func() {
			view, err := stats.Throughput(assets, stats.DateRange{}, time.UTC)
			So(err, ShouldBeNil)

			Convey("Then the range spans the data", func() {
				So(view.Start, ShouldEqual, "2025-02-28")
				So(view.End, ShouldEqual, "2025-03-20")
				So(view.MinDate, ShouldEqual, view.Start)
				So(view.MaxDate, ShouldEqual, view.End)
			})

			Convey("Then totals cover every attributed asset", func() {
				So(view.TotalPoints, ShouldEqual, 8.5)
				So(view.ActiveContributors, ShouldEqual, 4)
				So(view.AvgDailyPoints, ShouldEqual, 0.4)
			})

			Convey("Then the daily series is sorted by date", func() {
				So(view.Daily, ShouldResemble, []stats.DailyPoint{
					{Date: "2025-02-28", Points: 1.5, Contributors: 1},
					{Date: "2025-03-10", Points: 3, Contributors: 1},
					{Date: "2025-03-17", Points: 1.5, Contributors: 1},
					{Date: "2025-03-20", Points: 2.5, Contributors: 2},
				})
			})

			Convey("Then points are split by source", func() {
				So(view.BySource, ShouldResemble, []stats.SourcePoints{
					{Source: "AIME", Points: 7.5},
					{Source: "AMC", Points: 1},
				})
			})
		})

		Convey("When an explicit range is given", func() {
			start, _ := stats.ParseDate("2025-03-10", time.UTC)
			end, _ := stats.ParseDate("2025-03-17", time.UTC)
			view, err := stats.Throughput(assets, stats.DateRange{Start: start, End: end}, time.UTC)
			So(err, ShouldBeNil)

			Convey("Then both ends are inclusive", func() {
				So(view.TotalPoints, ShouldEqual, 4.5)
				So(view.ActiveContributors, ShouldEqual, 2)
				So(view.Daily, ShouldHaveLength, 2)
				So(view.AvgDailyPoints, ShouldEqual, 0.6)
			})
		})

		Convey("When the range is a single day", func() {
			day, _ := stats.ParseDate("2025-03-20", time.UTC)
			view, err := stats.Throughput(assets, stats.DateRange{Start: day, End: day}, time.UTC)
			So(err, ShouldBeNil)

			Convey("Then the average divides by one day", func() {
				So(view.TotalPoints, ShouldEqual, 2.5)
				So(view.AvgDailyPoints, ShouldEqual, 2.5)
			})
		})

		Convey("When the range is inverted", func() {
			start, _ := stats.ParseDate("2025-03-20", time.UTC)
			end, _ := stats.ParseDate("2025-03-01", time.UTC)
			_, err := stats.Throughput(assets, stats.DateRange{Start: start, End: end}, time.UTC)
			So(errors.Is(err, stats.ErrInvalidRange), ShouldBeTrue)
		})
	})

	Convey("Given no attributed assets", t, func() {
		view, err := stats.Throughput([]model.Asset{{ID: "x"}}, stats.DateRange{}, nil)
		So(err, ShouldBeNil)
		So(view.TotalPoints, ShouldEqual, 0)
		So(view.Daily, ShouldBeEmpty)
		So(view.BySource, ShouldBeEmpty)
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given date strings", t, func() {
		d, err := stats.ParseDate("", time.UTC)
		So(err, ShouldBeNil)
		So(d, ShouldBeNil)

		d, err = stats.ParseDate("2025-01-31", nil)
		So(err, ShouldBeNil)
		So(d.Day(), ShouldEqual, 31)

		_, err = stats.ParseDate("31/01/2025", time.UTC)
		So(errors.Is(err, stats.ErrInvalidRange), ShouldBeTrue)
	})
}
