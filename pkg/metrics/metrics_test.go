package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors should be registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.cacheRequests.WithLabelValues("hit").Inc()
				n, err := testutil.GatherAndCount(registry, "contrib_leaderboard_cache_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("board"),
				WithMetricPrefix("x"),
				WithHistogramBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names should carry namespace, subsystem and prefix", func() {
				manager.refreshRequests.Inc()
				n, err := testutil.GatherAndCount(registry, "test_board_x_refresh_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(manager.customLabels["env"], ShouldEqual, "test")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues("success"))
			RecordPipelineRun("success", 12)
			UpdateFetchedCounts(10, 25)
			UpdateFinishedAssets(4)
			UpdateContributors(3)

			Convey("Then counters and gauges should reflect the values", func() {
				So(testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues("success")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.assetsFetched), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.labelsFetched), ShouldEqual, 25)
				So(testutil.ToFloat64(globalManager.finishedAssets), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.contributors), ShouldEqual, 3)
			})
		})

		Convey("When recording cache and gap metrics", func() {
			hits := testutil.ToFloat64(globalManager.cacheRequests.WithLabelValues("hit"))
			gaps := testutil.ToFloat64(globalManager.reconcileGaps.WithLabelValues("no_attribution"))
			RecordCacheHit()
			RecordReconcileGap("no_attribution")

			Convey("Then they should increase by one", func() {
				So(testutil.ToFloat64(globalManager.cacheRequests.WithLabelValues("hit")), ShouldEqual, hits+1)
				So(testutil.ToFloat64(globalManager.reconcileGaps.WithLabelValues("no_attribution")), ShouldEqual, gaps+1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					RecordHTTPRequest("leaderboard", "GET", "200")
					RecordHTTPRequestDuration("leaderboard", "GET", "200", 3)
					RecordErrorByEndpoint("rank", "GET", "not_found")
					RecordErrorByType("not_found", "medium")
					RecordErrorByComponent("ingest", "fetch")
					RecordErrorLatency("http", "not_found", 1)
					RecordFetchLatency("assets", 5)
					RecordFetchError("labels")
					RecordRefreshRequest()
					RecordCacheMiss()
					RecordCacheInvalidation()
					UpdateLastRefresh(time.Now())
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(8)
					RecordSystemGCPauseTime(0.5)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry should be exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		prevManager, prevRegistry := globalManager, customRegistry
		Reset(func() {
			globalManager, customRegistry = prevManager, prevRegistry
		})

		Convey("When configured with a project label", func() {
			Configure(WithCustomLabels(map[string]string{"project": "p1"}))
			RecordRefreshRequest()

			Convey("Then the served registry is fresh and carries the label", func() {
				So(GetRegistry(), ShouldNotPointTo, prevRegistry)
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)

				project := ""
				for _, mf := range families {
					if mf.GetName() != "contrib_leaderboard_refresh_requests_total" {
						continue
					}
					for _, m := range mf.GetMetric() {
						for _, lp := range m.GetLabel() {
							if lp.GetName() == "project" {
								project = lp.GetValue()
							}
						}
					}
				}
				So(project, ShouldEqual, "p1")
				So(testutil.ToFloat64(globalManager.refreshRequests), ShouldEqual, 1)
			})
		})
	})
}
