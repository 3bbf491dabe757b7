package reconcile_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/derive"
	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/reconcile"
	. "github.com/smartystreets/goconvey/convey"
)

const excludedEmail = "reviewer@example.com"

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func label(assetID, email string, seconds float64, status string, offset time.Duration) model.LabelEvent {
	return model.LabelEvent{
		AssetID:        assetID,
		Author:         model.Author{Email: email},
		SecondsToLabel: seconds,
		Response:       json.RawMessage(`{"CLASSIFICATION_JOB":{"categories":[{"name":"` + status + `"}]}}`),
		CreatedAt:      t0.Add(offset),
		Type:           model.LabelTypeDefault,
	}
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	r := reconcile.New(
		reconcile.WithExcludedAuthors([]string{excludedEmail}),
		reconcile.WithIdentity(derive.EmailLocalPart),
	)

	Convey("Given an asset labeled once by a contributor and once by the excluded reviewer", t, func() {
		assets := []model.Asset{{ID: "a1", ExternalID: "e1"}}
		labels := []model.LabelEvent{
			label("a1", "x@example.com", 120, "IN_PROGRESS", 0),
			label("a1", excludedEmail, 500, "FINISHED", time.Hour),
		}

		out := r.Reconcile(ctx, assets, labels)

		Convey("Then attribution ignores the excluded reviewer", func() {
			So(out, ShouldHaveLength, 1)
			So(out[0].Attribution, ShouldNotBeNil)
			So(out[0].Attribution.Email, ShouldEqual, "x@example.com")
			So(*out[0].CreatedAt, ShouldEqual, t0)
		})

		Convey("Then duration only counts non-excluded events", func() {
			So(out[0].SecondsToLabel, ShouldEqual, 120)
			So(derive.HoursToLabel(out[0].SecondsToLabel), ShouldAlmostEqual, 120.0/3600, 1e-12)
		})

		Convey("Then the representative response is the last fetched label of any author", func() {
			So(derive.ExtractStatus(out[0].Response), ShouldEqual, "FINISHED")
		})

		Convey("Then the input slice is not modified", func() {
			So(assets[0].Response, ShouldBeNil)
			So(assets[0].Attribution, ShouldBeNil)
		})
	})

	Convey("Given several contributors on the same asset", t, func() {
		assets := []model.Asset{{ID: "a1"}}
		labels := []model.LabelEvent{
			label("a1", "slow@example.com", 300, "IN_PROGRESS", 0),
			label("a1", "fast@example.com", 100, "IN_PROGRESS", time.Minute),
			label("a1", "tied@example.com", 300, "FINISHED", 2*time.Minute),
		}

		out := r.Reconcile(ctx, assets, labels)

		Convey("Then the longest event wins and ties go to the earliest fetched", func() {
			So(out[0].Attribution.Email, ShouldEqual, "slow@example.com")
			So(*out[0].CreatedAt, ShouldEqual, t0)
		})

		Convey("Then the duration is the sum over all events", func() {
			So(out[0].SecondsToLabel, ShouldEqual, 700)
		})
	})

	Convey("Given assets without usable events", t, func() {
		assets := []model.Asset{{ID: "none"}, {ID: "only-excluded"}, {ID: "ok"}}
		labels := []model.LabelEvent{
			label("only-excluded", "REVIEWER@example.com", 50, "FINISHED", 0),
			label("ok", "y@example.com", 10, "FINISHED", 0),
			label("orphan", "z@example.com", 10, "FINISHED", 0),
		}

		out := r.Reconcile(ctx, assets, labels)

		Convey("Then they stay in the dataset in order", func() {
			So(out, ShouldHaveLength, 3)
			So(out[0].ID, ShouldEqual, "none")
			So(out[1].ID, ShouldEqual, "only-excluded")
			So(out[2].ID, ShouldEqual, "ok")
		})

		Convey("Then an asset with no events has no response and zero duration", func() {
			So(out[0].Response, ShouldBeNil)
			So(out[0].SecondsToLabel, ShouldEqual, 0)
			So(out[0].Attribution, ShouldBeNil)
			So(out[0].CreatedAt, ShouldBeNil)
		})

		Convey("Then an asset labeled only by excluded authors keeps the response but no author", func() {
			So(derive.ExtractStatus(out[1].Response), ShouldEqual, "FINISHED")
			So(out[1].SecondsToLabel, ShouldEqual, 0)
			So(out[1].Attribution, ShouldBeNil)
		})
	})
}

func TestReconciler_Excluded(t *testing.T) {
	Convey("Given exclusions by email and by resolved identity", t, func() {
		r := reconcile.New(
			reconcile.WithExcludedAuthors([]string{" Boss@Example.com ", "jane doe", ""}),
			reconcile.WithIdentity(derive.FullName),
		)

		Convey("Then emails match case-insensitively", func() {
			So(r.Excluded(model.Author{Email: "boss@example.com"}), ShouldBeTrue)
		})

		Convey("Then resolved identities match case-insensitively", func() {
			So(r.Excluded(model.Author{Email: "j@example.com", FirstName: "Jane", LastName: "Doe"}), ShouldBeTrue)
		})

		Convey("Then other authors are kept", func() {
			So(r.Excluded(model.Author{Email: "someone@example.com", FirstName: "Some", LastName: "One"}), ShouldBeFalse)
			So(r.Excluded(model.Author{}), ShouldBeFalse)
		})
	})

	Convey("Given no exclusions", t, func() {
		So(reconcile.New().Excluded(model.Author{Email: "a@b.c"}), ShouldBeFalse)
	})
}
