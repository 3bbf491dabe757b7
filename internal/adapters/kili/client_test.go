package kili_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/contrib-leaderboard/internal/adapters/kili"
	. "github.com/smartystreets/goconvey/convey"
)

type gqlRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Where json.RawMessage `json:"where"`
		First int             `json:"first"`
		Skip  int             `json:"skip"`
	} `json:"variables"`
}

// platform is a fake GraphQL server serving fixed rows per resource.
type platform struct {
	mu       sync.Mutex
	assets   []map[string]any
	labels   []map[string]any
	requests []gqlRequest
	headers  []http.Header
	status   int
	errors   []string
}

func (p *platform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.headers = append(p.headers, r.Header.Clone())
	p.mu.Unlock()

	if p.status != 0 {
		http.Error(w, "quota exceeded", p.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(p.errors) > 0 {
		errs := make([]map[string]string, 0, len(p.errors))
		for _, m := range p.errors {
			errs = append(errs, map[string]string{"message": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "errors": errs})
		return
	}

	rows := p.assets
	if strings.Contains(req.Query, "labels(") {
		rows = p.labels
	}
	start := min(req.Variables.Skip, len(rows))
	end := min(start+req.Variables.First, len(rows))
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"data": rows[start:end]}})
}

func TestClient_FetchAssets(t *testing.T) {
	ctx := context.Background()

	Convey("Given a platform with five assets", t, func() {
		p := &platform{}
		for i := range 5 {
			p.assets = append(p.assets, map[string]any{
				"id":           "a" + string(rune('1'+i)),
				"externalId":   "e" + string(rune('1'+i)),
				"jsonMetadata": `{"source":"problem_1","domain":"algebra"}`,
			})
		}
		p.assets[4]["jsonMetadata"] = map[string]any{"source": "AMC_3"}
		srv := httptest.NewServer(p)
		defer srv.Close()

		c := kili.NewClient(srv.URL, "secret", kili.WithPageSize(2), kili.WithHTTPClient(srv.Client()))

		Convey("When assets are fetched", func() {
			assets, err := c.FetchAssets(ctx, "project-1")
			So(err, ShouldBeNil)

			Convey("Then every page is walked in order", func() {
				So(assets, ShouldHaveLength, 5)
				So(p.requests, ShouldHaveLength, 3)
				So(p.requests[1].Variables.Skip, ShouldEqual, 2)
				So(p.requests[2].Variables.First, ShouldEqual, 2)
				So(assets[0].ID, ShouldEqual, "a1")
				So(assets[4].ExternalID, ShouldEqual, "e5")
			})

			Convey("Then string-encoded metadata is unwrapped", func() {
				So(string(assets[0].Metadata), ShouldEqual, `{"source":"problem_1","domain":"algebra"}`)
				So(string(assets[4].Metadata), ShouldEqual, `{"source":"AMC_3"}`)
			})

			Convey("Then the request is scoped and authenticated", func() {
				So(p.headers[0].Get("Authorization"), ShouldEqual, "X-API-Key: secret")
				var where struct {
					Project  struct{ ID string } `json:"project"`
					StatusIn []string            `json:"statusIn"`
				}
				So(json.Unmarshal(p.requests[0].Variables.Where, &where), ShouldBeNil)
				So(where.Project.ID, ShouldEqual, "project-1")
				So(where.StatusIn, ShouldResemble, []string{"LABELED", "ONGOING", "REVIEWED", "TO_REVIEW"})
			})
		})
	})

	Convey("Given a platform that rejects the key", t, func() {
		srv := httptest.NewServer(&platform{status: http.StatusUnauthorized})
		defer srv.Close()

		_, err := kili.NewClient(srv.URL, "bad").FetchAssets(ctx, "project-1")

		Convey("Then the failure surfaces as a platform error", func() {
			So(errors.Is(err, kili.ErrPlatform), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "401")
		})
	})

	Convey("Given a platform that answers with GraphQL errors", t, func() {
		srv := httptest.NewServer(&platform{errors: []string{"project not found"}})
		defer srv.Close()

		_, err := kili.NewClient(srv.URL, "key").FetchAssets(ctx, "missing")

		Convey("Then the messages are kept", func() {
			So(errors.Is(err, kili.ErrPlatform), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "project not found")
		})
	})

	Convey("Given a platform that returns garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()

		_, err := kili.NewClient(srv.URL, "key").FetchAssets(ctx, "p")
		So(errors.Is(err, kili.ErrDecode), ShouldBeTrue)
	})

	Convey("Given a platform slower than the timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"data":{"data":[]}}`))
		}))
		defer srv.Close()

		_, err := kili.NewClient(srv.URL, "key", kili.WithTimeout(20*time.Millisecond)).FetchAssets(ctx, "p")
		So(errors.Is(err, kili.ErrPlatform), ShouldBeTrue)

		Convey("When the caller supplies its own HTTP client", func() {
			hc := srv.Client()
			c := kili.NewClient(srv.URL, "key", kili.WithHTTPClient(hc), kili.WithTimeout(20*time.Millisecond))

			Convey("Then the timeout applies without touching the caller's client", func() {
				_, err := c.FetchAssets(ctx, "p")
				So(errors.Is(err, kili.ErrPlatform), ShouldBeTrue)
				So(hc.Timeout, ShouldEqual, 0)
			})
		})
	})
}

func TestClient_FetchLabels(t *testing.T) {
	ctx := context.Background()

	Convey("Given a platform with labels", t, func() {
		p := &platform{labels: []map[string]any{
			{
				"assetId":        "a1",
				"secondsToLabel": 120,
				"jsonResponse":   `{"CLASSIFICATION_JOB":{"categories":[{"name":"FINISHED"}]}}`,
				"type":           "DEFAULT",
				"author":         map[string]any{"email": "x@example.com", "firstname": "X", "lastname": "Y"},
				"createdAt":      "2025-03-10T09:15:30.123Z",
			},
			{
				"assetId":        "a1",
				"secondsToLabel": nil,
				"jsonResponse":   map[string]any{},
				"type":           "REVIEW",
				"author":         nil,
				"createdAt":      "yesterday",
			},
		}}
		srv := httptest.NewServer(p)
		defer srv.Close()

		c := kili.NewClient(srv.URL, "key", kili.WithIDBatchSize(2))

		Convey("When labels are fetched for three external ids", func() {
			labels, err := c.FetchLabels(ctx, "project-1", []string{"e1", "e2", "e3"})
			So(err, ShouldBeNil)

			Convey("Then ids are sent in batches", func() {
				So(p.requests, ShouldHaveLength, 2)
				var where struct {
					Asset struct {
						ExternalIDStrictlyIn []string `json:"externalIdStrictlyIn"`
					} `json:"asset"`
					TypeIn []string `json:"typeIn"`
				}
				So(json.Unmarshal(p.requests[1].Variables.Where, &where), ShouldBeNil)
				So(where.Asset.ExternalIDStrictlyIn, ShouldResemble, []string{"e3"})
				So(where.TypeIn, ShouldResemble, []string{"DEFAULT", "REVIEW"})
			})

			Convey("Then rows are decoded in fetch order", func() {
				So(labels, ShouldHaveLength, 4)
				first := labels[0]
				So(first.AssetID, ShouldEqual, "a1")
				So(first.SecondsToLabel, ShouldEqual, 120)
				So(first.Author.Email, ShouldEqual, "x@example.com")
				So(first.Author.LastName, ShouldEqual, "Y")
				So(first.Type, ShouldEqual, "DEFAULT")
				So(first.CreatedAt.Equal(time.Date(2025, 3, 10, 9, 15, 30, 123000000, time.UTC)), ShouldBeTrue)
				So(string(first.Response), ShouldContainSubstring, "FINISHED")
			})

			Convey("Then missing values are left empty", func() {
				second := labels[1]
				So(second.SecondsToLabel, ShouldEqual, 0)
				So(second.Author.Email, ShouldBeEmpty)
				So(second.CreatedAt.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When no external ids are given", func() {
			labels, err := c.FetchLabels(ctx, "project-1", nil)
			So(err, ShouldBeNil)
			So(labels, ShouldBeEmpty)
			So(p.requests, ShouldBeEmpty)
		})
	})
}
