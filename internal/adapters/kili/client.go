// Package kili reads assets and labels from the Kili annotation platform
// through its GraphQL API.
package kili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/pkg/logger"
)

const (
	// DefaultEndpoint is the public Kili GraphQL endpoint.
	DefaultEndpoint = "https://cloud.kili-technology.com/api/label/v2/graphql"

	defaultPageSize    = 100
	defaultIDBatchSize = 1000
	defaultTimeout     = 30 * time.Second

	maxErrorBody = 4096
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPageSize sets the number of rows requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithIDBatchSize sets how many external ids go into one labels query.
func WithIDBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.idBatchSize = n
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed with
// WithHTTPClient is copied rather than modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client is an explicit, API-key scoped handle on the platform. It performs
// no retries: any failure is returned to the caller.
type Client struct {
	endpoint    string
	apiKey      string
	httpClient  *http.Client
	pageSize    int
	idBatchSize int
	timeout     time.Duration
	logger      logger.Logger
}

// NewClient creates a client for endpoint authenticated with apiKey.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:    endpoint,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		pageSize:    defaultPageSize,
		idBatchSize: defaultIDBatchSize,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// FetchAssets returns the project's assets whose status is LABELED, ONGOING,
// REVIEWED or TO_REVIEW, in platform order.
func (c *Client) FetchAssets(ctx context.Context, projectID string) ([]model.Asset, error) {
	where := assetWhere{
		Project:  projectWhere{ID: projectID},
		StatusIn: model.FetchedAssetStatuses(),
	}
	rows, err := paginate[assetRow](ctx, c, "assets", assetsQuery, where)
	if err != nil {
		return nil, err
	}

	assets := make([]model.Asset, 0, len(rows))
	for _, r := range rows {
		assets = append(assets, model.Asset{
			ID:         r.ID,
			ExternalID: r.ExternalID,
			Metadata:   normalizeJSON(r.JSONMetadata),
		})
	}
	return assets, nil
}

// FetchLabels returns DEFAULT and REVIEW labels of the assets with the given
// external ids, in fetch order.
func (c *Client) FetchLabels(ctx context.Context, projectID string, externalIDs []string) ([]model.LabelEvent, error) {
	var labels []model.LabelEvent
	for start := 0; start < len(externalIDs); start += c.idBatchSize {
		end := min(start+c.idBatchSize, len(externalIDs))
		where := labelWhere{
			Project: projectWhere{ID: projectID},
			Asset:   labelAssetWhere{ExternalIDStrictlyIn: externalIDs[start:end]},
			TypeIn:  model.FetchedLabelTypes(),
		}
		rows, err := paginate[labelRow](ctx, c, "labels", labelsQuery, where)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			labels = append(labels, c.toLabel(ctx, r))
		}
	}
	return labels, nil
}

func (c *Client) toLabel(ctx context.Context, r labelRow) model.LabelEvent {
	ev := model.LabelEvent{
		AssetID:  r.AssetID,
		Response: normalizeJSON(r.JSONResponse),
		Type:     r.Type,
	}
	if r.SecondsToLabel != nil {
		ev.SecondsToLabel = *r.SecondsToLabel
	}
	if r.Author != nil {
		ev.Author = model.Author{Email: r.Author.Email, FirstName: r.Author.FirstName, LastName: r.Author.LastName}
	}
	if r.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			c.logger.Warn(ctx, "unparsable label createdAt",
				logger.String("asset", r.AssetID),
				logger.String("createdAt", r.CreatedAt),
			)
		} else {
			ev.CreatedAt = t
		}
	}
	return ev
}

// paginate walks first/skip pages until a short page is returned.
func paginate[T any](ctx context.Context, c *Client, resource, query string, where any) ([]T, error) {
	var out []T
	for skip := 0; ; {
		vars := map[string]any{"where": where, "first": c.pageSize, "skip": skip}
		var resp response[T]
		if err := c.do(ctx, query, vars, &resp); err != nil {
			return nil, fmt.Errorf("%s page at %d: %w", resource, skip, err)
		}
		if len(resp.Errors) > 0 {
			msgs := make([]string, 0, len(resp.Errors))
			for _, e := range resp.Errors {
				msgs = append(msgs, e.Message)
			}
			return nil, fmt.Errorf("%w: %s: %s", ErrPlatform, resource, strings.Join(msgs, "; "))
		}
		if resp.Data == nil {
			return nil, fmt.Errorf("%w: %s: missing data", ErrDecode, resource)
		}
		page := resp.Data.Data
		out = append(out, page...)
		c.logger.Debug(ctx, "page fetched",
			logger.String("resource", resource),
			logger.Int("skip", skip),
			logger.Int("rows", len(page)),
		)
		if len(page) < c.pageSize {
			return out, nil
		}
		skip += len(page)
	}
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, into any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "X-API-Key: "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlatform, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Error(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrPlatform, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// normalizeJSON unwraps payloads the platform sends as JSON-encoded strings.
// Null becomes nil; anything else is returned unchanged.
func normalizeJSON(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '"' {
		return trimmed
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil || !json.Valid([]byte(s)) {
		return trimmed
	}
	return json.RawMessage(s)
}
