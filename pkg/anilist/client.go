// Package anilist fetches list activity from the AniList GraphQL API.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/anifeed/pkg/activity"
)

// DefaultEndpoint is the public AniList GraphQL endpoint.
const DefaultEndpoint = "https://graphql.anilist.co"

// MaxPostCount is the largest page AniList serves.
const MaxPostCount = 50

var (
	// ErrInvalidRequest is returned for a user id or post count AniList would reject.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrGraphQL is returned when AniList answers with GraphQL errors.
	ErrGraphQL = errors.New("graphql error")
)

const listActivityQuery = `
query ($id: Int, $post_count: Int) {
	Page(page: 1, perPage: $post_count) {
		activities(userId: $id, type_in: [ANIME_LIST, MANGA_LIST], sort: ID_DESC) {
			... on ListActivity {
				type
				createdAt
				progress
				status
				media {
					title {
						romaji
						english
						native
					}
					siteUrl
				}
			}
		}
	}
}`

// HTTPDo performs an HTTP request. It matches httpcache.Client.Do.
type HTTPDo func(context.Context, *http.Request) (*http.Response, error)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPDo routes requests through do, e.g. a caching client.
func WithHTTPDo(do HTTPDo) Option {
	return func(c *Client) {
		c.httpDo = do
	}
}

// Client talks to the AniList GraphQL API.
type Client struct {
	httpDo   HTTPDo
	logger   *slog.Logger
	endpoint string
}

// NewClient creates a Client. Without WithHTTPDo it uses a plain http.Client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpDo == nil {
		hc := &http.Client{Timeout: 30 * time.Second}
		c.httpDo = func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return hc.Do(req.WithContext(ctx))
		}
	}
	return c
}

// GraphQLResponse is the envelope of every AniList response.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is a single error from a GraphQL response.
type GraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

type pageResponse struct {
	Page struct {
		Activities []json.RawMessage `json:"activities"`
	} `json:"Page"`
}

// FetchActivities returns up to postCount list activities of the user,
// newest first. Only the first page is requested.
func (c *Client) FetchActivities(ctx context.Context, userID, postCount int) ([]activity.Raw, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidRequest, userID)
	}
	if postCount < 1 || postCount > MaxPostCount {
		return nil, fmt.Errorf("%w: post count must be between 1 and %d, got %d", ErrInvalidRequest, MaxPostCount, postCount)
	}

	resp, err := c.executeQuery(ctx, listActivityQuery, map[string]any{
		"id":         userID,
		"post_count": postCount,
	})
	if err != nil {
		c.logger.Error("AniList activity query failed", "user_id", userID, "error", err)
		return nil, err
	}

	var page pageResponse
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		return nil, fmt.Errorf("unmarshaling activities: %w", err)
	}

	activities := make([]activity.Raw, 0, len(page.Page.Activities))
	for i, node := range page.Page.Activities {
		var raw wireActivity
		if err := json.Unmarshal(node, &raw); err != nil {
			return nil, fmt.Errorf("unmarshaling activity %d: %w", i, err)
		}
		a := raw.toRaw()
		if a.Media.Title.IsEmpty() {
			c.logger.Warn("activity has no title in any language", "index", i, "url", a.Media.SiteURL)
		}
		activities = append(activities, a)
	}

	c.logger.Info("AniList activity fetch complete",
		"user_id", userID,
		"requested", postCount,
		"fetched", len(activities))

	return activities, nil
}

func (c *Client) executeQuery(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpDo(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", "error", err)
		}
	}()

	c.logger.Debug("AniList request completed",
		"status", resp.StatusCode,
		"from_cache", resp.Header.Get("X-From-Cache") == "true",
		"rate_limit_remaining", resp.Header.Get("X-RateLimit-Remaining"),
		"duration", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var graphqlResp GraphQLResponse
	decodeErr := json.Unmarshal(data, &graphqlResp)

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("AniList rate limit exceeded",
			"retry_after", resp.Header.Get("Retry-After"),
			"rate_limit_reset", resp.Header.Get("X-RateLimit-Reset"))
		return nil, errors.New("HTTP 429: rate limit exceeded")
	}

	// AniList reports most failures as a non-200 status with a GraphQL error body.
	if len(graphqlResp.Errors) > 0 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrGraphQL, resp.StatusCode, joinMessages(graphqlResp.Errors))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}

	return &graphqlResp, nil
}

func joinMessages(errs []GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
