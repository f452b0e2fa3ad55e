// Package searx is a small client for the JSON API of a SearxNG instance.
package searx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoResults is returned when the response body has no results array.
var ErrNoResults = errors.New("searx: response has no results")

// Query describes one search request.
type Query struct {
	Terms   string
	Site    string   // restricts results with a "site:" prefix
	Engines []string // comma joined into the engines parameter
	Page    *int     // zero based; sent as pageno=Page+1
	Lang    string
}

// Result is a single search hit. Missing fields are empty strings.
type Result struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	Engine        string `json:"engine"`
	PublishedDate string `json:"published_date"`
}

// Response is the normalized answer of a search.
type Response struct {
	Success bool     `json:"success"`
	Results []Result `json:"results"`
}

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client talks to one SearxNG endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
}

// New creates a Client for endpoint, e.g. "http://localhost:8080".
func New(endpoint string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Timeout:   30 * time.Second,
		UserAgent: "agentswarm-searx",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	endpoint = strings.TrimRight(endpoint, "/")
	hc := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{endpoint: endpoint, http: hc}
}

// Endpoint returns the base URL of the instance.
func (c *Client) Endpoint() string { return c.endpoint }

type rawResponse struct {
	Results []map[string]any `json:"results"`
}

// Search runs q and maps the results.
func (c *Client) Search(ctx context.Context, q Query) (*Response, error) {
	var raw rawResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(q)).
		ForceContentType("application/json").
		SetResult(&raw).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("searx request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("searx request: unexpected status %s", resp.Status())
	}
	if raw.Results == nil {
		return nil, ErrNoResults
	}

	results := make([]Result, 0, len(raw.Results))
	for _, entry := range raw.Results {
		results = append(results, Result{
			Title:         stringField(entry, "title"),
			Content:       stringField(entry, "content"),
			URL:           stringField(entry, "url"),
			Engine:        stringField(entry, "engine"),
			PublishedDate: stringField(entry, "publishedDate"),
		})
	}

	return &Response{Success: true, Results: results}, nil
}

func queryParams(q Query) map[string]string {
	terms := q.Terms
	if q.Site != "" {
		terms = fmt.Sprintf("site:%s %s", q.Site, q.Terms)
	}

	params := map[string]string{
		"q":      terms,
		"format": "json",
	}
	if q.Lang != "" {
		params["language"] = q.Lang
	}
	if len(q.Engines) > 0 {
		params["engines"] = strings.Join(q.Engines, ",")
	}
	if q.Page != nil {
		params["pageno"] = strconv.Itoa(*q.Page + 1)
	}
	return params
}

func stringField(entry map[string]any, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}
