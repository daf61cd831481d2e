// Package openalex is a minimal client for the OpenAlex works API, scoped
// to one question: in which years was a given DOI cited?
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 10 requests per second, the OpenAlex polite-pool limit.
	RateLimit = 10.0

	// PerPage is the page size for citing-works listings, the API maximum.
	PerPage = 200

	// MailtoEnv is the environment variable consulted for the contact
	// address when none is configured explicitly.
	MailtoEnv = "OPENALEX_MAILTO"
)

// Client is a rate-limited HTTP client for the OpenAlex API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact address sent with every request. OpenAlex
// routes requests carrying a mailto into its polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a new OpenAlex client. The contact address defaults to
// the OPENALEX_MAILTO environment variable.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		mailto:     os.Getenv(MailtoEnv),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// work is the subset of an OpenAlex work object the client reads.
type work struct {
	ID              string `json:"id"`
	PublicationYear int    `json:"publication_year"`
}

// listResponse is a page of a works listing.
type listResponse struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []work `json:"results"`
}

// CitingYears returns the publication years of every work that cites the
// given DOI, one entry per citing work, paging through the full listing.
// The DOI is first resolved to an OpenAlex work ID, then the citing works
// are listed with cursor pagination.
func (c *Client) CitingYears(ctx context.Context, doi string) ([]int, error) {
	if doi == "" {
		return nil, nil
	}

	id, err := c.resolveWorkID(ctx, doi)
	if err != nil {
		return nil, err
	}

	var years []int
	cursor := "*"
	for cursor != "" {
		q := url.Values{}
		q.Set("filter", "cites:"+id)
		q.Set("select", "publication_year")
		q.Set("per-page", fmt.Sprintf("%d", PerPage))
		q.Set("cursor", cursor)

		var page listResponse
		if err := c.getJSON(ctx, c.baseURL+"/works?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		for _, w := range page.Results {
			if w.PublicationYear != 0 {
				years = append(years, w.PublicationYear)
			}
		}
		if len(page.Results) == 0 {
			break
		}
		cursor = page.Meta.NextCursor
	}
	return years, nil
}

// resolveWorkID looks up the OpenAlex work ID for a DOI. OpenAlex accepts
// the full DOI URL as a works path segment.
func (c *Client) resolveWorkID(ctx context.Context, doi string) (string, error) {
	u := fmt.Sprintf("%s/works/https://doi.org/%s?select=id", c.baseURL, doi)

	var w work
	if err := c.getJSON(ctx, u, &w); err != nil {
		return "", err
	}
	if w.ID == "" {
		return "", fmt.Errorf("%w: DOI %s", ErrNotFound, doi)
	}
	return w.ID, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if c.mailto != "" {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		rawURL += sep + "mailto=" + url.QueryEscape(c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 404:
		return fmt.Errorf("%w: status 404", ErrNotFound)
	case resp.StatusCode == 429:
		return fmt.Errorf("%w: status 429", ErrRateLimited)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
