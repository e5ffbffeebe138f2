// Package openlibrary is a small client for the Open Library catalog API.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org"
	searchLimit      = 15
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("open library: unexpected status code %d for %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is a 404 from Open Library.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Options struct {
	BaseURL    string
	UserAgent  string
	RPS        int
	MaxRetries int
	Timeout    time.Duration
	// Backoff is the first retry delay; it doubles on every attempt. Defaults to one second.
	Backoff time.Duration
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Every(time.Second / time.Duration(opts.RPS))
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent:  opts.UserAgent,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
}

// Text decodes fields that Open Library serves either as a plain string or as
// {"type": "/type/text", "value": "..."}.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("text field: %w", err)
	}
	*t = Text(obj.Value)
	return nil
}

// AuthorRef points at an author record. Works nest the key as {"author": {"key": ...}},
// editions carry it directly as {"key": ...}.
type AuthorRef struct {
	Key string
}

func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key    string `json:"key"`
		Author *struct {
			Key string `json:"key"`
		} `json:"author"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Key = raw.Key
	if raw.Author != nil && raw.Author.Key != "" {
		a.Key = raw.Author.Key
	}
	return nil
}

// ID strips the "/authors/" prefix from the key.
func (a AuthorRef) ID() string {
	return strings.TrimPrefix(a.Key, "/authors/")
}

// Work matches /books/{olid}.json and /works/{olid}.json.
type Work struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Authors     []AuthorRef `json:"authors"`
	Covers      []int       `json:"covers"`
	Description Text        `json:"description"`
	Subjects    []string    `json:"subjects"`
	PublishDate string      `json:"publish_date"`
}

// Author matches /authors/{id}.json.
type Author struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Bio       Text   `json:"bio"`
	Photos    []int  `json:"photos"`
}

// SubjectResponse matches /subjects/{subject}.json.
type SubjectResponse struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	WorkCount int    `json:"work_count"`
	Works     []struct {
		Key             string `json:"key"`
		Title           string `json:"title"`
		CoverID         int    `json:"cover_id"`
		CoverEditionKey string `json:"cover_edition_key"`
		Authors         []struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"works"`
}

// SearchResponse matches search.json.
type SearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorNames      []string `json:"author_name"`
		AuthorKeys       []string `json:"author_key"`
		CoverID          int      `json:"cover_i"`
		CoverEditionKey  string   `json:"cover_edition_key"`
		FirstPublishYear int      `json:"first_publish_year"`
	} `json:"docs"`
}

func (c *Client) GetBookDetails(ctx context.Context, olid string) (*Work, error) {
	var res Work
	if err := c.get(ctx, fmt.Sprintf("%s/books/%s.json", c.baseURL, url.PathEscape(olid)), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetAuthor(ctx context.Context, authorID string) (*Author, error) {
	key := strings.TrimPrefix(authorID, "/authors/")
	var res Author
	if err := c.get(ctx, fmt.Sprintf("%s/authors/%s.json", c.baseURL, url.PathEscape(key)), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAuthorDetails returns only the author's display name.
func (c *Client) GetAuthorDetails(ctx context.Context, authorID string) (string, error) {
	author, err := c.GetAuthor(ctx, authorID)
	if err != nil {
		return "", err
	}
	return author.Name, nil
}

func (c *Client) GetBooksBySubject(ctx context.Context, subject string) (*SubjectResponse, error) {
	var res SubjectResponse
	u := fmt.Sprintf("%s/subjects/%s.json", c.baseURL, url.PathEscape(strings.ToLower(subject)))
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// SearchQuery turns free text into the title parameter format: whitespace runs become "+".
func SearchQuery(query string) string {
	parts := whitespace.Split(strings.TrimSpace(query), -1)
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, "+")
}

// Search looks books up by title, returning at most 15 results.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	u := fmt.Sprintf("%s/search.json?title=%s&limit=%d", c.baseURL, SearchQuery(query), searchLimit)

	var res SearchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// 1s, 2s, 4s...
			backoff := c.backoff << uint(i-1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: u}
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode %s: %w", u, err)
	}
	return false, nil
}
