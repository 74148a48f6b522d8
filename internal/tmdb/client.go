package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DiscoverResult is a single movie entry from the discover endpoint. Only
// the id matters for acquisition; the full record comes from MovieDetails.
type DiscoverResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteCount   int64   `json:"vote_count"`
}

// DiscoverResponse models the paginated discover payload.
type DiscoverResponse struct {
	Page         int              `json:"page"`
	Results      []DiscoverResult `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// Genre is a named genre reference on a movie record.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Collection identifies the franchise a movie belongs to, if any.
type Collection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CrewMember is one credits crew entry.
type CrewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

// CastMember is one credits cast entry.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Credits holds the cast and crew lists attached to a movie record.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Movie is the full movie record with credits appended.
type Movie struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	ReleaseDate      string      `json:"release_date"`
	Budget           int64       `json:"budget"`
	Revenue          int64       `json:"revenue"`
	Runtime          int         `json:"runtime"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int64       `json:"vote_count"`
	Popularity       float64     `json:"popularity"`
	OriginalLanguage string      `json:"original_language"`
	Genres           []Genre     `json:"genres"`
	Collection       *Collection `json:"belongs_to_collection"`
	Credits          Credits     `json:"credits"`
}

// Director returns the name of the first crew member with the Director job.
func (m *Movie) Director() string {
	for _, member := range m.Credits.Crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}

// GenreNames returns the movie's genre names in API order.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, genre := range m.Genres {
		names = append(names, genre.Name)
	}
	return names
}

// Client provides access to the TMDB API for dataset acquisition.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.maxRetries = retries
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DiscoverTopRevenue lists the highest-grossing movies for a release year,
// one page at a time. Pages are 1-based; minVotes filters out thinly rated
// entries whose revenue figures are unreliable.
func (c *Client) DiscoverTopRevenue(ctx context.Context, year, page, minVotes int) (*DiscoverResponse, error) {
	if year <= 0 {
		return nil, errors.New("year must be positive")
	}
	if page <= 0 {
		return nil, errors.New("page must be positive")
	}
	params := url.Values{}
	params.Set("primary_release_year", strconv.Itoa(year))
	params.Set("sort_by", "revenue.desc")
	params.Set("page", strconv.Itoa(page))
	if minVotes > 0 {
		params.Set("vote_count.gte", strconv.Itoa(minVotes))
	}

	var payload DiscoverResponse
	if err := c.getJSON(ctx, "/discover/movie", params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb discover year %d page %d: %w", year, page, err)
	}
	return &payload, nil
}

// MovieDetails fetches the full movie record, with credits appended in the
// same request.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var payload Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", movieID, err)
	}
	return &payload, nil
}

// getJSON performs a GET against the API and decodes the JSON body into out.
// Rate-limited responses are retried after the Retry-After interval.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := retryAfter(resp)
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode tmdb response: %w", err)
		}
		return nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Second
}
