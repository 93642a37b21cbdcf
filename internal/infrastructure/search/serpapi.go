package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

// DefaultEndpoint is the SerpAPI JSON search endpoint.
const DefaultEndpoint = "https://serpapi.com/search.json"

// DefaultResultsPerQuery bounds the organic results taken from each query.
const DefaultResultsPerQuery = 5

// queryTemplates are expanded with the creator name, in this order.
var queryTemplates = []string{
	"%s controversy site:news",
	"%s fact check",
	"%s criticism",
	"%s praise review",
}

// SerpClient searches the web for reception and controversy coverage.
type SerpClient struct {
	endpoint string
	apiKey   string
	perQuery int
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ ports.ReceptionSearcher = (*SerpClient)(nil)

// NewSerpClient builds a client; perQuery <= 0 uses DefaultResultsPerQuery.
func NewSerpClient(endpoint, apiKey string, perQuery int, logger *slog.Logger) *SerpClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if perQuery <= 0 {
		perQuery = DefaultResultsPerQuery
	}
	return &SerpClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		perQuery: perQuery,
		client:   &http.Client{Timeout: 20 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		logger:   logger,
	}
}

// Queries returns the search phrases issued for a creator.
func Queries(name string) []string {
	out := make([]string, 0, len(queryTemplates))
	for _, tmpl := range queryTemplates {
		out = append(out, fmt.Sprintf(tmpl, name))
	}
	return out
}

type searchResponse struct {
	OrganicResults []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"organic_results"`
}

// SearchReception runs every query template and returns results deduplicated
// by URL, capped at twice the per-query limit. A failing query is skipped;
// an error is returned only when all of them fail.
func (s *SerpClient) SearchReception(ctx context.Context, name string) ([]domain.Reference, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("search client misconfigured")
	}

	var (
		refs []domain.Reference
		errs []error
		seen = map[string]struct{}{}
	)

	for _, q := range Queries(name) {
		results, err := s.query(ctx, q)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			if s.logger != nil {
				s.logger.Warn("reception query failed", "query", q, "error", err)
			}
			continue
		}
		for _, r := range results {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			refs = append(refs, r)
		}
	}

	if len(errs) == len(queryTemplates) {
		return nil, errors.Join(errs...)
	}

	if limit := s.perQuery * 2; len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *SerpClient) query(ctx context.Context, q string) ([]domain.Reference, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %s: %w", s.endpoint, err)
	}
	params := u.Query()
	params.Set("engine", "google")
	params.Set("q", q)
	params.Set("num", strconv.Itoa(s.perQuery))
	params.Set("api_key", s.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	organic := payload.OrganicResults
	if len(organic) > s.perQuery {
		organic = organic[:s.perQuery]
	}

	var out []domain.Reference
	for _, r := range organic {
		if r.Title == "" || r.Link == "" {
			continue
		}
		out = append(out, domain.Reference{Title: r.Title, URL: r.Link})
	}
	return out, nil
}
