package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	braveSearchURL     = "https://api.search.brave.com/res/v1/web/search"
	defaultSearchCount = 5
	maxSearchCount     = 20
)

// Searcher finds web evidence for a claim.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchSettings configures the Brave Search client.
type SearchSettings struct {
	APIKey  string
	BaseURL string
	Count   int
}

// BraveSearch queries the Brave Search web API.
type BraveSearch struct {
	apiKey  string
	baseURL string
	count   int
	client  *http.Client
}

type braveResp struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func NewBraveSearch(cfg SearchSettings, client *http.Client) (*BraveSearch, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("brave search api key missing; provide search.api_key")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	base := cfg.BaseURL
	if base == "" {
		base = braveSearchURL
	}
	count := cfg.Count
	if count <= 0 {
		count = defaultSearchCount
	}
	if count > maxSearchCount {
		count = maxSearchCount
	}
	return &BraveSearch{apiKey: cfg.APIKey, baseURL: base, count: count, client: client}, nil
}

func (b *BraveSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	u, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(b.count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("brave search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data braveResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("brave search: decode: %w", err)
	}

	results := make([]SearchResult, 0, len(data.Web.Results))
	for _, r := range data.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Description: r.Description})
	}
	return results, nil
}
