// Package search collects web snippets that ground the slide content.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/logger"
	"github.com/gnemet/deckforge/internal/textutil"
)

// Snippet is one search hit.
type Snippet struct {
	Title string `json:"title"`
	Text  string `json:"snippet"`
	URL   string `json:"url"`
}

var errNoKey = errors.New("SerpAPI key not configured")

// Searcher queries SerpAPI and falls back to the DuckDuckGo instant answer API.
type Searcher struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewSearcher(cfg config.SearchConfig, log *logger.Logger) *Searcher {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 8
	}
	return &Searcher{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log,
	}
}

// Search returns snippets for topic. Failures of both providers produce an
// empty result, never an error: the deck can still be generated without context.
func (s *Searcher) Search(ctx context.Context, topic string) []Snippet {
	results, err := s.searchSerpAPI(ctx, topic)
	switch {
	case errors.Is(err, errNoKey):
		s.log.Debug("SerpAPI key not set, skipping")
	case err != nil:
		s.log.Warn("SerpAPI search failed", "error", err)
	}
	if len(results) > 0 {
		return results
	}

	s.log.Info("Falling back to DuckDuckGo search", "topic", topic)
	results, err = s.searchDuckDuckGo(ctx, topic)
	if err != nil {
		s.log.Warn("DuckDuckGo search failed", "error", err)
		return []Snippet{}
	}
	return results
}

type serpResponse struct {
	OrganicResults []struct {
		Title       string `json:"title"`
		Snippet     string `json:"snippet"`
		Description string `json:"description"`
		Link        string `json:"link"`
	} `json:"organic_results"`
}

func (s *Searcher) searchSerpAPI(ctx context.Context, query string) ([]Snippet, error) {
	if s.cfg.SerpAPIKey == "" {
		return nil, errNoKey
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(s.cfg.MaxResults))
	params.Set("api_key", s.cfg.SerpAPIKey)

	var data serpResponse
	if err := s.getJSON(ctx, s.cfg.SerpAPIEndpoint, params, s.cfg.Timeout, &data); err != nil {
		return nil, err
	}

	var results []Snippet
	for _, item := range data.OrganicResults {
		if len(results) == s.cfg.MaxResults {
			break
		}
		text := item.Snippet
		if text == "" {
			text = item.Description
		}
		title := textutil.Clean(item.Title)
		text = textutil.Clean(text)
		if title != "" && text != "" {
			results = append(results, Snippet{Title: title, Text: text, URL: item.Link})
		}
	}
	return results, nil
}

type ddgResponse struct {
	AbstractText string `json:"AbstractText"`
	AbstractURL  string `json:"AbstractURL"`
}

func (s *Searcher) searchDuckDuckGo(ctx context.Context, topic string) ([]Snippet, error) {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("skip_disambig", "1")

	var data ddgResponse
	if err := s.getJSON(ctx, s.cfg.FallbackURL, params, s.cfg.FallbackTimeout, &data); err != nil {
		return nil, err
	}

	abstract := textutil.Clean(data.AbstractText)
	if abstract == "" {
		return []Snippet{}, nil
	}
	return []Snippet{{Title: topic, Text: abstract, URL: data.AbstractURL}}, nil
}

func (s *Searcher) getJSON(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
