package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"aspire-opr/opr"
)

// FetchError wraps a failure to load one source page.
type FetchError struct {
	Page string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %q: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PageResult is the outcome of resolving one page. A failed page carries Err
// and no matches unless a stored snapshot stood in for it.
type PageResult struct {
	Page         SourcePage
	Matches      []opr.Match
	FromSnapshot bool
	Err          error
}

type snapshotStore interface {
	SaveSnapshot(ctx context.Context, page string, matches []opr.Match) (string, error)
	LatestSnapshot(ctx context.Context, page string) ([]opr.Match, error)
}

var scorePattern = regexp.MustCompile(`^\d+$`)

type matchSource struct {
	client   *http.Client
	baseURL  string
	pages    []SourcePage
	store    snapshotStore
	fallback bool
	ttl      time.Duration

	mu        sync.Mutex
	cached    []opr.Match
	cachedRes []PageResult
	cachedAt  time.Time
}

func newMatchSource(cfg *Config, store snapshotStore) *matchSource {
	return &matchSource{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		baseURL:  cfg.SourceURL,
		pages:    cfg.Pages,
		store:    store,
		fallback: cfg.SnapshotFallback,
		ttl:      cfg.MatchCacheTTL,
	}
}

// FetchAll resolves every configured page in order and concatenates their
// matches. A page that fails contributes nothing (or its stored snapshot when
// fallback is on); the other pages are unaffected.
func (s *matchSource) FetchAll(ctx context.Context) ([]opr.Match, []PageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Cache check (schedules and scores change during an event)
	if s.cachedRes != nil && time.Since(s.cachedAt) < s.ttl {
		return s.cached, s.cachedRes
	}

	var matches []opr.Match
	results := make([]PageResult, 0, len(s.pages))
	healthy := true
	for _, page := range s.pages {
		res := s.resolvePage(ctx, page)
		if res.Err != nil {
			healthy = false
		}
		matches = append(matches, res.Matches...)
		results = append(results, res)
	}

	if healthy {
		s.cached, s.cachedRes, s.cachedAt = matches, results, time.Now()
	}
	return matches, results
}

func (s *matchSource) resolvePage(ctx context.Context, page SourcePage) PageResult {
	res := s.FetchPage(ctx, page)
	if res.Err == nil {
		fetchTotal.WithLabelValues(page.Name, "ok").Inc()
		matchesFetched.WithLabelValues(page.Name).Set(float64(len(res.Matches)))
		if s.store != nil {
			if _, err := s.store.SaveSnapshot(ctx, page.Name, res.Matches); err != nil {
				log.Warnw("saving match snapshot failed", "page", page.Name, "error", err)
			}
		}
		return res
	}

	fetchTotal.WithLabelValues(page.Name, "error").Inc()
	log.Warnw("❌ source page unavailable, skipping", "page", page.Name, "error", res.Err)

	if s.fallback && s.store != nil {
		stored, err := s.store.LatestSnapshot(ctx, page.Name)
		switch {
		case err == nil:
			fetchTotal.WithLabelValues(page.Name, "snapshot").Inc()
			log.Infow("using stored snapshot", "page", page.Name, "matches", len(stored))
			res.Matches = stored
			res.FromSnapshot = true
		case !errors.Is(err, ErrNoSnapshot):
			log.Warnw("loading match snapshot failed", "page", page.Name, "error", err)
		}
	}
	matchesFetched.WithLabelValues(page.Name).Set(float64(len(res.Matches)))
	return res
}

// FetchPage downloads and parses a single page. It never returns a partial
// result: on any error Matches is nil.
func (s *matchSource) FetchPage(ctx context.Context, page SourcePage) PageResult {
	res := PageResult{Page: page}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		res.Err = &FetchError{Page: page.Name, Err: err}
		return res
	}
	q := u.Query()
	q.Set("page", page.Name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		res.Err = &FetchError{Page: page.Name, Err: err}
		return res
	}

	resp, err := s.client.Do(req)
	if err != nil {
		res.Err = &FetchError{Page: page.Name, Err: err}
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = &FetchError{Page: page.Name, Err: fmt.Errorf("unexpected status %s", resp.Status)}
		return res
	}

	var rows []any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		res.Err = &FetchError{Page: page.Name, Err: fmt.Errorf("decode rows: %w", err)}
		return res
	}

	res.Matches = make([]opr.Match, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.([]any)
		if !ok {
			continue
		}
		if m, ok := parseRow(row, page.Tag); ok {
			res.Matches = append(res.Matches, m)
		}
	}
	log.Debugw("fetched source page", "page", page.Name, "rows", len(rows), "matches", len(res.Matches))
	return res
}

// parseRow reads [_, team1, team2, score1, score2, ...]. Teams may be written
// as "1234 | Team Name"; only the part before the bar is kept.
func parseRow(row []any, tag string) (opr.Match, bool) {
	if len(row) < 5 {
		return opr.Match{}, false
	}
	t1, ok1 := cellText(row[1])
	t2, ok2 := cellText(row[2])
	if !ok1 || !ok2 {
		return opr.Match{}, false
	}
	return opr.Match{
		Team1:  teamID(t1),
		Team2:  teamID(t2),
		Score1: parseScore(row[3]),
		Score2: parseScore(row[4]),
		Tag:    tag,
	}, true
}

func teamID(s string) string {
	before, _, _ := strings.Cut(s, "|")
	return strings.TrimSpace(before)
}

func cellText(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, true
	case json.Number:
		return c.String(), true
	}
	return "", false
}

// parseScore returns nil unless the cell is a plain run of digits, which is
// how the sheet marks a match that has not been played.
func parseScore(v any) *int {
	s, ok := cellText(v)
	if !ok || !scorePattern.MatchString(s) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
