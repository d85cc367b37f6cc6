// Package feed aggregates job postings from remote RSS and JSON sources.
package feed

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/domain"
)

const maxFeedBytes = 2 * 1024 * 1024

const userAgent = "talent-match/1.0 (+https://github.com/fairyhunter13/talent-match)"

// Fetcher pulls all configured sources concurrently and reports per-source
// status. Results are cached for a short TTL so ranking requests do not
// hammer the upstream feeds.
type Fetcher struct {
	sources  []string
	hc       *http.Client
	cacheTTL time.Duration

	mu        sync.Mutex
	cached    []domain.CandidateItem
	cachedSt  []domain.SourceStatus
	fetchedAt time.Time
}

// New constructs a Fetcher over the given source URLs.
func New(sources []string, timeout, cacheTTL time.Duration) *Fetcher {
	return &Fetcher{
		sources:  sources,
		hc:       &http.Client{Timeout: timeout},
		cacheTTL: cacheTTL,
	}
}

// FetchAll returns items from every source plus one status entry per
// source. A failing source contributes an error status, never an error
// return; callers decide how to surface partial failure.
func (f *Fetcher) FetchAll(ctx domain.Context) ([]domain.CandidateItem, []domain.SourceStatus) {
	f.mu.Lock()
	if f.cached != nil && time.Since(f.fetchedAt) < f.cacheTTL {
		items, statuses := f.cached, f.cachedSt
		f.mu.Unlock()
		return items, statuses
	}
	f.mu.Unlock()

	perSource := make([][]domain.CandidateItem, len(f.sources))
	statuses := make([]domain.SourceStatus, len(f.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range f.sources {
		g.Go(func() error {
			items, err := f.fetchOne(gctx, src)
			name := sourceName(src)
			st := domain.SourceStatus{Source: name, Count: len(items)}
			switch {
			case err != nil:
				st.Status = domain.SourceStatusError
				st.Message = err.Error()
				slog.Warn("feed source failed", slog.String("source", name), slog.Any("error", err))
			case len(items) == 0:
				st.Status = domain.SourceStatusEmpty
			default:
				st.Status = domain.SourceStatusSuccess
			}
			observability.FeedFetchesTotal.WithLabelValues(name, st.Status).Inc()
			perSource[i] = items
			statuses[i] = st
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.CandidateItem
	for _, items := range perSource {
		all = append(all, items...)
	}

	anyOK := false
	for _, st := range statuses {
		if st.Status != domain.SourceStatusError {
			anyOK = true
			break
		}
	}
	if anyOK {
		f.mu.Lock()
		f.cached, f.cachedSt, f.fetchedAt = all, statuses, time.Now()
		f.mu.Unlock()
	}
	return all, statuses
}

// fetchOne retrieves and parses a single source, dispatching on payload
// shape rather than URL so test servers work unchanged.
func (f *Fetcher) fetchOne(ctx domain.Context, src string) ([]domain.CandidateItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("op=feed.fetch: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, application/xml")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=feed.fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("op=feed.fetch: status %d from %s", resp.StatusCode, sourceName(src))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("op=feed.fetch.read: %w", err)
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return parseJSONFeed(body, sourceName(src))
	}
	return parseRSSFeed(body, sourceName(src))
}

// --- RSS ---

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
}

func parseRSSFeed(body []byte, source string) ([]domain.CandidateItem, error) {
	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("op=feed.parse_rss: %w", err)
	}
	var out []domain.CandidateItem
	for _, it := range doc.Channel.Items {
		if it.Title == "" {
			continue
		}
		id := it.GUID
		if id == "" {
			id = it.Link
		}
		out = append(out, domain.CandidateItem{
			ID:          id,
			Title:       it.Title,
			Description: StripHTML(it.Description),
			Category:    it.Category,
			Source:      source,
			URL:         it.Link,
		})
	}
	return out, nil
}

// --- JSON (Remotive-style) ---

type jsonFeed struct {
	Jobs []jsonJob `json:"jobs"`
}

type jsonJob struct {
	ID          json.Number `json:"id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	CompanyName string      `json:"company_name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
}

func parseJSONFeed(body []byte, source string) ([]domain.CandidateItem, error) {
	var jobs []jsonJob
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, fmt.Errorf("op=feed.parse_json: %w", err)
		}
	} else {
		var doc jsonFeed
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("op=feed.parse_json: %w", err)
		}
		jobs = doc.Jobs
	}
	var out []domain.CandidateItem
	for _, j := range jobs {
		if j.Title == "" || j.URL == "" {
			continue
		}
		desc := StripHTML(j.Description)
		if len(j.Tags) > 0 {
			desc = desc + " " + strings.Join(j.Tags, " ")
		}
		title := j.Title
		if j.CompanyName != "" {
			title = j.CompanyName + ": " + j.Title
		}
		out = append(out, domain.CandidateItem{
			ID:          j.ID.String(),
			Title:       title,
			Description: desc,
			Category:    j.Category,
			Source:      source,
			URL:         j.URL,
		})
	}
	return out, nil
}

// StripHTML flattens markup to the concatenated text content so keyword
// scans do not match tag names or attributes.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	tok := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tok.Token().Data)
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func sourceName(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return src
	}
	return strings.TrimPrefix(u.Host, "www.")
}

var _ domain.FeedFetcher = (*Fetcher)(nil)
