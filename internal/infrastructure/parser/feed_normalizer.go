package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

// DefaultFeedLimit caps the number of entries taken from one feed.
const DefaultFeedLimit = 40

// MaxFeedBytes caps how much of a feed body is read.
const MaxFeedBytes = 8 << 20

// FeedNormalizer fetches RSS/Atom feeds and flattens entries into raw items.
type FeedNormalizer struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *slog.Logger
}

var _ ports.FeedNormalizer = (*FeedNormalizer)(nil)

// NewFeedNormalizer wires an HTTP client; a nil client gets a 20s timeout.
func NewFeedNormalizer(client *http.Client, userAgent string, logger *slog.Logger) *FeedNormalizer {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = "CreatorProfiler/1.0"
	}
	return &FeedNormalizer{client: client, userAgent: userAgent, maxBytes: MaxFeedBytes, logger: logger}
}

// Normalize returns up to limit entries in feed order. Fetch and parse
// failures are logged and produce an empty result.
func (n *FeedNormalizer) Normalize(ctx context.Context, feedURL string, limit int) []domain.RawFeedItem {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	feed, err := n.fetchFeed(ctx, feedURL)
	if err != nil {
		n.warn("feed unavailable", "url", feedURL, "error", err)
		return []domain.RawFeedItem{}
	}

	host := feedHost(feedURL)
	entries := feed.Items
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]domain.RawFeedItem, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		items = append(items, n.normalizeEntry(entry, host))
	}

	n.debug("feed normalized", "url", feedURL, "entries", len(feed.Items), "kept", len(items))
	return items
}

func (n *FeedNormalizer) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, n.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return feed, nil
}

func (n *FeedNormalizer) normalizeEntry(entry *gofeed.Item, host string) domain.RawFeedItem {
	date, ok := entryDate(entry)
	if !ok {
		date = ""
	}

	summary := entry.Description
	if strings.TrimSpace(summary) == "" {
		summary = entry.Content
	}
	description, err := StripMarkup(summary)
	if err != nil {
		n.debug("strip markup failed", "link", entry.Link, "error", err)
		description = ""
	}

	return domain.RawFeedItem{
		Date:        date,
		Title:       strings.TrimSpace(entry.Title),
		URL:         entry.Link,
		Platform:    host,
		Description: description,
	}
}

// entryDate prefers the published timestamp over the updated one and
// reports false when neither yields a calendar date.
func entryDate(entry *gofeed.Item) (string, bool) {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.Format(time.DateOnly), true
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.Format(time.DateOnly), true
	}

	raw := strings.TrimSpace(entry.Published)
	if raw == "" {
		raw = strings.TrimSpace(entry.Updated)
	}
	return parseDate(raw)
}

func parseDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// StripMarkup removes tags, drops script and style bodies, and collapses
// whitespace between the remaining text nodes into single spaces.
func StripMarkup(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if text := strings.TrimSpace(node.Data); text != "" {
				parts = append(parts, text)
			}
			return
		case html.ElementNode:
			if node.Data == "script" || node.Data == "style" {
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range doc.Nodes {
		walk(node)
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

func feedHost(feedURL string) string {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func (n *FeedNormalizer) debug(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}

func (n *FeedNormalizer) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
