// Package fetch turns a link into plain text that can be summarized.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	maxBodyBytes = 4 << 20
)

var ErrNoText = errors.New("no readable text found")

// Document is the readable part of a fetched page, feed or channel.
type Document struct {
	URL   string
	Title string
	Text  string
}

type Fetcher struct {
	client       *http.Client
	libParser    *gofeed.Parser
	cache        *DocumentCache
	cacheTTL     time.Duration
	allowPrivate bool
	log          *slog.Logger
}

// NewFetcher creates a Fetcher. cache may be nil. Unless AllowPrivateNetworks
// is given, connections to non-public addresses fail with ErrForbiddenAddress.
func NewFetcher(
	timeout time.Duration,
	cache *DocumentCache,
	cacheTTL time.Duration,
	log *slog.Logger,
	opts ...Option,
) *Fetcher {
	f := &Fetcher{
		libParser: gofeed.NewParser(),
		cache:     cache,
		cacheTTL:  cacheTTL,
		log:       log,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:   timeout,
		Transport: newTransport(f.allowPrivate),
	}

	return f
}

// Fetch downloads rawURL and extracts its text. Feeds yield their newest
// item, Telegram channels their newest post, HTML pages their paragraphs.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Document, error) {
	canonicalURL := CanonicalURL(rawURL)
	if canonicalURL == "" {
		return Document{}, errors.New("URL is empty")
	}

	if u, err := url.Parse(canonicalURL); err != nil {
		return Document{}, fmt.Errorf("parse URL: %w", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return Document{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	now := time.Now()
	if doc, ok := f.cache.Get(canonicalURL, now); ok {
		f.log.DebugContext(ctx, "Document cache hit",
			"url", canonicalURL)

		return doc, nil
	}

	var (
		doc Document
		err error
	)

	if ok, slug := isTelegramChannelURL(canonicalURL); ok {
		doc, err = f.fetchTelegramChannel(ctx, slug)
	} else {
		doc, err = f.fetchPage(ctx, canonicalURL)
	}
	if err != nil {
		return Document{}, err
	}

	doc.Text = strings.TrimSpace(doc.Text)
	if doc.Text == "" {
		return Document{}, fmt.Errorf("%w (URL = %s)", ErrNoText, canonicalURL)
	}

	f.cache.Set(canonicalURL, doc, now.Add(f.cacheTTL), now)

	return doc, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (Document, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return Document{}, err
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		parsed, parseErr := f.libParser.Parse(bytes.NewReader(body))
		if parseErr != nil {
			return Document{}, fmt.Errorf("parse feed (URL = %s): %w", pageURL, parseErr)
		}

		return documentFromFeed(pageURL, parsed)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	return documentFromHTML(pageURL, doc), nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // Dialer refuses non-public addresses.
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", target)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func documentFromFeed(feedURL string, parsed *gofeed.Feed) (Document, error) {
	item := newestItem(parsed.Items)
	if item == nil {
		return Document{}, fmt.Errorf("%w (feed = %s has no items)", ErrNoText, feedURL)
	}

	raw := item.Content
	if strings.TrimSpace(raw) == "" {
		raw = item.Description
	}

	text, err := htmlText(raw)
	if err != nil {
		return Document{}, fmt.Errorf("extract item text: %w", err)
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = strings.TrimSpace(parsed.Title)
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = feedURL
	}

	return Document{URL: link, Title: title, Text: text}, nil
}

func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item
	for _, item := range items {
		if item == nil {
			continue
		}
		if newest == nil {
			newest = item
			continue
		}
		if item.PublishedParsed != nil &&
			(newest.PublishedParsed == nil || item.PublishedParsed.After(*newest.PublishedParsed)) {
			newest = item
		}
	}

	return newest
}

func documentFromHTML(pageURL string, doc *goquery.Document) Document {
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	title, ok := doc.Find("meta[property='og:title']").Attr("content")
	if !ok || strings.TrimSpace(title) == "" {
		title = doc.Find("title").First().Text()
	}

	paragraphs := doc.Find("article p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("p")
	}

	var texts []string
	paragraphs.Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpaces(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})

	return Document{
		URL:   pageURL,
		Title: collapseSpaces(title),
		Text:  strings.Join(texts, "\n"),
	}
}

func htmlText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})

	var texts []string
	blocks := doc.Find("p, li, blockquote")
	if blocks.Length() == 0 {
		blocks = doc.Find("body")
	}
	blocks.Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpaces(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})

	return strings.Join(texts, "\n"), nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
