package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type channelItem struct {
	URL       string
	text      string
	published time.Time
}

// fetchTelegramChannel reads the public web preview of a channel and returns
// its newest post with text.
func (f *Fetcher) fetchTelegramChannel(ctx context.Context, slug string) (Document, error) {
	canonicalURL := TelegramChannelCanonicalURL(slug)
	if canonicalURL == "" {
		return Document{}, errors.New("slug is empty")
	}

	body, err := f.get(ctx, canonicalURL)
	if err != nil {
		return Document{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	items, title, err := parseTelegramChannel(doc)
	if err != nil {
		f.log.WarnContext(ctx, "Some channel posts were skipped",
			"error", err,
			"slug", slug)
	}

	var newest *channelItem
	for i := range items {
		if items[i].text == "" {
			continue
		}
		if newest == nil || !items[i].published.Before(newest.published) {
			newest = &items[i]
		}
	}

	if newest == nil {
		return Document{}, fmt.Errorf("%w (channel = %s has no text posts)", ErrNoText, slug)
	}

	if title == "" {
		title = canonicalURL
	}

	return Document{URL: newest.URL, Title: title, Text: newest.text}, nil
}

func parseTelegramChannel(doc *goquery.Document) ([]channelItem, string, error) {
	var items []channelItem
	var errs []error

	doc.Find("a.tgme_widget_message_date").Each(func(_ int, s *goquery.Selection) {
		item, processErr := processFoundDocItem(s)
		if processErr != nil {
			errs = append(errs, fmt.Errorf("process found doc item: %w", processErr))
			return
		}

		items = append(items, item)
	})

	var title string

	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		title = strings.TrimSpace(content)
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").Text())
	}

	return items, title, errors.Join(errs...)
}

func processFoundDocItem(s *goquery.Selection) (channelItem, error) {
	href, ok := s.Attr("href")
	if !ok || href == "" {
		return channelItem{}, errors.New("href empty")
	}

	var textBuilder strings.Builder
	message := s.ParentsFiltered(".tgme_widget_message").First()
	message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
		func(_ int, inner *goquery.Selection) {
			inner.Find("br").Each(func(_ int, br *goquery.Selection) {
				br.ReplaceWithHtml("\n")
			})
			fragment := strings.TrimSpace(inner.Text())
			if fragment == "" {
				return
			}
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n")
			}
			textBuilder.WriteString(fragment)
		},
	)

	var t time.Time
	if datetime := strings.TrimSpace(s.Find("time").AttrOr("datetime", "")); datetime != "" {
		parsed, err := time.Parse(time.RFC3339, datetime)
		if err != nil {
			return channelItem{}, fmt.Errorf("parse datetime: %w", err)
		}
		t = parsed
	}

	return channelItem{
		URL:       CanonicalURL(href),
		text:      strings.TrimSpace(textBuilder.String()),
		published: t,
	}, nil
}
